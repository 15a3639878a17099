// Package rscript parses R script-description files (.rsx). A description
// starts with "##" header lines declaring the algorithm name, group,
// parameters and outputs; the remaining lines are the R body. Parsed
// descriptions are validated against an embedded JSON schema before they
// are accepted.
package rscript
