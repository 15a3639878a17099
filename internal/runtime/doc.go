// Package runtime executes loaded R script algorithms through Rscript.
package runtime
