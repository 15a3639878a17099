// Package discovery turns a set of folders into the list of R script
// algorithms they contain. A discovery pass walks every folder recursively,
// parses each script-description file and keeps the ones that parse into a
// named algorithm. Per-file failures are written to the processing log and
// never abort the pass.
package discovery
