// Package rutils holds the R provider's setting names and resolves the
// folders and interpreter those settings point to.
package rutils
