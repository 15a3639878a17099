// Package provider implements the R scripts algorithm provider: its identity,
// the settings it owns, and the list of algorithms discovered in the scripts
// folders.
package provider
