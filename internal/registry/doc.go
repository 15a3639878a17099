// Package registry is the host side of the provider contract: it registers
// algorithm providers, reloads them, and looks algorithms up by id. It also
// keeps a small on-disk index of algorithm ids for shell completion.
package registry
