// Package actions implements the user actions offered by the R provider:
// creating, editing and deleting scripts and fetching the on-line scripts
// collection. Every action that changes the scripts folders reloads the
// provider afterwards.
package actions
