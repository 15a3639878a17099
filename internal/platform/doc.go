// Package platform answers the OS questions the provider needs: whether the
// interpreter location settings apply and how executables are named.
package platform
