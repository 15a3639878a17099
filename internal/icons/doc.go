// Package icons resolves symbolic icon names to themed resources. Icons are
// looked up in the active theme directory, then in the "default" theme, and
// finally in the themes embedded in the binary.
package icons
