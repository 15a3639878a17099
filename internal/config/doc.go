// Package config manages rproc settings. Providers register typed settings
// with defaults in a Store; values are persisted to ~/.rproc/config.yaml via
// viper and can be overridden through RPROC_-prefixed environment variables.
package config
