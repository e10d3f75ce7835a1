// Package config loads and validates the stash configuration.
//
// Precedence, highest to lowest: command-line flags, environment
// variables (prefix STASH), yaml config files, built-in defaults.
package config
