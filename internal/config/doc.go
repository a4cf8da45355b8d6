// Package config loads, normalizes, and validates submod configuration.
//
// Settings come from a TOML file (by default ~/.config/submod/config.toml),
// an optional .env file in the working directory and SUBMOD_* environment
// variables, in increasing order of precedence. Commands receive the loaded
// Config explicitly.
package config
