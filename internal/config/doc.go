// Package config loads and validates the reeldex configuration file.
//
// Configuration is TOML with one section per subsystem. Load applies defaults,
// expands ~ in path values, pulls secrets from the environment when unset, and
// validates the result before any component sees it.
package config
