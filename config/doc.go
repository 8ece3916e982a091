// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a yaml file and validated using struct
// tags. Every field has a default, so running without a config file is
// supported.
package config
