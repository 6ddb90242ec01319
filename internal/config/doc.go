// Package config provides layered application configuration: struct
// defaults, overlaid by an optional YAML file, overlaid by WDI_-prefixed
// environment variables, validated after loading. It also resolves the
// application's working directories relative to the executable.
package config
