package config

import _ "embed"

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns a commented config file matching Default.
func SampleConfig() string { return sampleConfig }
