// Package config loads the runtime configuration of the host tooling:
// monitor cadences and provider call timeouts from the environment, and
// provider credentials from a YAML file with environment overrides.
package config
