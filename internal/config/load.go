package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Provider names accepted by the CLI and the credentials file.
const (
	ProviderDigitalOcean = "digitalocean"
	ProviderGCP          = "gcp"
	ProviderHetzner      = "hetzner"
)

// ErrMissingCredentials is returned by Validate when a provider has no credentials.
var ErrMissingCredentials = errors.New("missing provider credentials")

// Credentials holds the provider credentials.
type Credentials struct {
	DigitalOcean DigitalOceanCredentials `mapstructure:"digitalocean" yaml:"digitalocean"`
	GCP          GCPCredentials          `mapstructure:"gcp" yaml:"gcp"`
	Hetzner      HetznerCredentials      `mapstructure:"hetzner" yaml:"hetzner"`
}

// DigitalOceanCredentials holds a DigitalOcean API token.
type DigitalOceanCredentials struct {
	Token string `mapstructure:"token" yaml:"token"`
}

// GCPCredentials selects the project and, optionally, a service account key file.
// Without a key file, application default credentials are used.
type GCPCredentials struct {
	Project         string `mapstructure:"project" yaml:"project"`
	CredentialsFile string `mapstructure:"credentialsFile" yaml:"credentialsFile"`
}

// HetznerCredentials holds a Hetzner Cloud API token.
type HetznerCredentials struct {
	Token string `mapstructure:"token" yaml:"token"`
}

// LoadFile reads credentials from a YAML file and applies environment
// overrides. An empty path loads from the environment only.
func LoadFile(path string) (*Credentials, error) {
	var creds Credentials

	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &creds,
			ErrorUnused: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	creds.applyEnv()
	return &creds, nil
}

// applyEnv overrides file values with the providers' standard variables.
func (c *Credentials) applyEnv() {
	override(&c.DigitalOcean.Token, "DIGITALOCEAN_TOKEN")
	override(&c.Hetzner.Token, "HCLOUD_TOKEN")
	override(&c.GCP.Project, "GOOGLE_CLOUD_PROJECT")
	override(&c.GCP.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
}

func override(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

// Validate checks that the credentials for provider are present.
func (c *Credentials) Validate(provider string) error {
	switch provider {
	case ProviderDigitalOcean:
		if c.DigitalOcean.Token == "" {
			return fmt.Errorf("%w: digitalocean.token or DIGITALOCEAN_TOKEN is required", ErrMissingCredentials)
		}
	case ProviderGCP:
		if c.GCP.Project == "" {
			return fmt.Errorf("%w: gcp.project or GOOGLE_CLOUD_PROJECT is required", ErrMissingCredentials)
		}
	case ProviderHetzner:
		if c.Hetzner.Token == "" {
			return fmt.Errorf("%w: hetzner.token or HCLOUD_TOKEN is required", ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("unknown provider %q (expected %s, %s or %s)",
			provider, ProviderDigitalOcean, ProviderGCP, ProviderHetzner)
	}
	return nil
}
