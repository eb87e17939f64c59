package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Chapsvision-dev/backup-locations/internal/region"
	"github.com/Chapsvision-dev/backup-locations/internal/storage"
)

type Config struct {
	// StorageType selects the storage backend ("nfs", "s3", "gcs", "azure").
	StorageType string

	// DefaultLocation is the customer-level root every backup lives under
	// unless a region override applies.
	DefaultLocation string
	RegionLocations region.Locations

	// ComponentFormat selects ybc naming for newly formatted locations.
	ComponentFormat bool

	Azure AzureConfig
}

type AzureConfig struct {
	Account   string // optional, restricts locations to this storage account
	Container string // optional, restricts locations to this container
}

// Load reads config from environment variables, applies defaults and validates.
func Load() (Config, error) {
	get := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return def
	}

	parseBool := func(key string, def bool) bool {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "y", "on":
				return true
			case "0", "false", "no", "n", "off":
				return false
			}
		}
		return def
	}

	regions, err := region.ParsePairs(get("BACKUP_REGION_LOCATIONS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("BACKUP_REGION_LOCATIONS: %w", err)
	}

	cfg := Config{
		StorageType:     strings.ToLower(strings.TrimSpace(get("STORAGE_TYPE", "s3"))),
		DefaultLocation: strings.TrimSpace(get("BACKUP_DEFAULT_LOCATION", "")),
		RegionLocations: regions,
		ComponentFormat: parseBool("BACKUP_COMPONENT_FORMAT", false),

		Azure: AzureConfig{
			Account:   strings.TrimSpace(get("AZURE_STORAGE_ACCOUNT", "")),
			Container: strings.TrimSpace(get("AZURE_STORAGE_CONTAINER", "")),
		},
	}

	if cfg.StorageType == "" {
		cfg.StorageType = "s3"
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks that a default location is set and the storage type is known.
func (c *Config) validate() error {
	if c.DefaultLocation == "" {
		return errors.New("BACKUP_DEFAULT_LOCATION is required")
	}
	if !storage.Registered(c.StorageType) {
		return fmt.Errorf("unsupported storage type: %s (known: %s)", c.StorageType, strings.Join(storage.Names(), ", "))
	}
	return nil
}

// RegionLocation returns the override for r, falling back to the default
// location.
func (c Config) RegionLocation(r string) string {
	if loc, ok := c.RegionLocations[r]; ok {
		return loc
	}
	return c.DefaultLocation
}
