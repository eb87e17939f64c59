package location

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// LegacyFilesystemDir is the directory older releases wrote NFS backups
// under, directly below the configured mount.
const LegacyFilesystemDir = "yugabyte_backup"

// ResolveIdentifier returns the backup identifier of concrete, i.e. the part
// of the location relative to configDefault. For filesystem stores a
// leading legacy directory is dropped as well, so NFS backups written by
// older releases resolve to the same identifier as object storage ones.
func ResolveIdentifier(configDefault, concrete string, filesystem bool) (string, error) {
	rel, err := StripPrefix(configDefault, concrete)
	if err != nil {
		return "", err
	}
	if filesystem && (rel == LegacyFilesystemDir || strings.HasPrefix(rel, LegacyFilesystemDir+sep)) {
		rel = strings.TrimLeft(strings.TrimPrefix(rel, LegacyFilesystemDir), sep)
	}
	return rel, nil
}

// RewriteForRegion moves concrete from the default location to the region
// location, keeping the backup identifier byte for byte. configRegion is
// used verbatim.
func RewriteForRegion(concrete, configDefault, configRegion string) (string, error) {
	id, err := ResolveIdentifier(configDefault, concrete, false)
	if err != nil {
		return "", err
	}
	out := configRegion + sep + id
	log.Debug().
		Str("action", "rewrite_region").
		Str("location", concrete).
		Str("region_location", out).
		Msg("rewrote backup location")
	return out, nil
}

// RewriteAll applies RewriteForRegion for every region override. It stops at
// the first failure and returns no partial result.
func RewriteAll(concrete, configDefault string, overrides map[string]string) (map[string]string, error) {
	regions := make([]string, 0, len(overrides))
	for r := range overrides {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	out := make(map[string]string, len(overrides))
	for _, r := range regions {
		loc, err := RewriteForRegion(concrete, configDefault, overrides[r])
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", r, err)
		}
		out[r] = loc
	}
	return out, nil
}
