package region

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// snapshotURLKey is the one key of the backup script response that is not
// a region.
const snapshotURLKey = "snapshot_url"

// ErrMalformedRegionData is returned for region data that cannot be read as
// region/location pairs.
var ErrMalformedRegionData = errors.New("malformed region location data")

// Locations maps a region name to the backup location used for it.
type Locations map[string]string

// Regions returns the region names in sorted order.
func (l Locations) Regions() []string {
	out := make([]string, 0, len(l))
	for r := range l {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

type entry struct {
	Region   *string `json:"region"`
	Location *string `json:"location"`
}

// Extract returns the per-region locations of a backup script response.
// Two shapes are accepted: a list of {"region", "location"} objects, or an
// object keyed by region next to an optional "snapshot_url". An empty or
// null document yields an empty map.
func Extract(doc []byte) (Locations, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return Locations{}, nil
	}

	var (
		out Locations
		err error
	)
	switch doc[0] {
	case '[':
		out, err = fromList(doc)
	case '{':
		out, err = fromObject(doc)
	default:
		err = fmt.Errorf("%w: expected a JSON array or object", ErrMalformedRegionData)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("action", "extract_regions").
		Int("regions", len(out)).
		Msg("extracted region locations")
	return out, nil
}

// ExtractFile reads a backup script response from path and extracts it.
func ExtractFile(path string) (Locations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region data: %w", err)
	}
	return Extract(data)
}

// SnapshotURL returns the snapshot_url of an object-shaped response.
func SnapshotURL(doc []byte) (string, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return "", false
	}
	v, ok := raw[snapshotURLKey]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func fromList(doc []byte) (Locations, error) {
	var entries []*entry
	if err := json.Unmarshal(doc, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRegionData, err)
	}
	out := make(Locations, len(entries))
	for i, e := range entries {
		if e == nil || e.Region == nil || e.Location == nil {
			return nil, fmt.Errorf("%w: entry %d: region and location are required", ErrMalformedRegionData, i)
		}
		if err := out.add(*e.Region, *e.Location); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

func fromObject(doc []byte) (Locations, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRegionData, err)
	}
	out := make(Locations, len(raw))
	for k, v := range raw {
		if k == snapshotURLKey {
			continue
		}
		var loc string
		if err := json.Unmarshal(v, &loc); err != nil {
			return nil, fmt.Errorf("%w: region %q: location must be a string", ErrMalformedRegionData, k)
		}
		if err := out.add(k, loc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// add stores loc as given; blank values are rejected.
func (l Locations) add(r, loc string) error {
	if strings.TrimSpace(r) == "" || strings.TrimSpace(loc) == "" {
		return fmt.Errorf("%w: region and location must be non-empty", ErrMalformedRegionData)
	}
	if _, dup := l[r]; dup {
		return fmt.Errorf("%w: duplicate region %q", ErrMalformedRegionData, r)
	}
	l[r] = loc
	return nil
}

// ParsePairs parses "region=location" pairs separated by commas, the form
// used for region overrides in the environment.
func ParsePairs(s string) (Locations, error) {
	out := Locations{}
	for _, p := range strings.Split(s, ",") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		r, loc, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not region=location", ErrMalformedRegionData, p)
		}
		if err := out.add(strings.TrimSpace(r), strings.TrimSpace(loc)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
