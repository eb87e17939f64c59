package location

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Format is the naming convention a backup location was produced with.
type Format int

const (
	// FormatUnknown is any location without a recognised backup segment.
	FormatUnknown Format = iota
	// FormatLegacy is a location written with the "backup" label.
	FormatLegacy
	// FormatComponent is a location written by the ybc component, labelled
	// "ybc_backup".
	FormatComponent
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatComponent:
		return "ybc"
	default:
		return "unknown"
	}
}

var universeSegment = regexp.MustCompile(`(?i)^univ-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Classify inspects the segment right after the universe segment of
// concrete. Only its leading token (up to the first "-") is compared, so
// "ybc" or "backup" appearing anywhere else in the path has no effect.
func Classify(configDefault, concrete string) Format {
	rest := concrete
	if rel, err := StripPrefix(configDefault, concrete); err == nil {
		rest = rel
	}

	seg, ok := FirstSegmentAfter(Segments(rest), universeSegment.MatchString)
	if !ok {
		return FormatUnknown
	}
	token, _, _ := strings.Cut(seg, "-")

	f := FormatUnknown
	switch {
	case strings.EqualFold(token, ComponentLabel):
		f = FormatComponent
	case strings.EqualFold(token, LegacyLabel):
		f = FormatLegacy
	}
	log.Debug().
		Str("action", "classify").
		Str("location", concrete).
		Str("segment", seg).
		Stringer("format", f).
		Msg("classified backup location")
	return f
}

// IsComponentFormat reports whether concrete was written by the ybc
// component backup mechanism.
func IsComponentFormat(configDefault, concrete string) bool {
	return Classify(configDefault, concrete) == FormatComponent
}
