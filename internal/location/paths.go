// Package location builds, resolves and classifies backup storage locations.
// A location is either an object storage URI (s3://bucket/path) or a
// filesystem path (/mnt/nfs/path); both are handled as plain "/"-separated
// strings.
package location

import (
	"errors"
	"fmt"
	"strings"
)

const sep = "/"

var (
	// ErrPrefixMismatch is returned when a concrete location does not live
	// under the configured location it is resolved against.
	ErrPrefixMismatch = errors.New("location prefix mismatch")
)

// TrimTrailingSep removes every trailing separator. A bare scheme marker
// such as "s3://" is kept as is, and so is a scheme rooted at "/"
// ("file:///").
func TrimTrailingSep(loc string) string {
	t := strings.TrimRight(loc, sep)
	if strings.HasSuffix(t, ":") {
		switch n := len(loc) - len(t); {
		case n >= 3:
			return t + "///"
		case n == 2:
			return t + "//"
		}
	}
	return t
}

// EnsureTrailingSep returns loc ending in exactly one separator.
func EnsureTrailingSep(loc string) string {
	t := TrimTrailingSep(loc)
	if strings.HasSuffix(t, sep) {
		return t
	}
	return t + sep
}

// Join appends rel to prefix with exactly one separator between them.
func Join(prefix, rel string) string {
	rel = strings.TrimLeft(rel, sep)
	if prefix == "" {
		return rel
	}
	return EnsureTrailingSep(prefix) + rel
}

// StripPrefix returns the part of loc that follows prefix. Runs of
// separators at the junction count as one, and the match has to end on a
// segment boundary ("s3://backup" is not a prefix of "s3://backups/x").
// An empty prefix matches nothing; "/" matches absolute paths only.
func StripPrefix(prefix, loc string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty prefix", ErrPrefixMismatch)
	}
	p := TrimTrailingSep(prefix)
	if p == "" {
		p = sep
	}
	if !strings.HasPrefix(loc, p) {
		return "", fmt.Errorf("%w: %q is not under %q", ErrPrefixMismatch, loc, prefix)
	}
	rest := loc[len(p):]
	if p != "" && rest != "" && !strings.HasSuffix(p, sep) && !strings.HasPrefix(rest, sep) {
		return "", fmt.Errorf("%w: %q is not under %q", ErrPrefixMismatch, loc, prefix)
	}
	return strings.TrimLeft(rest, sep), nil
}

// Segments splits loc on separators and drops empty segments.
func Segments(loc string) []string {
	parts := strings.Split(loc, sep)
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FirstSegmentAfter returns the segment that follows the first segment
// accepted by match.
func FirstSegmentAfter(segs []string, match func(string) bool) (string, bool) {
	for i, s := range segs {
		if match(s) {
			if i+1 < len(segs) {
				return segs[i+1], true
			}
			return "", false
		}
	}
	return "", false
}
