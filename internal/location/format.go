package location

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Directory labels of the two backup naming conventions.
const (
	ComponentLabel = "ybc_backup"
	LegacyLabel    = "backup"

	universePrefix  = "univ-"
	timestampLayout = "2006-01-02T15:04:05"
)

// Target describes what a backup covers and how it is named.
type Target struct {
	UniverseUUID uuid.UUID
	BackupUUID   uuid.UUID
	Keyspace     string

	// Tables selects a multi-table backup when non-empty.
	Tables []uuid.UUID
	// TableName selects a single-table backup when Tables is empty.
	TableName string
	TableUUID uuid.UUID

	// CreatedAt is rendered into the backup directory name; zero omits it.
	CreatedAt time.Time

	// ComponentFormat selects the ybc naming convention.
	ComponentFormat bool
}

// Label returns the backup directory label for t.
func (t Target) Label() string {
	if t.ComponentFormat {
		return ComponentLabel
	}
	return LegacyLabel
}

// FormatLocation builds the canonical storage location of t under
// defaultPrefix:
//
//	<prefix>/univ-<universe>/<label>[-<created>]-<backup>/<target>
//
// The result only depends on its inputs.
func FormatLocation(defaultPrefix string, t Target) string {
	dir := []string{t.Label()}
	if !t.CreatedAt.IsZero() {
		dir = append(dir, t.CreatedAt.UTC().Format(timestampLayout))
	}
	dir = append(dir, hexID(t.BackupUUID))

	rel := universePrefix + t.UniverseUUID.String() +
		sep + strings.Join(dir, "-") +
		sep + targetSegment(t)
	return Join(defaultPrefix, rel)
}

func targetSegment(t Target) string {
	switch {
	case len(t.Tables) > 0:
		return "multi-table-" + t.Keyspace
	case t.TableName != "":
		seg := "table-" + t.Keyspace + "." + t.TableName
		if t.TableUUID != uuid.Nil {
			seg += "-" + hexID(t.TableUUID)
		}
		return seg
	default:
		return "keyspace-" + t.Keyspace
	}
}

func hexID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
