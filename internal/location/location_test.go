package location

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimTrailingSep(t *testing.T) {
	cases := map[string]string{
		"/tmp/nfs/":    "/tmp/nfs",
		"/tmp/nfs":     "/tmp/nfs",
		"s3://backup/": "s3://backup",
		"s3://":        "s3://",
		"s3:///":       "s3:///",
		"file:///":     "file:///",
		"file:////":    "file:///",
		"file:///tmp/": "file:///tmp",
		"/":            "",
		"":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TrimTrailingSep(in), "input %q", in)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "s3://backup/foo", Join("s3://backup", "foo"))
	assert.Equal(t, "s3://backup/foo", Join("s3://backup//", "/foo"))
	assert.Equal(t, "s3://foo", Join("s3://", "foo"))
	assert.Equal(t, "/foo", Join("/", "foo"))
	assert.Equal(t, "foo", Join("", "foo"))
	assert.Equal(t, "file:///foo", Join("file:///", "foo"))
}

func TestStripPrefix_SegmentBoundary(t *testing.T) {
	_, err := StripPrefix("s3://backup", "s3://backups/foo")
	require.ErrorIs(t, err, ErrPrefixMismatch)

	rel, err := StripPrefix("s3://backup", "s3://backup")
	require.NoError(t, err)
	assert.Equal(t, "", rel)
}

func TestStripPrefix_Root(t *testing.T) {
	for _, prefix := range []string{"/", "//"} {
		rel, err := StripPrefix(prefix, "/mnt//foo")
		require.NoError(t, err, prefix)
		assert.Equal(t, "mnt//foo", rel)

		for _, loc := range []string{"s3://bucket/foo", "relative/foo", ""} {
			_, err := StripPrefix(prefix, loc)
			require.ErrorIs(t, err, ErrPrefixMismatch, "%q under %q", loc, prefix)
		}
	}

	_, err := StripPrefix("", "/mnt/foo")
	require.ErrorIs(t, err, ErrPrefixMismatch)

	rel, err := StripPrefix("file:///", "file:///mnt/foo")
	require.NoError(t, err)
	assert.Equal(t, "mnt/foo", rel)
}

func TestSegmentsAndFirstSegmentAfter(t *testing.T) {
	segs := Segments("s3://foo//a/b/")
	assert.Equal(t, []string{"s3:", "foo", "a", "b"}, segs)

	got, ok := FirstSegmentAfter(segs, func(s string) bool { return s == "foo" })
	require.True(t, ok)
	assert.Equal(t, "a", got)

	_, ok = FirstSegmentAfter(segs, func(s string) bool { return s == "b" })
	assert.False(t, ok)
}

func TestResolveIdentifier(t *testing.T) {
	cases := []struct {
		configDefault string
		concrete      string
		withoutNFS    string
		withNFS       string
	}{
		{"/tmp/nfs/", "/tmp/nfs//yugabyte_backup/foo", "yugabyte_backup/foo", "foo"},
		{"/tmp/nfs", "/tmp/nfs/yugabyte_backup/foo", "yugabyte_backup/foo", "foo"},
		{"/tmp/nfs/", "/tmp/nfs//foo", "foo", "foo"},
		{"s3://backup", "s3://backup/foo", "foo", "foo"},
		{"s3://backup/", "s3://backup//foo", "foo", "foo"},
	}
	for _, tc := range cases {
		got, err := ResolveIdentifier(tc.configDefault, tc.concrete, false)
		require.NoError(t, err)
		assert.Equal(t, tc.withoutNFS, got, "%q under %q", tc.concrete, tc.configDefault)

		got, err = ResolveIdentifier(tc.configDefault, tc.concrete, true)
		require.NoError(t, err)
		assert.Equal(t, tc.withNFS, got, "%q under %q (nfs)", tc.concrete, tc.configDefault)
	}
}

func TestResolveIdentifier_LegacyDirOnlyAsWholeSegment(t *testing.T) {
	got, err := ResolveIdentifier("/tmp/nfs", "/tmp/nfs/yugabyte_backups/foo", true)
	require.NoError(t, err)
	assert.Equal(t, "yugabyte_backups/foo", got)
}

func TestResolveIdentifier_Mismatch(t *testing.T) {
	cases := []struct{ configDefault, concrete string }{
		{"s3://backup", "gs://backup/foo"},
		{"/", "s3://bucket/foo"},
		{"/", "relative/foo"},
		{"", "s3://bucket/foo"},
		{"", "/tmp/nfs/foo"},
	}
	for _, tc := range cases {
		for _, nfs := range []bool{false, true} {
			_, err := ResolveIdentifier(tc.configDefault, tc.concrete, nfs)
			require.ErrorIs(t, err, ErrPrefixMismatch, "%q under %q", tc.concrete, tc.configDefault)
		}
	}

	got, err := ResolveIdentifier("/", "/yugabyte_backup/foo", true)
	require.NoError(t, err)
	assert.Equal(t, "foo", got)
}

func TestRewriteForRegion(t *testing.T) {
	cases := []struct {
		concrete, configDefault, configRegion, want string
	}{
		{"s3://backup/foo", "s3://backup", "s3://region/", "s3://region//foo"},
		{"s3://backup/foo", "s3://backup", "s3://region", "s3://region/foo"},
		{"s3://backup//foo", "s3://backup/", "s3://region", "s3://region/foo"},
	}
	for _, tc := range cases {
		got, err := RewriteForRegion(tc.concrete, tc.configDefault, tc.configRegion)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	for _, tc := range []struct{ concrete, configDefault string }{
		{"s3://other/foo", "s3://backup"},
		{"gs://other/foo", "/"},
		{"relative/foo", "/"},
		{"s3://backup/foo", ""},
	} {
		got, err := RewriteForRegion(tc.concrete, tc.configDefault, "s3://region")
		require.ErrorIs(t, err, ErrPrefixMismatch, "%q under %q", tc.concrete, tc.configDefault)
		assert.Empty(t, got)
	}
}

func TestRewriteForRegion_PreservesSuffix(t *testing.T) {
	concrete := "s3://backup/univ-1/ybc_backup-x/keyspace-Foo%20bar"
	got, err := RewriteForRegion(concrete, "s3://backup", "s3://region")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "/univ-1/ybc_backup-x/keyspace-Foo%20bar"))
}

func TestRewriteAll(t *testing.T) {
	got, err := RewriteAll("s3://backup/foo", "s3://backup", map[string]string{
		"us-west1": "s3://reg1",
		"us-east1": "s3://reg3",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"us-west1": "s3://reg1/foo",
		"us-east1": "s3://reg3/foo",
	}, got)

	got, err = RewriteAll("s3://elsewhere/foo", "s3://backup", map[string]string{"us-west1": "s3://reg1"})
	require.ErrorIs(t, err, ErrPrefixMismatch)
	assert.Nil(t, got)
}

func TestFormatLocation(t *testing.T) {
	for _, tables := range [][]uuid.UUID{nil, {uuid.New()}} {
		for _, ybc := range []bool{true, false} {
			target := Target{
				UniverseUUID:    uuid.New(),
				BackupUUID:      uuid.New(),
				Keyspace:        "foo",
				Tables:          tables,
				ComponentFormat: ybc,
			}
			got := FormatLocation("s3://bucket/prefix/", target)

			if ybc {
				assert.Contains(t, got, "/ybc_backup")
			} else {
				assert.Contains(t, got, "/backup")
				assert.NotContains(t, got, "ybc_backup")
			}
			if len(tables) == 0 {
				assert.Contains(t, got, "/keyspace-foo")
			} else {
				assert.Contains(t, got, "/multi-table-foo")
			}
			assert.NotContains(t, strings.TrimPrefix(got, "s3://"), "//")
		}
	}
}

func TestFormatLocation_Layout(t *testing.T) {
	target := Target{
		UniverseUUID:    uuid.MustParse("318eef98-044b-4293-b560-73ef2e1f2df9"),
		BackupUUID:      uuid.MustParse("0f5b6c1e-8a9d-4c3b-9e2f-1a2b3c4d5e6f"),
		Keyspace:        "foo",
		CreatedAt:       time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		ComponentFormat: true,
	}
	want := "s3://bucket/univ-318eef98-044b-4293-b560-73ef2e1f2df9/" +
		"ybc_backup-2024-03-01T12:30:00-0f5b6c1e8a9d4c3b9e2f1a2b3c4d5e6f/keyspace-foo"
	assert.Equal(t, want, FormatLocation("s3://bucket", target))
	assert.Equal(t, want, FormatLocation("s3://bucket///", target))

	rooted := FormatLocation("file:///", target)
	assert.Equal(t, "file:///univ-318eef98-044b-4293-b560-73ef2e1f2df9/"+
		"ybc_backup-2024-03-01T12:30:00-0f5b6c1e8a9d4c3b9e2f1a2b3c4d5e6f/keyspace-foo", rooted)

	target.CreatedAt = time.Time{}
	target.ComponentFormat = false
	assert.Equal(t,
		"/mnt/nfs/univ-318eef98-044b-4293-b560-73ef2e1f2df9/backup-0f5b6c1e8a9d4c3b9e2f1a2b3c4d5e6f/keyspace-foo",
		FormatLocation("/mnt/nfs/", target))
}

func TestFormatLocation_SingleTable(t *testing.T) {
	target := Target{
		UniverseUUID: uuid.New(),
		BackupUUID:   uuid.New(),
		Keyspace:     "foo",
		TableName:    "bar",
		TableUUID:    uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
	}
	assert.True(t, strings.HasSuffix(FormatLocation("s3://b", target),
		"/table-foo.bar-aaaaaaaabbbbccccddddeeeeeeeeeeee"))

	target.TableUUID = uuid.Nil
	assert.True(t, strings.HasSuffix(FormatLocation("s3://b", target), "/table-foo.bar"))

	target.Tables = []uuid.UUID{uuid.New()}
	assert.True(t, strings.HasSuffix(FormatLocation("s3://b", target), "/multi-table-foo"))
}

func TestFormatLocation_Deterministic(t *testing.T) {
	target := Target{UniverseUUID: uuid.New(), BackupUUID: uuid.New(), Keyspace: "ks"}
	assert.Equal(t, FormatLocation("s3://b", target), FormatLocation("s3://b", target))
}

func TestFormatThenResolve(t *testing.T) {
	for _, prefix := range []string{"s3://backup", "s3://backup/", "/tmp/nfs", "/tmp/nfs//"} {
		target := Target{UniverseUUID: uuid.New(), BackupUUID: uuid.New(), Keyspace: "orders"}
		loc := FormatLocation(prefix, target)

		id, err := ResolveIdentifier(prefix, loc, false)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Contains(t, id, "orders")
		assert.False(t, strings.HasPrefix(id, "/"))
	}
}

func TestIsComponentFormat(t *testing.T) {
	cases := []struct {
		configLocation string
		backupLocation string
		want           bool
	}{
		{"s3://foo", "s3://foo/univ-318eef98-044b-4293-b560-73ef2e1f2df9/ybc_backup-foo/bar", true},
		{"s3://foo", "s3://foo/univ-318EEf98-044b-4293-b560-73ef2e1f2df9/ybc_backup-foo/bar", true},
		{"s3://foo", "s3://foo/univ-318eef98-044B-42A3-b560-73ef2e1f2df9/ybc_backup-foo/bar", true},
		{"s3://foo", "s3://foo/univ-318eef98-044b-4293-b560-73ef2e1f2df9/backup_ybc-foo/bar", false},
		{"s3://foo", "s3://foo/univ-318eef98-044b-4293-b560-73ef2e1f2df9/backup-foo/bar_ybc", false},
		{"s3://foo", "s3://foo/univ-318eef98-044b-4293-b560-73ef2e1f2df9/backup-foo/ybc_backup", false},
		{"/tmp/nfs", "/tmp/nfs/univ-318eef98-044b-4293-b560-73ef2e1f2df9/backup-foo/ybc_backup", false},
		{"/tmp/nfs", "/tmp/nfs/univ-318eef98-044b-4293-b560-73ef2e1f2df9/ybc_backup-foo/bar", true},
		{"/nfs", "/nfs/yugabyte_backup/univ-318eef98-044b-4293-b560-73ef2e1f2df9/ybc_backup-foo/bar", true},
		{"s3://foo", "s3://foo/univ-318eef98-044b-4293-b560-73ef2e1f2df9/YBC_BACKUP-foo/bar", true},
		{"s3://foo", "s3://foo/ybc_backup-foo/bar", false},
		{"s3://foo", "s3://foo/univ-not-a-uuid/ybc_backup-foo/bar", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsComponentFormat(tc.configLocation, tc.backupLocation), tc.backupLocation)
	}
}

func TestClassify(t *testing.T) {
	const u = "univ-318eef98-044b-4293-b560-73ef2e1f2df9"
	assert.Equal(t, FormatComponent, Classify("s3://foo", "s3://foo/"+u+"/ybc_backup-x/keyspace-a"))
	assert.Equal(t, FormatLegacy, Classify("s3://foo", "s3://foo/"+u+"/backup-x/keyspace-a"))
	assert.Equal(t, FormatUnknown, Classify("s3://foo", "s3://foo/"+u+"/backup_ybc-x/keyspace-a"))
	assert.Equal(t, FormatUnknown, Classify("s3://foo", "s3://foo/"+u))
	// A default location the backup is not under is ignored.
	assert.Equal(t, FormatComponent, Classify("s3://other", "s3://foo/"+u+"/ybc_backup-x/keyspace-a"))
	assert.Equal(t, "ybc", FormatComponent.String())
}

func TestFormatThenClassify(t *testing.T) {
	for _, ybc := range []bool{true, false} {
		target := Target{UniverseUUID: uuid.New(), BackupUUID: uuid.New(), Keyspace: "ks", ComponentFormat: ybc}
		loc := FormatLocation("/tmp/nfs/", target)
		assert.Equal(t, ybc, IsComponentFormat("/tmp/nfs", loc))
		if !ybc {
			assert.Equal(t, FormatLegacy, Classify("/tmp/nfs", loc))
		}
	}
}
