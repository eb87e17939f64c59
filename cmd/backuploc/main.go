package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/backup-locations/internal/config"
	"github.com/Chapsvision-dev/backup-locations/internal/location"
	"github.com/Chapsvision-dev/backup-locations/internal/logx"
	"github.com/Chapsvision-dev/backup-locations/internal/region"
	"github.com/Chapsvision-dev/backup-locations/internal/schedule"
	"github.com/Chapsvision-dev/backup-locations/internal/storage"
	"github.com/Chapsvision-dev/backup-locations/internal/version"

	_ "github.com/Chapsvision-dev/backup-locations/internal/storage/azure"
)

// Test seams — overridden in unit tests. Keep signatures in sync with packages.
var (
	loadConfig func() (config.Config, error)                      = config.Load
	newBackend func(name string, cfg any) (storage.Backend, error) = storage.New
	now        func() time.Time                                    = time.Now
	stdin      io.Reader                                           = os.Stdin
	exit       func(int)                                           = os.Exit
)

const usage = `
Usage:
  backuploc format    [universeUUID] [backupUUID] [keyspace] [tableUUIDs]
  backuploc resolve   [location]
  backuploc rewrite   [location] [region]
  backuploc classify  [location]
  backuploc locate    [location]
  backuploc cron      [expression]
  backuploc frequency [milliseconds]
  backuploc regions   [file|-]
  backuploc version | --version | -v
  backuploc help    | --help    | -h

Notes:
  - Arguments fall back to env vars:
      BACKUP_UNIVERSE_UUID, BACKUP_UUID, BACKUP_KEYSPACE, BACKUP_TABLE_UUIDS,
      BACKUP_LOCATION, BACKUP_REGION, BACKUP_CRON, BACKUP_FREQUENCY_MS, BACKUP_REGIONS_FILE
  - Storage is selected with STORAGE_TYPE (nfs|s3|gcs|azure, default: s3) and
    rooted at BACKUP_DEFAULT_LOCATION (required for format/resolve/rewrite/classify/locate).
  - Region overrides: BACKUP_REGION_LOCATIONS=region=location,...
  - BACKUP_COMPONENT_FORMAT=true formats ybc locations.
`

var errUsage = errors.New("usage error")

// main wires CLI -> config -> storage backend -> location engine.
// Exit codes: 0 success, 1 runtime error, 2 usage error.
func main() {
	_ = godotenv.Load() // best-effort
	logx.InitFromEnv()

	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Print(usage)
		exit(2)
	}
	action := strings.ToLower(args[0])

	// Handle version command
	if action == "version" || action == "--version" || action == "-v" {
		fmt.Println(version.Info())
		exit(0)
	}

	// Handle help command
	if action == "help" || action == "--help" || action == "-h" {
		fmt.Print(usage)
		exit(0)
	}

	var err error
	switch action {
	case "cron":
		err = runCron(pickArgOrEnv(2, "BACKUP_CRON", ""))
	case "frequency":
		err = runFrequency(pickArgOrEnv(2, "BACKUP_FREQUENCY_MS", ""))
	case "regions":
		err = runRegions(pickArgOrEnv(2, "BACKUP_REGIONS_FILE", ""))
	case "format", "resolve", "rewrite", "classify", "locate":
		err = runWithStorage(action)
	default:
		fmt.Print(usage)
		exit(2)
	}

	if errors.Is(err, errUsage) {
		log.Error().Err(err).Str("action", action).Msg("invalid arguments")
		fmt.Print(usage)
		exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("command failed")
		exit(1)
	}
}

// runWithStorage runs the commands that need the configured default
// location and storage backend.
func runWithStorage(action string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Build storage backend from config.
	b, err := newBackend(cfg.StorageType, cfg)
	if err != nil {
		return fmt.Errorf("storage backend %s: %w", cfg.StorageType, err)
	}

	switch action {
	case "format":
		return runFormat(cfg, b)
	case "resolve":
		return runResolve(cfg, b, pickArgOrEnv(2, "BACKUP_LOCATION", ""))
	case "rewrite":
		return runRewrite(cfg, pickArgOrEnv(2, "BACKUP_LOCATION", ""), pickArgOrEnv(3, "BACKUP_REGION", ""))
	case "classify":
		return runClassify(cfg, pickArgOrEnv(2, "BACKUP_LOCATION", ""))
	default:
		return runLocate(b, pickArgOrEnv(2, "BACKUP_LOCATION", ""))
	}
}

func runFormat(cfg config.Config, b storage.Backend) error {
	target, err := parseTarget(
		pickArgOrEnv(2, "BACKUP_UNIVERSE_UUID", ""),
		pickArgOrEnv(3, "BACKUP_UUID", ""),
		pickArgOrEnv(4, "BACKUP_KEYSPACE", ""),
		pickArgOrEnv(5, "BACKUP_TABLE_UUIDS", ""),
	)
	if err != nil {
		return err
	}
	target.ComponentFormat = cfg.ComponentFormat
	target.CreatedAt = now().UTC().Truncate(time.Second)

	loc := location.FormatLocation(cfg.DefaultLocation, target)
	if _, err := b.Object(loc); err != nil {
		return err
	}
	log.Info().
		Str("action", "format").
		Str("storage", b.Name()).
		Str("universe", target.UniverseUUID.String()).
		Str("backup", target.BackupUUID.String()).
		Str("location", loc).
		Msg("formatted backup location")
	fmt.Println(loc)
	return nil
}

// parseTarget builds a backup target from CLI values. A missing backup UUID
// is generated, as for a new backup.
func parseTarget(universe, backup, keyspace, tables string) (location.Target, error) {
	var t location.Target
	if strings.TrimSpace(keyspace) == "" {
		return t, fmt.Errorf("%w: keyspace is required", errUsage)
	}
	t.Keyspace = strings.TrimSpace(keyspace)

	u, err := uuid.Parse(strings.TrimSpace(universe))
	if err != nil {
		return t, fmt.Errorf("%w: universe uuid: %v", errUsage, err)
	}
	t.UniverseUUID = u

	if strings.TrimSpace(backup) == "" {
		t.BackupUUID = uuid.New()
	} else if t.BackupUUID, err = uuid.Parse(strings.TrimSpace(backup)); err != nil {
		return t, fmt.Errorf("%w: backup uuid: %v", errUsage, err)
	}

	for _, s := range strings.Split(tables, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return t, fmt.Errorf("%w: table uuid %q: %v", errUsage, s, err)
		}
		t.Tables = append(t.Tables, id)
	}
	return t, nil
}

func runResolve(cfg config.Config, b storage.Backend, loc string) error {
	if loc == "" {
		return fmt.Errorf("%w: location is required", errUsage)
	}
	id, err := location.ResolveIdentifier(cfg.DefaultLocation, loc, b.Filesystem())
	if err != nil {
		return err
	}
	log.Info().Str("action", "resolve").Str("location", loc).Str("identifier", id).Msg("resolved backup identifier")
	fmt.Println(id)
	return nil
}

// runRewrite prints the location for one region, or for every configured
// region override when no region is given.
func runRewrite(cfg config.Config, loc, r string) error {
	if loc == "" {
		return fmt.Errorf("%w: location is required", errUsage)
	}
	if r == "" {
		all, err := location.RewriteAll(loc, cfg.DefaultLocation, cfg.RegionLocations)
		if err != nil {
			return err
		}
		printLocations(all)
		return nil
	}

	regionLoc, ok := cfg.RegionLocations[r]
	if !ok {
		return fmt.Errorf("no location override for region %s", r)
	}
	out, err := location.RewriteForRegion(loc, cfg.DefaultLocation, regionLoc)
	if err != nil {
		return err
	}
	log.Info().Str("action", "rewrite").Str("region", r).Str("location", out).Msg("rewrote backup location")
	fmt.Println(out)
	return nil
}

func runClassify(cfg config.Config, loc string) error {
	if loc == "" {
		return fmt.Errorf("%w: location is required", errUsage)
	}
	fmt.Println(location.Classify(cfg.DefaultLocation, loc))
	return nil
}

func runLocate(b storage.Backend, loc string) error {
	if loc == "" {
		return fmt.Errorf("%w: location is required", errUsage)
	}
	obj, err := b.Object(loc)
	if err != nil {
		return err
	}
	fmt.Printf("storage=%s bucket=%s key=%s\n", b.Name(), obj.Bucket, obj.Key)
	return nil
}

func runCron(expr string) error {
	if expr == "" {
		return fmt.Errorf("%w: cron expression is required", errUsage)
	}
	if err := schedule.ValidateCronInterval(expr); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func runFrequency(raw string) error {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: frequency must be milliseconds: %v", errUsage, err)
	}
	if err := schedule.ValidateFrequency(ms); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

// runRegions extracts region locations from a backup script response read
// from a file, or from stdin for "-".
func runRegions(path string) error {
	var (
		locs region.Locations
		err  error
	)
	switch path {
	case "":
		return fmt.Errorf("%w: region data file is required", errUsage)
	case "-":
		data, rerr := io.ReadAll(stdin)
		if rerr != nil {
			return fmt.Errorf("read stdin: %w", rerr)
		}
		locs, err = region.Extract(data)
	default:
		locs, err = region.ExtractFile(path)
	}
	if err != nil {
		return err
	}
	printLocations(locs)
	return nil
}

func printLocations(locs region.Locations) {
	for _, r := range locs.Regions() {
		fmt.Printf("%s\t%s\n", r, locs[r])
	}
}

func pickArgOrEnv(idx int, env string, def string) string {
	if len(os.Args) > idx && os.Args[idx] != "" {
		return os.Args[idx]
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}
	return def
}
