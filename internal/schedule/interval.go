package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	// MinInterval is the shortest allowed gap between two scheduled backups.
	MinInterval = time.Hour
	// MinFrequencyMillis is MinInterval expressed in milliseconds.
	MinFrequencyMillis = int64(MinInterval / time.Millisecond)

	// lookahead bounds how far ahead fire times are inspected.
	lookahead = 366 * 24 * time.Hour
	// maxOccurrences bounds the walk; a schedule that respects MinInterval
	// fires fewer times than this within lookahead.
	maxOccurrences = 10000
)

var (
	// ErrScheduleTooFrequent is returned when two runs would be less than
	// MinInterval apart.
	ErrScheduleTooFrequent = errors.New("schedule too frequent")
	// ErrInvalidCron is returned for a cron expression that does not parse.
	ErrInvalidCron = errors.New("invalid cron expression")
	// ErrNoSchedule is returned by Spec.Validate when nothing is set.
	ErrNoSchedule = errors.New("neither cron expression nor frequency set")
)

// Spec is a backup recurrence: a cron expression or a frequency.
// The cron expression wins when both are set.
type Spec struct {
	CronExpression  string
	FrequencyMillis int64
}

// Validate checks s against the minimum interval.
func (s Spec) Validate() error {
	switch {
	case s.CronExpression != "":
		return ValidateCronInterval(s.CronExpression)
	case s.FrequencyMillis != 0:
		return ValidateFrequency(s.FrequencyMillis)
	default:
		return ErrNoSchedule
	}
}

// ValidateFrequency fails when frequencyMillis is below one hour.
func ValidateFrequency(frequencyMillis int64) error {
	if frequencyMillis < MinFrequencyMillis {
		return fmt.Errorf("%w: minimum schedule duration is 1 hour", ErrScheduleTooFrequent)
	}
	return nil
}

// ValidateCronInterval fails when two consecutive fire times of the
// standard 5-field cron expression are less than one hour apart.
func ValidateCronInterval(expr string) error {
	return ValidateCronIntervalFrom(expr, time.Now())
}

// ValidateCronIntervalFrom is ValidateCronInterval with fire times computed
// from anchor instead of the current time.
func ValidateCronIntervalFrom(expr string, anchor time.Time) error {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}

	gap, ok := minGap(sched, anchor.UTC())
	if !ok {
		log.Debug().Str("action", "validate_cron").Str("cron", expr).Msg("schedule never fires")
		return nil
	}
	log.Debug().
		Str("action", "validate_cron").
		Str("cron", expr).
		Dur("min_gap", gap).
		Msg("computed schedule interval")
	if gap < MinInterval {
		return fmt.Errorf("%w: duration between the cron schedules cannot be less than 1 hour", ErrScheduleTooFrequent)
	}
	return nil
}

// minGap returns the smallest gap between consecutive fire times starting
// at from. It stops early once the gap is known to be too small.
func minGap(sched cron.Schedule, from time.Time) (time.Duration, bool) {
	horizon := from.Add(lookahead)
	prev := sched.Next(from)
	if prev.IsZero() {
		return 0, false
	}

	var smallest time.Duration
	found := false
	for i := 0; i < maxOccurrences && !prev.After(horizon); i++ {
		next := sched.Next(prev)
		if next.IsZero() {
			break
		}
		if gap := next.Sub(prev); !found || gap < smallest {
			smallest = gap
			found = true
		}
		if smallest < MinInterval {
			break
		}
		prev = next
	}
	return smallest, found
}
