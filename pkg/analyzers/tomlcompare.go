package analyzers

import (
	"math"
	"time"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/matzehuels/cratescan/pkg/errors"
)

// TOMLCompare parses each document with both BurntSushi/toml and
// pelletier/go-toml and fails when the parsers disagree: one accepts what
// the other rejects, or both accept but decode different values.
// Documents rejected by both are not reported.
type TOMLCompare struct{}

// ScanEntry compares the two parses of one document.
func (TOMLCompare) ScanEntry(path, contents string) error {
	var a map[string]any
	_, errA := toml.Decode(contents, &a)

	var b map[string]any
	errB := gotoml.Unmarshal([]byte(contents), &b)

	switch {
	case errA != nil && errB != nil:
		return nil
	case errA != nil:
		return errors.Wrap(errors.ErrCodeScan, errA, "parse difference: go-toml accepts, BurntSushi rejects %s", path)
	case errB != nil:
		return errors.Wrap(errors.ErrCodeScan, errB, "parse difference: BurntSushi accepts, go-toml rejects %s", path)
	}
	if !equalTOML(a, b) {
		return errors.New(errors.ErrCodeScan, "compare mismatch %s", path)
	}
	return nil
}

// equalTOML compares a value decoded by BurntSushi/toml (a) with one decoded
// by go-toml (b).
func equalTOML(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !equalTOML(x, y) {
				return false
			}
		}
		return true
	case []map[string]any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalTOML(av[i], bv[i]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalTOML(av[i], bv[i]) {
				return false
			}
		}
		return true
	case float64:
		bv, ok := b.(float64)
		return ok && (av == bv || math.IsNaN(av) && math.IsNaN(bv))
	case time.Time:
		return equalTime(av, b)
	default:
		return a == b
	}
}

// equalTime compares a BurntSushi datetime, which carries local date and
// time values as time.Time in a marker location, with go-toml's value.
func equalTime(a time.Time, b any) bool {
	switch bv := b.(type) {
	case time.Time:
		return a.Equal(bv)
	case gotoml.LocalDateTime:
		return sameDate(a, bv.LocalDate) && sameClock(a, bv.LocalTime)
	case gotoml.LocalDate:
		return sameDate(a, bv)
	case gotoml.LocalTime:
		return sameClock(a, bv)
	default:
		return false
	}
}

func sameDate(a time.Time, d gotoml.LocalDate) bool {
	return a.Year() == d.Year && int(a.Month()) == d.Month && a.Day() == d.Day
}

func sameClock(a time.Time, t gotoml.LocalTime) bool {
	return a.Hour() == t.Hour && a.Minute() == t.Minute && a.Second() == t.Second && a.Nanosecond() == t.Nanosecond
}
