// Package availability computes the set of bookable calendar days for the
// rolling booking window.
package availability

import (
	"math/rand/v2"
	"sort"
	"time"
)

const (
	// WindowMonths is the length of the rolling availability window.
	WindowMonths = 3
	// GuaranteedDays is the number of days, starting today, whose weekdays
	// are always bookable.
	GuaranteedDays = 7
	// excludeBelow marks a weekday as booked out when the random draw is below it.
	excludeBelow = 0.2
)

// RandSource supplies uniformly distributed values in [0, 1).
type RandSource interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) RandSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Set is an immutable set of bookable days keyed by YYYY-MM-DD.
type Set struct {
	days map[string]struct{}
}

// NewSet builds a set from canonical keys.
func NewSet(keys ...string) Set {
	days := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		days[k] = struct{}{}
	}
	return Set{days: days}
}

// Has reports whether the calendar day of t is bookable.
func (s Set) Has(t time.Time) bool {
	return s.HasKey(Key(t))
}

// HasKey reports whether key is bookable.
func (s Set) HasKey(key string) bool {
	_, ok := s.days[key]
	return ok
}

// Len returns the number of bookable days.
func (s Set) Len() int {
	return len(s.days)
}

// Keys returns the bookable day keys in ascending order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.days))
	for k := range s.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Generator produces availability sets from an injected random source.
type Generator struct {
	rnd RandSource
}

// NewGenerator creates a generator. A nil source panics.
func NewGenerator(rnd RandSource) *Generator {
	if rnd == nil {
		panic("availability: random source required")
	}
	return &Generator{rnd: rnd}
}

// Generate returns the bookable weekdays from ref through ref + WindowMonths.
// Each weekday is kept with 80% probability; the first GuaranteedDays days
// keep every weekday regardless of the draw.
func (g *Generator) Generate(ref time.Time) Set {
	start := StartOfDay(ref)
	end := start.AddDate(0, WindowMonths, 0)

	days := make(map[string]struct{})
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !IsWeekday(d) {
			continue
		}
		if g.rnd.Float64() >= excludeBelow {
			days[Key(d)] = struct{}{}
		}
	}

	for i := 0; i < GuaranteedDays; i++ {
		d := start.AddDate(0, 0, i)
		if IsWeekday(d) {
			days[Key(d)] = struct{}{}
		}
	}
	return Set{days: days}
}
