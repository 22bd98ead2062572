package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

type seqSource struct {
	values []float64
	i      int
}

func (s *seqSource) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func mustDay(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := ParseKey(key, time.UTC)
	require.NoError(t, err)
	return d
}

func TestGenerateOnlyWeekdays(t *testing.T) {
	refs := []string{"2026-10-19", "2026-10-24", "2026-11-30", "2027-02-28", "2028-02-29"}
	for _, ref := range refs {
		t.Run(ref, func(t *testing.T) {
			set := NewGenerator(NewSeededSource(42)).Generate(mustDay(t, ref))
			require.NotZero(t, set.Len())
			for _, key := range set.Keys() {
				d := mustDay(t, key)
				assert.Truef(t, IsWeekday(d), "%s is a %s", key, d.Weekday())
			}
		})
	}
}

func TestGenerateGuaranteesFirstWeek(t *testing.T) {
	// Everything is drawn as booked out, so only the guaranteed window survives.
	ref := mustDay(t, "2026-10-22") // Thursday
	set := NewGenerator(constSource(0)).Generate(ref)

	assert.Equal(t, []string{
		"2026-10-22", "2026-10-23", "2026-10-26", "2026-10-27", "2026-10-28",
	}, set.Keys())
}

func TestGenerateIncludesAllWeekdaysAtThreshold(t *testing.T) {
	ref := mustDay(t, "2026-10-19")
	set := NewGenerator(constSource(0.2)).Generate(ref)

	end := ref.AddDate(0, WindowMonths, 0)
	want := 0
	for d := ref; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWeekday(d) {
			want++
			assert.True(t, set.Has(d), "expected %s to be available", Key(d))
		}
	}
	assert.Equal(t, want, set.Len())
	assert.True(t, set.HasKey("2027-01-19"), "window end is inclusive")
	assert.False(t, set.HasKey("2027-01-20"))
}

func TestGenerateExcludesLowDraws(t *testing.T) {
	ref := mustDay(t, "2026-10-19")
	// Alternate booked-out / free draws.
	set := NewGenerator(&seqSource{values: []float64{0.1, 0.9}}).Generate(ref)

	// Day 8 (Tue 27th) is outside the guaranteed window; weekday draws:
	// 19:0.1 20:0.9 21:0.1 22:0.9 23:0.1 26:0.9 27:0.1 28:0.9
	assert.False(t, set.HasKey("2026-10-27"))
	assert.True(t, set.HasKey("2026-10-28"))
	assert.True(t, set.HasKey("2026-10-19"), "guaranteed despite low draw")
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	ref := mustDay(t, "2026-10-19")
	a := NewGenerator(NewSeededSource(7)).Generate(ref)
	b := NewGenerator(NewSeededSource(7)).Generate(ref)
	assert.Equal(t, a.Keys(), b.Keys())
}

func TestGenerateIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	late := time.Date(2026, 10, 19, 23, 30, 0, 0, loc)
	set := NewGenerator(constSource(0)).Generate(late)
	assert.True(t, set.HasKey("2026-10-19"))
}

func TestNewGeneratorRequiresSource(t *testing.T) {
	assert.Panics(t, func() { NewGenerator(nil) })
}

func TestSetLookups(t *testing.T) {
	set := NewSet("2026-10-21", "2026-10-20")
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"2026-10-20", "2026-10-21"}, set.Keys())
	assert.True(t, set.Has(time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC)))
	assert.False(t, Set{}.HasKey("2026-10-20"))
}
