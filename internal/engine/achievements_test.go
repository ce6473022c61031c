package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogKeysUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Catalog() {
		require.False(t, seen[def.Key], "duplicate key %q", def.Key)
		seen[def.Key] = true
		require.NotNil(t, def.Qualifies, "%s missing predicate", def.Key)
		require.NotNil(t, def.Progress, "%s missing progress", def.Key)
	}
	assert.Len(t, seen, 13)
}

func TestEvaluateFirstCompletion(t *testing.T) {
	c := Counters{
		TotalCompleted: 1,
		QuickWins:      1,
		Level:          1,
		Streak:         1,
		CompletedToday: 1,
		CompletedAt:    time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC),
	}
	newly := EvaluateAchievements(c, nil)
	keys := defKeys(newly)
	assert.Equal(t, []string{"first_task", "early_bird"}, keys)
}

func TestEvaluateIdempotent(t *testing.T) {
	c := Counters{
		TotalCompleted: 2,
		QuickWins:      2,
		Level:          1,
		Streak:         1,
		CompletedToday: 2,
		CompletedAt:    time.Date(2026, time.March, 10, 8, 30, 0, 0, time.UTC),
	}
	newly := EvaluateAchievements(c, map[string]bool{"first_task": true, "early_bird": true})
	assert.Empty(t, newly)
}

func TestEvaluateCatalogOrder(t *testing.T) {
	// A snapshot qualifying for many entries at once must come back in
	// catalog order, not threshold order.
	c := Counters{
		TotalCompleted: 100,
		QuickWins:      50,
		DeepWork:       50,
		Level:          10,
		Streak:         30,
		CompletedToday: 10,
		CompletedAt:    time.Date(2026, time.March, 10, 23, 0, 0, 0, time.UTC),
	}
	newly := EvaluateAchievements(c, nil)
	want := []string{
		"first_task", "streak_3", "streak_7", "streak_30",
		"quick_win_10", "deep_work_10", "level_5", "level_10",
		"tasks_50", "tasks_100", "daily_10", "night_owl",
	}
	assert.Equal(t, want, defKeys(newly))
}

func TestTimeOfDayBoundaries(t *testing.T) {
	base := Counters{TotalCompleted: 5, Level: 1, Streak: 1, CompletedToday: 1}

	at := func(hour, min int) Counters {
		c := base
		c.CompletedAt = time.Date(2026, time.March, 10, hour, min, 0, 0, time.UTC)
		return c
	}

	earlyBird, ok := CatalogDef("early_bird")
	require.True(t, ok)
	assert.True(t, earlyBird.Qualifies(at(8, 59)))
	assert.False(t, earlyBird.Qualifies(at(9, 0)))

	nightOwl, ok := CatalogDef("night_owl")
	require.True(t, ok)
	assert.False(t, nightOwl.Qualifies(at(21, 59)))
	assert.True(t, nightOwl.Qualifies(at(22, 0)))
}

func TestProgressClampedAtTarget(t *testing.T) {
	def, ok := CatalogDef("quick_win_10")
	require.True(t, ok)

	cur, target := def.Progress(Counters{QuickWins: 7})
	assert.Equal(t, 7, cur)
	assert.Equal(t, 10, target)

	cur, target = def.Progress(Counters{QuickWins: 25})
	assert.Equal(t, 10, cur)
	assert.Equal(t, 10, target)
}

func defKeys(defs []AchievementDef) []string {
	keys := make([]string, 0, len(defs))
	for _, d := range defs {
		keys = append(keys, d.Key)
	}
	return keys
}
