package engine

import "time"

// Counters is the aggregate snapshot the evaluator works against. It is built
// by the orchestrator from the just-updated aggregates, never from live
// queries, so predicates stay trivially testable with literal inputs.
type Counters struct {
	TotalCompleted int
	QuickWins      int
	DeepWork       int
	Level          int
	Streak         int
	CompletedToday int
	// CompletedAt is the completion timestamp in the engine's location, used
	// by the time-of-day achievements.
	CompletedAt time.Time
}

type AchievementDef struct {
	Key         string
	Name        string
	Description string
	Icon        string

	Qualifies func(Counters) bool
	// Progress reports (current, target) for locked-achievement displays.
	Progress func(Counters) (int, int)
}

const (
	EarlyBirdHour = 9
	NightOwlHour  = 22
)

// Catalog returns the fixed achievement catalog in declaration order. The
// evaluator and all projections iterate this slice, so its order is the
// canonical one.
func Catalog() []AchievementDef {
	return []AchievementDef{
		countDef("first_task", "First Steps", "Complete your first task", "🎯", 1,
			func(c Counters) int { return c.TotalCompleted }),
		streakDef("streak_3", "Building Momentum", "Maintain a 3-day streak", "🔥", 3),
		streakDef("streak_7", "Week Warrior", "Maintain a 7-day streak", "💪", 7),
		streakDef("streak_30", "Unstoppable", "Maintain a 30-day streak", "🏆", 30),
		countDef("quick_win_10", "Quick Starter", "Complete 10 quick wins", "⚡", 10,
			func(c Counters) int { return c.QuickWins }),
		countDef("deep_work_10", "Deep Diver", "Complete 10 deep work sessions", "🧠", 10,
			func(c Counters) int { return c.DeepWork }),
		levelDef("level_5", "Rising Star", "Reach level 5", "⭐", 5),
		levelDef("level_10", "Expert", "Reach level 10", "💎", 10),
		countDef("tasks_50", "Productive", "Complete 50 tasks", "🚀", 50,
			func(c Counters) int { return c.TotalCompleted }),
		countDef("tasks_100", "Centurion", "Complete 100 tasks", "💯", 100,
			func(c Counters) int { return c.TotalCompleted }),
		countDef("daily_10", "Power Day", "Complete 10 tasks in one day", "🌋", 10,
			func(c Counters) int { return c.CompletedToday }),
		{
			Key: "early_bird", Name: "Early Bird",
			Description: "Complete a task before 09:00", Icon: "🌅",
			Qualifies: func(c Counters) bool { return c.CompletedAt.Hour() < EarlyBirdHour },
			Progress:  binaryProgress(func(c Counters) bool { return c.CompletedAt.Hour() < EarlyBirdHour }),
		},
		{
			Key: "night_owl", Name: "Night Owl",
			Description: "Complete a task after 22:00", Icon: "🦉",
			Qualifies: func(c Counters) bool { return c.CompletedAt.Hour() >= NightOwlHour },
			Progress:  binaryProgress(func(c Counters) bool { return c.CompletedAt.Hour() >= NightOwlHour }),
		},
	}
}

// EvaluateAchievements returns the catalog entries that qualify under the
// counters and are not already unlocked, in catalog order. Idempotent: a key
// present in alreadyUnlocked is never returned.
func EvaluateAchievements(c Counters, alreadyUnlocked map[string]bool) []AchievementDef {
	var newly []AchievementDef
	for _, def := range Catalog() {
		if alreadyUnlocked[def.Key] {
			continue
		}
		if def.Qualifies(c) {
			newly = append(newly, def)
		}
	}
	return newly
}

// CatalogDef looks up a catalog entry by key.
func CatalogDef(key string) (AchievementDef, bool) {
	for _, def := range Catalog() {
		if def.Key == key {
			return def, true
		}
	}
	return AchievementDef{}, false
}

func countDef(key, name, desc, icon string, target int, value func(Counters) int) AchievementDef {
	return AchievementDef{
		Key: key, Name: name, Description: desc, Icon: icon,
		Qualifies: func(c Counters) bool { return value(c) >= target },
		Progress: func(c Counters) (int, int) {
			v := value(c)
			if v > target {
				v = target
			}
			return v, target
		},
	}
}

func streakDef(key, name, desc, icon string, target int) AchievementDef {
	return countDef(key, name, desc, icon, target, func(c Counters) int { return c.Streak })
}

func levelDef(key, name, desc, icon string, target int) AchievementDef {
	return countDef(key, name, desc, icon, target, func(c Counters) int { return c.Level })
}

func binaryProgress(hit func(Counters) bool) func(Counters) (int, int) {
	return func(c Counters) (int, int) {
		if hit(c) {
			return 1, 1
		}
		return 0, 1
	}
}
