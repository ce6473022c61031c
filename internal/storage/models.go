package storage

import "time"

// DateLayout is the storage format for calendar dates (last activity, daily stats).
const DateLayout = "2006-01-02"

type Profile struct {
	UserID           string
	TotalXP          int
	CurrentLevel     int
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate *string // DateLayout, nil before first completion
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Category    string
	Priority    *int
	Status      string
	XPValue     int
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	ArchivedAt  *time.Time
}

type Achievement struct {
	ID         int64
	UserID     string
	Key        string
	UnlockedAt time.Time
}

type DailyStat struct {
	ID             int64
	UserID         string
	Date           string // DateLayout
	TasksCompleted int
	QuickWins      int
	DeepWork       int
	XPEarned       int
	StreakCount    int
}

// Completion is the persisted outcome of a task completion, kept so retries
// can replay the original result.
type Completion struct {
	TaskID          string
	UserID          string
	XPAwarded       int
	LevelUp         bool
	NewLevel        int
	Streak          int
	AchievementKeys []string
	CompletedAt     time.Time
}
