package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"momentum/internal/storage"
)

// ProfileView is the read-only profile projection.
type ProfileView struct {
	UserID        string
	TotalXP       int
	CurrentLevel  int
	CurrentStreak int
	LongestStreak int
	XPInLevel     int
	XPToNextLevel int
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	p, err := s.getProfile(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		UserID:        p.UserID,
		TotalXP:       p.TotalXP,
		CurrentLevel:  p.CurrentLevel,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		XPInLevel:     XPInLevel(p.TotalXP, p.CurrentLevel),
		XPToNextLevel: XPToNextLevel(p.TotalXP, p.CurrentLevel),
	}, nil
}

// AchievementView combines a catalog entry with the user's unlock state and,
// for locked entries, progress toward the target.
type AchievementView struct {
	Key         string
	Name        string
	Description string
	Icon        string
	Unlocked    bool
	UnlockedAt  *time.Time
	Current     int
	Target      int
}

type AchievementsView struct {
	Unlocked []AchievementView
	Locked   []AchievementView
}

func (s *Service) GetAchievements(ctx context.Context, userID string) (*AchievementsView, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	p, err := s.getProfile(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	total, quickWins, deepWork, err := s.tasks.CompletedCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	todayStr := StartOfDay(now).Format(storage.DateLayout)
	completedToday := 0
	if stat, err := s.stats.Get(ctx, userID, todayStr); err != nil {
		return nil, err
	} else if stat != nil {
		completedToday = stat.TasksCompleted
	}

	counters := Counters{
		TotalCompleted: total,
		QuickWins:      quickWins,
		DeepWork:       deepWork,
		Level:          p.CurrentLevel,
		Streak:         p.CurrentStreak,
		CompletedToday: completedToday,
		CompletedAt:    now,
	}

	records, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(records))
	for _, a := range records {
		unlockedAt[a.Key] = a.UnlockedAt
	}

	view := &AchievementsView{}
	for _, def := range Catalog() {
		cur, target := def.Progress(counters)
		av := AchievementView{
			Key:         def.Key,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Current:     cur,
			Target:      target,
		}
		if t, ok := unlockedAt[def.Key]; ok {
			av.Unlocked = true
			ts := t
			av.UnlockedAt = &ts
			av.Current = target
			view.Unlocked = append(view.Unlocked, av)
		} else {
			view.Locked = append(view.Locked, av)
		}
	}
	return view, nil
}

type StatsPeriod string

const (
	PeriodWeek  StatsPeriod = "week"
	PeriodMonth StatsPeriod = "month"
	PeriodAll   StatsPeriod = "all"
)

type StatsView struct {
	Period         StatsPeriod
	TotalTasks     int
	QuickWins      int
	DeepWork       int
	XPEarned       int
	CurrentStreak  int
	LongestStreak  int
	AvgTasksPerDay float64
	// CompletionRate is completed vs created in the period, as a percentage
	// rounded to one decimal.
	CompletionRate float64
	Daily          []storage.DailyStat
}

// GetStats aggregates the daily-stat audit trail over a period.
func (s *Service) GetStats(ctx context.Context, userID string, period StatsPeriod) (*StatsView, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	today := StartOfDay(s.now())
	var since string
	days := 0
	switch period {
	case PeriodWeek:
		// The filter is inclusive, so a 7-day window starts 6 days back.
		since = today.AddDate(0, 0, -6).Format(storage.DateLayout)
		days = 7
	case PeriodMonth:
		since = today.AddDate(0, 0, -29).Format(storage.DateLayout)
		days = 30
	case PeriodAll:
		since = ""
	default:
		return nil, fmt.Errorf("invalid stats period: %q", period)
	}

	daily, err := s.stats.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	p, err := s.getProfile(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	view := &StatsView{
		Period:        period,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		Daily:         daily,
	}
	for _, d := range daily {
		view.TotalTasks += d.TasksCompleted
		view.QuickWins += d.QuickWins
		view.DeepWork += d.DeepWork
		view.XPEarned += d.XPEarned
	}
	if days == 0 {
		days = len(daily)
	}
	if days > 0 {
		view.AvgTasksPerDay = float64(view.TotalTasks) / float64(days)
	}

	created, err := s.tasks.CountCreatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	if created > 0 {
		rate := float64(view.TotalTasks) / float64(created) * 100
		view.CompletionRate = math.Round(rate*10) / 10
	}
	return view, nil
}

// ListTasks returns tasks filtered by status; an empty filter means all
// non-archived tasks.
func (s *Service) ListTasks(ctx context.Context, userID string, status Status) ([]storage.Task, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("invalid status filter: %q", status)
	}
	return s.tasks.List(ctx, userID, string(status))
}

type BacklogPage struct {
	Tasks      []storage.Task
	Page       int
	Limit      int
	TotalCount int
	TotalPages int
}

// Backlog returns a page of completed tasks, newest first, optionally
// filtered by a title/description substring.
func (s *Service) Backlog(ctx context.Context, userID string, page, limit int, search string) (*BacklogPage, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	totalCount, err := s.tasks.CountCompleted(ctx, userID, search)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListCompleted(ctx, userID, search, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &BacklogPage{
		Tasks:      tasks,
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: (totalCount + limit - 1) / limit,
	}, nil
}
