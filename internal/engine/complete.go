package engine

import (
	"context"
	"database/sql"

	"momentum/internal/storage"
)

type CompleteResult struct {
	Task            storage.Task
	XPAwarded       int
	LevelUp         bool
	NewLevel        int
	NewAchievements []AchievementDef
	CurrentStreak   int
	// Replayed reports that the task was already done and the stored result
	// was returned without mutating anything.
	Replayed bool
}

// CompleteTask marks a task done and applies the whole progression step:
// XP award, level, streak, daily stats and achievements, committed atomically.
// Completing an already-done task replays the original result, so client
// retries are safe.
func (s *Service) CompleteTask(ctx context.Context, userID, taskID string) (*CompleteResult, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	// Reads-then-writes the profile row; two interleaved completions for one
	// user could otherwise both read total_xp = N and lose an award.
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	task, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundError{TaskID: taskID}
	}
	switch Status(task.Status) {
	case StatusArchived:
		return nil, AlreadyArchivedError{TaskID: taskID}
	case StatusDone:
		return s.replayCompletion(ctx, task)
	}

	// xp_value was frozen by the award policy at creation; only the category
	// is re-validated so corrupt rows surface instead of mis-crediting.
	if !Category(task.Category).IsValid() {
		return nil, InvalidCategoryError{Category: task.Category}
	}
	xp := task.XPValue

	now := s.now()
	today := StartOfDay(now)
	todayStr := today.Format(storage.DateLayout)

	var result *CompleteResult
	txErr := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := storage.NewTaskRepo(tx)
		stats := storage.NewStatRepo(tx)
		achievements := storage.NewAchievementRepo(tx)
		profiles := storage.NewProfileRepo(tx)
		completions := storage.NewCompletionRepo(tx)

		profile, err := s.getProfile(ctx, tx, userID)
		if err != nil {
			return err
		}

		// The streak advances at most once per calendar day: only the first
		// completion of the day (no daily stat row yet) consults the tracker.
		todayStat, err := stats.Get(ctx, userID, todayStr)
		if err != nil {
			return err
		}
		streak := StreakResult{Current: profile.CurrentStreak, Longest: profile.LongestStreak}
		if todayStat == nil {
			streak = NextStreak(s.parseActivityDate(profile.LastActivityDate), today,
				profile.CurrentStreak, profile.LongestStreak)
		}

		newTotal := profile.TotalXP + xp
		newLevel := LevelForXP(newTotal)
		if newLevel < profile.CurrentLevel {
			newLevel = profile.CurrentLevel
		}
		levelUp := newLevel > profile.CurrentLevel

		if err := tasks.MarkDone(ctx, taskID, now); err != nil {
			return err
		}
		quickWin := Category(task.Category) == CategoryQuickWin
		if err := stats.Increment(ctx, userID, todayStr, quickWin, xp, streak.Current); err != nil {
			return err
		}

		total, quickWins, deepWork, err := tasks.CompletedCounts(ctx, userID)
		if err != nil {
			return err
		}
		updatedStat, err := stats.Get(ctx, userID, todayStr)
		if err != nil {
			return err
		}

		counters := Counters{
			TotalCompleted: total,
			QuickWins:      quickWins,
			DeepWork:       deepWork,
			Level:          newLevel,
			Streak:         streak.Current,
			CompletedToday: updatedStat.TasksCompleted,
			CompletedAt:    now,
		}
		unlocked, err := achievements.Keys(ctx, userID)
		if err != nil {
			return err
		}
		newly := EvaluateAchievements(counters, unlocked)
		for _, def := range newly {
			if err := achievements.Insert(ctx, userID, def.Key, now); err != nil {
				return err
			}
		}

		profile.TotalXP = newTotal
		profile.CurrentLevel = newLevel
		profile.CurrentStreak = streak.Current
		profile.LongestStreak = streak.Longest
		profile.LastActivityDate = &todayStr
		if err := profiles.Update(ctx, profile); err != nil {
			return err
		}

		keys := make([]string, 0, len(newly))
		for _, def := range newly {
			keys = append(keys, def.Key)
		}
		if err := completions.Insert(ctx, storage.Completion{
			TaskID:          taskID,
			UserID:          userID,
			XPAwarded:       xp,
			LevelUp:         levelUp,
			NewLevel:        newLevel,
			Streak:          streak.Current,
			AchievementKeys: keys,
			CompletedAt:     now,
		}); err != nil {
			return err
		}

		result = &CompleteResult{
			XPAwarded:       xp,
			LevelUp:         levelUp,
			NewLevel:        newLevel,
			NewAchievements: newly,
			CurrentStreak:   streak.Current,
		}
		return nil
	})
	if txErr != nil {
		return nil, PersistenceError{Err: txErr}
	}

	done, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if done != nil {
		result.Task = *done
	}
	return result, nil
}

func (s *Service) replayCompletion(ctx context.Context, task *storage.Task) (*CompleteResult, error) {
	res := &CompleteResult{Task: *task, Replayed: true}

	c, err := s.completions.Get(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		res.XPAwarded = c.XPAwarded
		res.LevelUp = c.LevelUp
		res.NewLevel = c.NewLevel
		res.CurrentStreak = c.Streak
		for _, key := range c.AchievementKeys {
			if def, ok := CatalogDef(key); ok {
				res.NewAchievements = append(res.NewAchievements, def)
			}
		}
		return res, nil
	}

	// Done task without a replay record (imported data); answer from the
	// current aggregates without mutating anything.
	profile, err := s.getProfile(ctx, s.db, task.UserID)
	if err != nil {
		return nil, err
	}
	res.XPAwarded = task.XPValue
	res.NewLevel = profile.CurrentLevel
	res.CurrentStreak = profile.CurrentStreak
	return res, nil
}
