package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum/internal/storage"
)

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, clock Clock) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	db, err := storage.Open(ctx, filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	svc := NewService(db, WithClock(clock))
	cleanup := func() {
		_ = db.Close()
	}
	return svc, cleanup
}

func mustCreate(t *testing.T, svc *Service, category Category, priority *int) *storage.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "test task",
		Category: category,
		Priority: priority,
	})
	require.NoError(t, err)
	return task
}

func TestCompleteFirstTask(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	task := mustCreate(t, svc, CategoryQuickWin, nil)
	assert.Equal(t, 10, task.XPValue)
	assert.Equal(t, "todo", task.Status)

	res, err := svc.CompleteTask(ctx, "", task.ID)
	require.NoError(t, err)

	assert.Equal(t, 10, res.XPAwarded)
	assert.False(t, res.LevelUp)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.False(t, res.Replayed)
	assert.Equal(t, "done", res.Task.Status)
	require.NotNil(t, res.Task.CompletedAt)

	// 08:00 lands both the first-completion and the before-09:00 unlocks.
	assert.Equal(t, []string{"first_task", "early_bird"}, defKeys(res.NewAchievements))

	p, err := svc.GetProfile(ctx, DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.TotalXP)
	assert.Equal(t, 1, p.CurrentLevel)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
}

func TestCompleteReplayIsIdempotent(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	task := mustCreate(t, svc, CategoryQuickWin, nil)
	first, err := svc.CompleteTask(ctx, "", task.ID)
	require.NoError(t, err)

	// A retried completion replays the stored result without re-awarding.
	second, err := svc.CompleteTask(ctx, "", task.ID)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.XPAwarded, second.XPAwarded)
	assert.Equal(t, first.NewLevel, second.NewLevel)
	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Equal(t, defKeys(first.NewAchievements), defKeys(second.NewAchievements))

	p, err := svc.GetProfile(ctx, DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.TotalXP)
}

func TestCompleteLevelUp(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	p, err := svc.ProfileRepo().GetOrCreate(ctx, DefaultUserID)
	require.NoError(t, err)
	p.TotalXP = 95
	require.NoError(t, svc.ProfileRepo().Update(ctx, p))

	pri := 3
	task := mustCreate(t, svc, CategoryDeepWork, &pri)
	require.Equal(t, 25, task.XPValue)

	res, err := svc.CompleteTask(ctx, "", task.ID)
	require.NoError(t, err)
	assert.True(t, res.LevelUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 25, res.XPAwarded)

	got, err := svc.GetProfile(ctx, DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 120, got.TotalXP)
	assert.Equal(t, 2, got.CurrentLevel)
}

func TestStreakAdvancesOncePerDay(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	t1 := mustCreate(t, svc, CategoryQuickWin, nil)
	res1, err := svc.CompleteTask(ctx, "", t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res1.CurrentStreak)

	// Second completion the same day leaves the streak alone.
	t2 := mustCreate(t, svc, CategoryQuickWin, nil)
	res2, err := svc.CompleteTask(ctx, "", t2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res2.CurrentStreak)

	// Next calendar day increments.
	clock.advance(24 * time.Hour)
	t3 := mustCreate(t, svc, CategoryQuickWin, nil)
	res3, err := svc.CompleteTask(ctx, "", t3.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res3.CurrentStreak)

	// A missed day resets to 1; the longest streak survives.
	clock.advance(48 * time.Hour)
	t4 := mustCreate(t, svc, CategoryQuickWin, nil)
	res4, err := svc.CompleteTask(ctx, "", t4.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res4.CurrentStreak)

	p, err := svc.GetProfile(ctx, DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 2, p.LongestStreak)
}

func TestCompleteErrors(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.CompleteTask(ctx, "", "no-such-id")
	assert.True(t, IsNotFound(err))

	task := mustCreate(t, svc, CategoryQuickWin, nil)
	require.NoError(t, svc.ArchiveTask(ctx, "", task.ID))

	_, err = svc.CompleteTask(ctx, "", task.ID)
	assert.True(t, IsAlreadyArchived(err))
}

func TestStartArchiveRestoreTransitions(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	task := mustCreate(t, svc, CategoryDeepWork, nil)

	started, err := svc.StartTask(ctx, "", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", started.Status)
	require.NotNil(t, started.StartedAt)

	// Starting again is a no-op.
	again, err := svc.StartTask(ctx, "", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", again.Status)

	require.NoError(t, svc.ArchiveTask(ctx, "", task.ID))
	// Archiving twice is also a no-op.
	require.NoError(t, svc.ArchiveTask(ctx, "", task.ID))

	_, err = svc.StartTask(ctx, "", task.ID)
	assert.True(t, IsAlreadyArchived(err))

	restored, err := svc.RestoreTask(ctx, "", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "todo", restored.Status)
	assert.Nil(t, restored.ArchivedAt)

	// Restoring a non-archived task is an error.
	_, err = svc.RestoreTask(ctx, "", task.ID)
	assert.Error(t, err)
}

func TestRestoreKeepsCompletedTaskDone(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	task := mustCreate(t, svc, CategoryQuickWin, nil)
	first, err := svc.CompleteTask(ctx, "", task.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveTask(ctx, "", task.ID))
	restored, err := svc.RestoreTask(ctx, "", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", restored.Status)
	require.NotNil(t, restored.CompletedAt)

	// Completing it again replays the stored result; the XP ledger does not
	// move and retries keep succeeding.
	again, err := svc.CompleteTask(ctx, "", task.ID)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.XPAwarded, again.XPAwarded)

	p, err := svc.GetProfile(ctx, DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.TotalXP)
}

func TestUsersProgressIndependently(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	alice, err := svc.CreateTask(ctx, CreateTaskInput{UserID: "alice", Title: "a", Category: CategoryQuickWin})
	require.NoError(t, err)
	_, err = svc.CompleteTask(ctx, "alice", alice.ID)
	require.NoError(t, err)

	// Another user cannot see or complete alice's task.
	_, err = svc.CompleteTask(ctx, "bob", alice.ID)
	assert.True(t, IsNotFound(err))

	pa, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, pa.TotalXP)

	pb, err := svc.GetProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, pb.TotalXP)
}

func TestBacklogPagination(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		task := mustCreate(t, svc, CategoryQuickWin, nil)
		_, err := svc.CompleteTask(ctx, "", task.ID)
		require.NoError(t, err)
		clock.advance(time.Minute)
	}

	page1, err := svc.Backlog(ctx, "", 1, 2, "")
	require.NoError(t, err)
	assert.Len(t, page1.Tasks, 2)
	assert.Equal(t, 5, page1.TotalCount)
	assert.Equal(t, 3, page1.TotalPages)

	page3, err := svc.Backlog(ctx, "", 3, 2, "")
	require.NoError(t, err)
	assert.Len(t, page3.Tasks, 1)

	// Search misses return an empty page, not an error.
	none, err := svc.Backlog(ctx, "", 1, 2, "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, none.Tasks)
	assert.Equal(t, 0, none.TotalCount)
}

func TestDailyStatsAggregation(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	quick := mustCreate(t, svc, CategoryQuickWin, nil)
	_, err := svc.CompleteTask(ctx, "", quick.ID)
	require.NoError(t, err)

	deep := mustCreate(t, svc, CategoryDeepWork, nil)
	_, err = svc.CompleteTask(ctx, "", deep.ID)
	require.NoError(t, err)

	// A third task created but not completed drags the completion rate down.
	mustCreate(t, svc, CategoryQuickWin, nil)

	stats, err := svc.GetStats(ctx, "", PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.QuickWins)
	assert.Equal(t, 1, stats.DeepWork)
	assert.Equal(t, 35, stats.XPEarned)
	assert.Equal(t, 66.7, stats.CompletionRate)
	require.Len(t, stats.Daily, 1)
	assert.Equal(t, "2026-03-10", stats.Daily[0].Date)
	assert.Equal(t, 2, stats.Daily[0].TasksCompleted)
}

func TestStatsWeekWindowIsSevenDays(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	// 2026-03-04 is the oldest day inside a 7-day window ending 2026-03-10;
	// 2026-03-03 falls outside it.
	for _, date := range []string{"2026-03-03", "2026-03-04", "2026-03-10"} {
		require.NoError(t, svc.stats.Increment(ctx, DefaultUserID, date, true, 10, 1))
	}

	week, err := svc.GetStats(ctx, "", PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, week.TotalTasks)
	require.Len(t, week.Daily, 2)
	assert.Equal(t, "2026-03-04", week.Daily[0].Date)

	all, err := svc.GetStats(ctx, "", PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalTasks)
}

func TestAchievementViewProgress(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task := mustCreate(t, svc, CategoryQuickWin, nil)
		_, err := svc.CompleteTask(ctx, "", task.ID)
		require.NoError(t, err)
	}

	view, err := svc.GetAchievements(ctx, "")
	require.NoError(t, err)

	unlocked := map[string]bool{}
	for _, a := range view.Unlocked {
		unlocked[a.Key] = true
		require.NotNil(t, a.UnlockedAt, "%s missing unlock time", a.Key)
	}
	assert.True(t, unlocked["first_task"])

	var quickWin *AchievementView
	for i := range view.Locked {
		if view.Locked[i].Key == "quick_win_10" {
			quickWin = &view.Locked[i]
		}
	}
	require.NotNil(t, quickWin)
	assert.Equal(t, 3, quickWin.Current)
	assert.Equal(t, 10, quickWin.Target)
}
