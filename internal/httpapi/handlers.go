package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"momentum/internal/engine"
	"momentum/internal/storage"
)

type taskJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Category    string     `json:"category"`
	Priority    *int       `json:"priority,omitempty"`
	Status      string     `json:"status"`
	XPValue     int        `json:"xp_value"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toTaskJSON(t storage.Task) taskJSON {
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status,
		XPValue:     t.XPValue,
		CreatedAt:   t.CreatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}

func toTaskListJSON(tasks []storage.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskJSON(t))
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    *int   `json:"priority"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}

	category, err := engine.ParseCategory(req.Category)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	task, err := s.svc.CreateTask(r.Context(), engine.CreateTaskInput{
		UserID:      userID(r),
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Priority:    req.Priority,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskJSON(*task))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := engine.Status(r.URL.Query().Get("status"))
	tasks, err := s.svc.ListTasks(r.Context(), userID(r), status)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": toTaskListJSON(tasks),
		"count": len(tasks),
	})
}

type achievementJSON struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	Current     int        `json:"current"`
	Target      int        `json:"target"`
}

func toAchievementJSON(a engine.AchievementView) achievementJSON {
	return achievementJSON{
		Key:         a.Key,
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		UnlockedAt:  a.UnlockedAt,
		Current:     a.Current,
		Target:      a.Target,
	}
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.CompleteTask(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	newAchievements := make([]achievementJSON, 0, len(res.NewAchievements))
	for _, def := range res.NewAchievements {
		newAchievements = append(newAchievements, achievementJSON{
			Key:         def.Key,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task":             toTaskJSON(res.Task),
		"xp_awarded":       res.XPAwarded,
		"level_up":         res.LevelUp,
		"new_level":        res.NewLevel,
		"new_achievements": newAchievements,
		"current_streak":   res.CurrentStreak,
	})
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.StartTask(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(*task))
}

func (s *Server) handleArchiveTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ArchiveTask(r.Context(), userID(r), r.PathValue("id")); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (s *Server) handleRestoreTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.RestoreTask(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(*task))
}

func (s *Server) handleBacklog(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Backlog(r.Context(), userID(r),
		queryInt(r, "page", 1), queryInt(r, "limit", 20), r.URL.Query().Get("search"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":       toTaskListJSON(page.Tasks),
		"count":       len(page.Tasks),
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": page.TotalPages,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProfile(r.Context(), userID(r))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_xp":         p.TotalXP,
		"current_level":    p.CurrentLevel,
		"current_streak":   p.CurrentStreak,
		"longest_streak":   p.LongestStreak,
		"xp_in_level":      p.XPInLevel,
		"xp_to_next_level": p.XPToNextLevel,
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.GetAchievements(r.Context(), userID(r))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	unlocked := make([]achievementJSON, 0, len(view.Unlocked))
	for _, a := range view.Unlocked {
		unlocked = append(unlocked, toAchievementJSON(a))
	}
	locked := make([]achievementJSON, 0, len(view.Locked))
	for _, a := range view.Locked {
		locked = append(locked, toAchievementJSON(a))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"unlocked":             unlocked,
		"locked_with_progress": locked,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	period := engine.StatsPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = engine.PeriodWeek
	}
	stats, err := s.svc.GetStats(r.Context(), userID(r), period)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	daily := make([]map[string]any, 0, len(stats.Daily))
	for _, d := range stats.Daily {
		daily = append(daily, map[string]any{
			"date":       d.Date,
			"tasks":      d.TasksCompleted,
			"quick_wins": d.QuickWins,
			"deep_work":  d.DeepWork,
			"xp":         d.XPEarned,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period":            string(stats.Period),
		"total_tasks":       stats.TotalTasks,
		"quick_wins":        stats.QuickWins,
		"deep_work":         stats.DeepWork,
		"total_xp":          stats.XPEarned,
		"current_streak":    stats.CurrentStreak,
		"longest_streak":    stats.LongestStreak,
		"avg_tasks_per_day": stats.AvgTasksPerDay,
		"completion_rate":   stats.CompletionRate,
		"daily_breakdown":   daily,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	var n int
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
