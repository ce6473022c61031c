package engine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"momentum/internal/storage"
)

// DefaultUserID is the profile used by the CLI when no user is specified.
const DefaultUserID = "main"

type Service struct {
	db    *sql.DB
	clock Clock
	loc   *time.Location

	profiles     *storage.ProfileRepo
	tasks        *storage.TaskRepo
	achievements *storage.AchievementRepo
	stats        *storage.StatRepo
	completions  *storage.CompletionRepo

	// Completions for the same user are serialized; different users proceed
	// in parallel.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLocation sets the location used for calendar-day and time-of-day rules.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:           db,
		clock:        SystemClock(),
		loc:          time.UTC,
		profiles:     storage.NewProfileRepo(db),
		tasks:        storage.NewTaskRepo(db),
		achievements: storage.NewAchievementRepo(db),
		stats:        storage.NewStatRepo(db),
		completions:  storage.NewCompletionRepo(db),
		userLocks:    map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) TaskRepo() *storage.TaskRepo       { return s.tasks }
func (s *Service) ProfileRepo() *storage.ProfileRepo { return s.profiles }

// now returns the current instant in the service location.
func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", errors.New("title is required")
	}
	return t, nil
}

// getProfile loads (lazily creating) the user's profile, ratcheting the cached
// level up to the curve's answer if it has fallen behind. The cached level is
// never lowered.
func (s *Service) getProfile(ctx context.Context, q storage.DBTX, userID string) (*storage.Profile, error) {
	profiles := storage.NewProfileRepo(q)
	p, err := profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if computed := LevelForXP(p.TotalXP); computed > p.CurrentLevel {
		p.CurrentLevel = computed
		if err := profiles.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// parseActivityDate converts a stored last-activity date into a time anchored
// in the service location.
func (s *Service) parseActivityDate(v *string) *time.Time {
	if v == nil {
		return nil
	}
	t, err := time.ParseInLocation(storage.DateLayout, *v, s.loc)
	if err != nil {
		return nil
	}
	return &t
}
