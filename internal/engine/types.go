package engine

import "strings"

type Category string

const (
	CategoryQuickWin Category = "quick_win"
	CategoryDeepWork Category = "deep_work"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryQuickWin, CategoryDeepWork:
		return true
	default:
		return false
	}
}

// ParseCategory parses user input to a Category. Unknown values are an error,
// never a silent default: a wrong guess here would corrupt the XP ledger.
func ParseCategory(input string) (Category, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	c := Category(strings.ReplaceAll(s, "-", "_"))
	if !c.IsValid() {
		return "", InvalidCategoryError{Category: input}
	}
	return c, nil
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	default:
		return false
	}
}

const (
	MinPriority = 1
	MaxPriority = 5
)

func validPriority(p *int) bool {
	return p == nil || (*p >= MinPriority && *p <= MaxPriority)
}
