package todo

import (
	"sort"
	"time"
)

type StatusFilter string

const (
	StatusOpen StatusFilter = "open"
	StatusDone StatusFilter = "completed"
	StatusAll  StatusFilter = "all"
)

type DueFilter string

const (
	DueAll         DueFilter = "all"
	DueToday       DueFilter = "today"
	DueThisWeek    DueFilter = "week"
	DueThisMonth   DueFilter = "month"
	DueOverdue     DueFilter = "overdue"
	DueUnscheduled DueFilter = "unscheduled"
)

type SortOrder string

const (
	SortByPriority SortOrder = "priority"
	SortByDueDate  SortOrder = "due_date"
)

// Query is a list view over the worksheet: which todos to include and in what
// order. The zero value is not useful - use DefaultQuery for the defaults the
// UI starts with (open todos, any priority, any due date, most urgent first).
type Query struct {
	Status   StatusFilter
	Priority string // "all" or a priority token
	Due      DueFilter
	Sort     SortOrder
	Now      time.Time
}

func DefaultQuery(now time.Time) Query {
	return Query{
		Status:   StatusOpen,
		Priority: "all",
		Due:      DueAll,
		Sort:     SortByPriority,
		Now:      now,
	}
}

// Apply filters and orders the list. The input slice is not modified.
func (q Query) Apply(todos []Todo) []Todo {
	list := make([]Todo, 0, len(todos))

	for _, t := range todos {
		if q.matches(t) {
			list = append(list, t)
		}
	}

	switch q.Sort {
	case SortByDueDate:
		// earliest due date first, unscheduled last, least urgent first on a tie
		sort.SliceStable(list, func(i, j int) bool {
			p := dueKey(list[i])
			v := dueKey(list[j])
			if p != v {
				return p < v
			}

			return list[i].Priority.rank() < list[j].Priority.rank()
		})

	default:
		// most urgent first, latest due date first on a tie
		sort.SliceStable(list, func(i, j int) bool {
			p := list[i].Priority.rank()
			v := list[j].Priority.rank()
			if p != v {
				return p > v
			}

			return list[i].DueDate > list[j].DueDate
		})
	}

	return list
}

func (q Query) matches(t Todo) bool {
	switch q.Status {
	case StatusAll:
	case StatusDone:
		if !t.Completed() {
			return false
		}
	default:
		if t.Completed() {
			return false
		}
	}

	if q.Priority != "" && q.Priority != "all" {
		if p, ok := ParsePriority(q.Priority); !ok || t.Priority != p {
			return false
		}
	}

	return q.matchesDue(t)
}

func (q Query) matchesDue(t Todo) bool {
	today := q.Now.Format(DateFormat)

	switch q.Due {
	case DueToday:
		return t.DueDate == today

	case DueThisWeek:
		return t.DueDate != "" && t.DueDate >= today && t.DueDate <= q.Now.AddDate(0, 0, 7).Format(DateFormat)

	case DueThisMonth:
		return t.DueDate != "" && t.DueDate >= today && t.DueDate <= q.Now.AddDate(0, 0, 30).Format(DateFormat)

	case DueOverdue:
		return t.DueDate != "" && t.DueDate < today

	case DueUnscheduled:
		return t.DueDate == ""
	}

	return true
}

func dueKey(t Todo) string {
	if t.DueDate == "" {
		return "9999-12-31"
	}

	return t.DueDate
}
