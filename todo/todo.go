package todo

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the worksheet date format for due dates.
const DateFormat = "2006-01-02"

// TimestampFormat is the worksheet timestamp format for the 'Created At' column.
const TimestampFormat = "2006-01-02 15:04:05"

type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

// StatusCompleted is the 'Status' column value for a completed todo. An open
// todo has an empty status cell.
const StatusCompleted = "completed"

// Todo is a single row in the 'Todos' worksheet. Row is the 1-based worksheet
// row number and is the handle used for edit/complete/delete operations - it is
// not stored in the sheet itself.
type Todo struct {
	ID        string   `json:"id"`
	Row       int      `json:"row"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	DueDate   string   `json:"due-date"`
	Priority  Priority `json:"priority"`
	CreatedAt string   `json:"created-at"`
	Status    string   `json:"status"`
}

func (t Todo) Completed() bool {
	return normaliseStatus(t.Status) == StatusCompleted
}

// Validate checks the fields that are accepted from user input. ID, Row,
// CreatedAt and Status are managed by the store and are not validated here.
func (t Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}

	if _, ok := ParsePriority(string(t.Priority)); !ok {
		return fmt.Errorf("invalid priority '%v' - expected one of 'high', 'medium' or 'low'", t.Priority)
	}

	if v := strings.TrimSpace(t.DueDate); v != "" {
		if _, err := time.ParseInLocation(DateFormat, v, time.Local); err != nil {
			return fmt.Errorf("invalid due date '%v' - expected a date like '2023-06-30'", t.DueDate)
		}
	}

	return nil
}

// ParsePriority maps a priority cell to a Priority, accepting the legacy
// Japanese literals (高/中/低) used by earlier versions of the worksheet.
// An empty cell defaults to Medium.
func ParsePriority(v string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "high", "高":
		return High, true
	case "medium", "中", "":
		return Medium, true
	case "low", "低":
		return Low, true
	}

	return Medium, false
}

// rank orders priorities for sorting - higher is more urgent.
func (p Priority) rank() int {
	switch p {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	}

	return 2
}

func normaliseStatus(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case StatusCompleted, "完了":
		return StatusCompleted
	}

	return ""
}
