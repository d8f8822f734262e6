package sheets

import (
	"fmt"
	"strings"

	"github.com/tasksheets/tasksheets/todo"
)

// header is the canonical header row, written to A1:G1. Column order is fixed:
// the store addresses cells by position (e.g. an update writes B{row}:E{row}).
var header = []string{"ID", "Title", "Content", "Due Date", "Priority", "Created At", "Status"}

const (
	colID = iota
	colTitle
	colContent
	colDueDate
	colPriority
	colCreatedAt
	colStatus
	columns
)

// rowToTodo converts a worksheet row to a Todo. rownum is the 1-based
// worksheet row number. Rows with a blank ID cell are not todos (spacers,
// notes, half-deleted rows) and are skipped.
func rowToTodo(row []interface{}, rownum int) (todo.Todo, bool) {
	record := make([]string, columns)
	for i := 0; i < columns && i < len(row); i++ {
		record[i] = cell(row[i])
	}

	if strings.TrimSpace(record[colID]) == "" {
		return todo.Todo{}, false
	}

	priority, _ := todo.ParsePriority(record[colPriority])

	return todo.Todo{
		ID:        strings.TrimSpace(record[colID]),
		Row:       rownum,
		Title:     record[colTitle],
		Content:   record[colContent],
		DueDate:   strings.TrimSpace(record[colDueDate]),
		Priority:  priority,
		CreatedAt: record[colCreatedAt],
		Status:    record[colStatus],
	}, true
}

func todoToRow(t todo.Todo) []interface{} {
	return []interface{}{
		t.ID,
		t.Title,
		t.Content,
		t.DueDate,
		string(t.Priority),
		t.CreatedAt,
		t.Status,
	}
}

// headerOK verifies the header row against the canonical column titles,
// ignoring case and spacing.
func headerOK(row []interface{}) bool {
	if len(row) < len(header) {
		return false
	}

	for i, h := range header {
		if normalise(cell(row[i])) != normalise(h) {
			return false
		}
	}

	return true
}

func cell(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}
