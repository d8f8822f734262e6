package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tasksheets/tasksheets/todo"
)

// WriteTSV writes a todo list as a TSV file with the canonical header row.
func WriteTSV(f io.Writer, todos []todo.Todo) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	w.Write(header)
	for _, t := range todos {
		w.Write([]string{
			t.ID,
			t.Title,
			t.Content,
			t.DueDate,
			string(t.Priority),
			t.CreatedAt,
			t.Status,
		})
	}

	w.Flush()

	return w.Error()
}

// ReadTSV reads a todo list from a TSV file. Columns are matched by header
// title, not position, so reordered or extra columns are tolerated. Rows with
// a blank ID or an unparseable due date are skipped, matching the worksheet
// codec's tolerance for hand-edited data.
func ReadTSV(f io.Reader) ([]todo.Todo, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("TSV file is empty")
	}

	// ... build index
	index := map[string]int{}
	for i, v := range records[0] {
		k := normalise(v)
		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("duplicate column name '%s'", v)
		}

		index[k] = i
	}

	for _, k := range []string{"id", "title"} {
		if _, ok := index[k]; !ok {
			return nil, fmt.Errorf("missing '%s' column", k)
		}
	}

	// ... records
	todos := []todo.Todo{}

	for _, record := range records[1:] {
		get := func(column string) string {
			if ix, ok := index[column]; ok && ix < len(record) {
				return strings.TrimSpace(record[ix])
			}

			return ""
		}

		id := get("id")
		if id == "" {
			continue
		}

		if due := get("duedate"); due != "" {
			if _, err := time.ParseInLocation(todo.DateFormat, due, time.Local); err != nil {
				continue
			}
		}

		priority, _ := todo.ParsePriority(get("priority"))

		todos = append(todos, todo.Todo{
			ID:        id,
			Title:     get("title"),
			Content:   get("content"),
			DueDate:   get("duedate"),
			Priority:  priority,
			CreatedAt: get("createdat"),
			Status:    get("status"),
		})
	}

	return todos, nil
}
