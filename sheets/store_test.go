package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"

	"github.com/tasksheets/tasksheets/todo"
)

// fakeSheets is a minimal Sheets API endpoint: it serves the worksheet data
// and header ranges, single ID cells for the row verification reads, and
// records every request with its body.
type fakeSheets struct {
	guard    sync.Mutex
	values   [][]interface{}
	header   [][]interface{} // nil serves the canonical header, empty serves no header row
	sheets   []string        // nil serves a single 'Todos' worksheet (sheet ID 42)
	requests []string
	bodies   []string
	status   int
}

func (f *fakeSheets) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.guard.Lock()
		defer f.guard.Unlock()

		body, _ := io.ReadAll(r.Body)
		path := r.URL.Path

		f.requests = append(f.requests, fmt.Sprintf("%s %s", r.Method, path))
		f.bodies = append(f.bodies, string(body))

		if f.status != 0 {
			w.WriteHeader(f.status)
			fmt.Fprintf(w, `{"error": {"code": %v, "message": "Requested entity was not found.", "status": "NOT_FOUND"}}`, f.status)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == "GET" && strings.HasSuffix(path, "!A1:G1"):
			rows := f.header
			if rows == nil {
				row := make([]interface{}, len(header))
				for i, h := range header {
					row[i] = h
				}
				rows = [][]interface{}{row}
			}

			json.NewEncoder(w).Encode(map[string]any{"values": rows})

		case r.Method == "GET" && strings.HasSuffix(path, "!A2:G"):
			json.NewEncoder(w).Encode(map[string]any{"values": f.values})

		case r.Method == "GET" && strings.Contains(path, "/values/"):
			// ... single cell read, e.g. Todos!A5
			if ix := strings.LastIndex(path, "!A"); ix != -1 {
				if row, err := strconv.Atoi(path[ix+2:]); err == nil {
					if row >= 2 && row-2 < len(f.values) && len(f.values[row-2]) > 0 && cell(f.values[row-2][0]) != "" {
						json.NewEncoder(w).Encode(map[string]any{
							"values": [][]interface{}{{f.values[row-2][0]}},
						})
						return
					}
				}
			}

			json.NewEncoder(w).Encode(map[string]any{})

		case r.Method == "GET":
			// ... spreadsheets.get
			worksheets := f.sheets
			if worksheets == nil {
				worksheets = []string{"Todos"}
			}

			list := []map[string]any{}
			for i, title := range worksheets {
				list = append(list, map[string]any{
					"properties": map[string]any{"sheetId": 42 + i, "title": title},
				})
			}

			json.NewEncoder(w).Encode(map[string]any{"sheets": list})

		case strings.HasSuffix(path, ":batchUpdate") && strings.Contains(string(body), "addSheet"):
			json.NewEncoder(w).Encode(map[string]any{
				"replies": []map[string]any{
					{"addSheet": map[string]any{"properties": map[string]any{"sheetId": 7, "title": "Todos"}}},
				},
			})

		default:
			json.NewEncoder(w).Encode(map[string]any{})
		}
	}
}

func (f *fakeSheets) count() int {
	f.guard.Lock()
	defer f.guard.Unlock()

	return len(f.requests)
}

func (f *fakeSheets) recorded() []string {
	f.guard.Lock()
	defer f.guard.Unlock()

	list := make([]string, len(f.requests))
	copy(list, f.requests)

	return list
}

// request returns the body of the first recorded request whose method+path
// contains substr.
func (f *fakeSheets) request(substr string) (string, bool) {
	f.guard.Lock()
	defer f.guard.Unlock()

	for i, rq := range f.requests {
		if strings.Contains(rq, substr) {
			return f.bodies[i], true
		}
	}

	return "", false
}

func testStore(t *testing.T, fake *fakeSheets) (*Store, *time.Time) {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	store, err := NewStore(context.Background(),
		"1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"Todos",
		"tasksheets@example.iam.gserviceaccount.com",
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Unexpected error creating store (%v)", err)
	}

	now := time.Date(2023, time.June, 1, 9, 30, 0, 0, time.Local)
	store.now = func() time.Time { return now }

	return store, &now
}

func fixtureValues() [][]interface{} {
	return [][]interface{}{
		{"1", "water the plants", "the ferns too", "2023-06-30", "high", "2023-06-01 09:00:00", ""},
		{"2", "return library books", "", "", "low", "2023-06-01 09:05:00", "completed"},
	}
}

func TestStoreList(t *testing.T) {
	fake := fakeSheets{
		values: [][]interface{}{
			{"1", "water the plants", "the ferns too", "2023-06-30", "high", "2023-06-01 09:00:00", ""},
			{},
			{"", "not a todo"},
			{"2", "return library books", "", "", "low", "2023-06-01 09:05:00", "completed"},
		},
	}

	store, _ := testStore(t, &fake)

	todos, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error listing todos (%v)", err)
	}

	if len(todos) != 2 {
		t.Fatalf("Expected 2 todos, got %v", len(todos))
	}

	if todos[0].ID != "1" || todos[0].Row != 2 {
		t.Errorf("Incorrect first todo - expected ID:1 row:2, got ID:%v row:%v", todos[0].ID, todos[0].Row)
	}

	// rows 3 and 4 are skipped but still occupy worksheet rows
	if todos[1].ID != "2" || todos[1].Row != 5 {
		t.Errorf("Incorrect second todo - expected ID:2 row:5, got ID:%v row:%v", todos[1].ID, todos[1].Row)
	}
}

func TestStoreListUsesCache(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	if _, err := store.List(context.Background()); err != nil {
		t.Fatalf("Unexpected error listing todos (%v)", err)
	}

	if _, err := store.List(context.Background()); err != nil {
		t.Fatalf("Unexpected error listing todos (%v)", err)
	}

	if fake.count() != 1 {
		t.Errorf("Expected 1 API request, got %v (%v)", fake.count(), fake.recorded())
	}
}

func TestStoreListCacheExpires(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, now := testStore(t, &fake)

	if _, err := store.List(context.Background()); err != nil {
		t.Fatalf("Unexpected error listing todos (%v)", err)
	}

	*now = now.Add(cacheTTL + time.Second)

	if _, err := store.List(context.Background()); err != nil {
		t.Fatalf("Unexpected error listing todos (%v)", err)
	}

	if fake.count() != 2 {
		t.Errorf("Expected 2 API requests, got %v (%v)", fake.count(), fake.recorded())
	}
}

func TestStoreListWithAPIError(t *testing.T) {
	fake := fakeSheets{
		status: 404,
	}

	store, _ := testStore(t, &fake)

	_, err := store.List(context.Background())
	if err == nil {
		t.Fatalf("Expected error listing todos, got %v", err)
	}

	if !strings.Contains(err.Error(), "SPREADSHEET_ID") {
		t.Errorf("Expected operator guidance in error, got %q", err)
	}

	if !strings.Contains(err.Error(), "tasksheets@example.iam.gserviceaccount.com") {
		t.Errorf("Expected service account email in error, got %q", err)
	}
}

func TestStoreAdd(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	added, err := store.Add(context.Background(), todo.Todo{
		Title:    "book dentist",
		Priority: todo.Medium,
	})
	if err != nil {
		t.Fatalf("Unexpected error adding todo (%v)", err)
	}

	if added.ID != "3" {
		t.Errorf("Incorrect assigned ID - expected 3, got %v", added.ID)
	}

	if added.CreatedAt != "2023-06-01 09:30:00" {
		t.Errorf("Incorrect creation timestamp - expected '2023-06-01 09:30:00', got %v", added.CreatedAt)
	}

	body, ok := fake.request(":append")
	if !ok {
		t.Fatalf("Expected an append request, got %v", fake.recorded())
	}

	if !strings.Contains(body, `"3"`) || !strings.Contains(body, "book dentist") {
		t.Errorf("Incorrect append body %q", body)
	}
}

func TestStoreUpdate(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	err := store.Update(context.Background(), 2, todo.Todo{
		ID:       "1",
		Title:    "water the plants (and the cactus)",
		Priority: todo.High,
	})
	if err != nil {
		t.Fatalf("Unexpected error updating todo (%v)", err)
	}

	body, ok := fake.request("!B2:E2")
	if !ok {
		t.Fatalf("Expected an update of B2:E2, got %v", fake.recorded())
	}

	if !strings.Contains(body, "water the plants (and the cactus)") {
		t.Errorf("Incorrect update body %q", body)
	}
}

func TestStoreUpdateWithStaleRow(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	// row 2 holds ID 1, not ID 9 - the rows have shifted underneath the caller
	err := store.Update(context.Background(), 2, todo.Todo{
		ID:       "9",
		Title:    "water the plants",
		Priority: todo.High,
	})

	if !errors.Is(err, ErrStaleRow) {
		t.Fatalf("Expected ErrStaleRow, got %v", err)
	}

	if _, ok := fake.request("!B2:E2"); ok {
		t.Errorf("Stale row was written anyway (%v)", fake.recorded())
	}
}

func TestStoreUpdateWithMissingRow(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	tests := []int{1, 99}

	for _, row := range tests {
		err := store.Update(context.Background(), row, todo.Todo{
			ID:       "1",
			Title:    "water the plants",
			Priority: todo.High,
		})

		if !errors.Is(err, ErrNotFound) {
			t.Errorf("row %v: expected ErrNotFound, got %v", row, err)
		}
	}
}

func TestStoreComplete(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	if err := store.Complete(context.Background(), 2, "1"); err != nil {
		t.Fatalf("Unexpected error completing todo (%v)", err)
	}

	body, ok := fake.request("!G2")
	if !ok {
		t.Fatalf("Expected an update of G2, got %v", fake.recorded())
	}

	if !strings.Contains(body, "completed") {
		t.Errorf("Incorrect status body %q", body)
	}
}

func TestStoreDelete(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	if err := store.Delete(context.Background(), 3, "2"); err != nil {
		t.Fatalf("Unexpected error deleting todo (%v)", err)
	}

	body, ok := fake.request(":batchUpdate")
	if !ok {
		t.Fatalf("Expected a batch update request, got %v", fake.recorded())
	}

	for _, expected := range []string{"deleteDimension", `"sheetId":42`, `"startIndex":2`, `"endIndex":3`} {
		if !strings.Contains(body, expected) {
			t.Errorf("Expected %q in delete request, got %q", expected, body)
		}
	}
}

func TestStoreDeleteWithStaleRow(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	err := store.Delete(context.Background(), 3, "1")

	if !errors.Is(err, ErrStaleRow) {
		t.Fatalf("Expected ErrStaleRow, got %v", err)
	}

	if _, ok := fake.request(":batchUpdate"); ok {
		t.Errorf("Stale row was deleted anyway (%v)", fake.recorded())
	}
}

func TestStoreReplace(t *testing.T) {
	fake := fakeSheets{
		values: fixtureValues(),
	}

	store, _ := testStore(t, &fake)

	todos := []todo.Todo{
		{ID: "1", Title: "water the plants", Priority: todo.High},
		{ID: "2", Title: "return library books", Priority: todo.Low},
	}

	if err := store.Replace(context.Background(), todos); err != nil {
		t.Fatalf("Unexpected error replacing todos (%v)", err)
	}

	if _, ok := fake.request(":batchClear"); !ok {
		t.Fatalf("Expected a batch clear request, got %v", fake.recorded())
	}

	body, ok := fake.request("!A2:G3")
	if !ok {
		t.Fatalf("Expected an update of A2:G3, got %v", fake.recorded())
	}

	if !strings.Contains(body, "water the plants") || !strings.Contains(body, "return library books") {
		t.Errorf("Incorrect replace body %q", body)
	}
}

func TestStoreInitRepairsHeader(t *testing.T) {
	fake := fakeSheets{
		header: [][]interface{}{
			{"ID", "Name"},
		},
	}

	store, _ := testStore(t, &fake)

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Unexpected error initialising worksheet (%v)", err)
	}

	body, ok := fake.request("PUT")
	if !ok {
		t.Fatalf("Expected a header rewrite, got %v", fake.recorded())
	}

	for _, column := range header {
		if !strings.Contains(body, column) {
			t.Errorf("Expected column %q in header rewrite, got %q", column, body)
		}
	}

	if _, ok := fake.request(":batchUpdate"); ok {
		t.Errorf("Worksheet was recreated instead of repaired (%v)", fake.recorded())
	}
}

func TestStoreInitWithIntactHeader(t *testing.T) {
	fake := fakeSheets{}

	store, _ := testStore(t, &fake)

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Unexpected error initialising worksheet (%v)", err)
	}

	if _, ok := fake.request("PUT"); ok {
		t.Errorf("Intact header was rewritten (%v)", fake.recorded())
	}
}

func TestStoreInitCreatesWorksheet(t *testing.T) {
	fake := fakeSheets{
		sheets: []string{"Sheet1"},
		header: [][]interface{}{},
	}

	store, _ := testStore(t, &fake)

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Unexpected error initialising worksheet (%v)", err)
	}

	body, ok := fake.request(":batchUpdate")
	if !ok {
		t.Fatalf("Expected an addSheet request, got %v", fake.recorded())
	}

	if !strings.Contains(body, "addSheet") || !strings.Contains(body, "Todos") {
		t.Errorf("Incorrect addSheet body %q", body)
	}

	if _, ok := fake.request("PUT"); !ok {
		t.Errorf("Expected a header write for the new worksheet, got %v", fake.recorded())
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		todos    []todo.Todo
		expected string
	}{
		{[]todo.Todo{}, "1"},
		{[]todo.Todo{{ID: "1"}, {ID: "2"}, {ID: "3"}}, "4"},
		{[]todo.Todo{{ID: "3"}, {ID: "1"}}, "4"},
		{[]todo.Todo{{ID: "7"}, {ID: "x"}, {ID: ""}}, "8"},
		{[]todo.Todo{{ID: "x"}}, "1"},
	}

	for _, test := range tests {
		if id := nextID(test.todos); id != test.expected {
			t.Errorf("nextID(%v) - expected %v, got %v", test.todos, test.expected, id)
		}
	}
}
