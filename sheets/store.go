// Package sheets implements the todo store over a Google Sheets worksheet.
// The worksheet is the system of record - there is no local database, only a
// short-lived read cache to keep page loads from hammering the Sheets API.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/tasksheets/tasksheets/todo"
)

// cacheTTL is the lifetime of the cached todo list. Reads within the TTL are
// served from memory; every mutation invalidates the cache.
const cacheTTL = 10 * time.Second

var (
	ErrNotFound = errors.New("todo not found")

	// ErrStaleRow is returned when the ID stored in a row no longer matches
	// the ID the caller expects, i.e. rows have shifted underneath the caller
	// (typically a concurrent delete).
	ErrStaleRow = errors.New("row has changed since it was read")
)

type Store struct {
	service       *gsheets.Service
	spreadsheetID string
	worksheet     string
	account       string

	guard   sync.RWMutex
	cached  []todo.Todo
	fetched time.Time

	sheetGuard sync.Mutex
	sheetID    int64
	sheetKnown bool

	now func() time.Time
}

// NewStore creates a store for a single worksheet in a single spreadsheet.
// account is the service account email, used only for operator-facing error
// messages, and may be blank.
func NewStore(ctx context.Context, spreadsheetID, worksheet, account string, opts ...option.ClientOption) (*Store, error) {
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client (%v)", err)
	}

	return &Store{
		service:       service,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		account:       account,
		now:           time.Now,
	}, nil
}

// Init ensures the worksheet exists and carries the canonical header row.
// A missing worksheet is created; a malformed header (wrong titles, legacy
// column layout, empty sheet) is rewritten in place.
func (s *Store) Init(ctx context.Context) error {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return s.wrap(err)
	}

	sheet := findSheet(spreadsheet, s.worksheet)
	if sheet == nil {
		rq := gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{
				{
					AddSheet: &gsheets.AddSheetRequest{
						Properties: &gsheets.SheetProperties{
							Title: s.worksheet,
							GridProperties: &gsheets.GridProperties{
								RowCount:    1000,
								ColumnCount: 10,
							},
						},
					},
				},
			},
		}

		response, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &rq).Context(ctx).Do()
		if err != nil {
			return s.wrap(err)
		}

		s.rememberSheetID(response.Replies[0].AddSheet.Properties.SheetId)
	} else {
		s.rememberSheetID(sheet.Properties.SheetId)
	}

	response, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.area("A1:G1")).Context(ctx).Do()
	if err != nil {
		return s.wrap(err)
	}

	if len(response.Values) == 1 && headerOK(response.Values[0]) {
		return nil
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}

	values := gsheets.ValueRange{
		Values: [][]interface{}{row},
	}

	if _, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.area("A1:G1"), &values).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return s.wrap(err)
	}

	s.invalidate()

	return nil
}

// List returns every todo in the worksheet, open and completed, in worksheet
// order. The result is a copy - callers may filter and sort it freely.
func (s *Store) List(ctx context.Context) ([]todo.Todo, error) {
	s.guard.RLock()
	if s.cached != nil && s.now().Sub(s.fetched) < cacheTTL {
		list := make([]todo.Todo, len(s.cached))
		copy(list, s.cached)
		s.guard.RUnlock()

		return list, nil
	}
	s.guard.RUnlock()

	response, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.area("A2:G")).Context(ctx).Do()
	if err != nil {
		return nil, s.wrap(err)
	}

	todos := []todo.Todo{}
	for i, row := range response.Values {
		if t, ok := rowToTodo(row, i+2); ok {
			todos = append(todos, t)
		}
	}

	s.guard.Lock()
	s.cached = todos
	s.fetched = s.now()
	s.guard.Unlock()

	list := make([]todo.Todo, len(todos))
	copy(list, todos)

	return list, nil
}

// Get returns the todo at the given 1-based worksheet row.
func (s *Store) Get(ctx context.Context, row int) (todo.Todo, error) {
	todos, err := s.List(ctx)
	if err != nil {
		return todo.Todo{}, err
	}

	for _, t := range todos {
		if t.Row == row {
			return t, nil
		}
	}

	return todo.Todo{}, ErrNotFound
}

// Add appends a todo to the worksheet. The ID (highest existing numeric ID
// plus one) and creation timestamp are assigned here; the status starts blank
// (open).
func (s *Store) Add(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	todos, err := s.List(ctx)
	if err != nil {
		return todo.Todo{}, err
	}

	t.ID = nextID(todos)
	t.CreatedAt = s.now().Format(todo.TimestampFormat)
	t.Status = ""

	values := gsheets.ValueRange{
		Values: [][]interface{}{todoToRow(t)},
	}

	if _, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.area("A1:G"), &values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return todo.Todo{}, s.wrap(err)
	}

	s.invalidate()

	return t, nil
}

// Update rewrites the editable columns (title, content, due date, priority)
// of the given row. The row's stored ID must match t.ID - the ID and creation
// timestamp are never modified.
func (s *Store) Update(ctx context.Context, row int, t todo.Todo) error {
	if err := s.verify(ctx, row, t.ID); err != nil {
		return err
	}

	values := gsheets.ValueRange{
		Values: [][]interface{}{
			{t.Title, t.Content, t.DueDate, string(t.Priority)},
		},
	}

	if _, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.area(fmt.Sprintf("B%v:E%v", row, row)), &values).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return s.wrap(err)
	}

	s.invalidate()

	return nil
}

// Complete marks the row's todo as completed.
func (s *Store) Complete(ctx context.Context, row int, id string) error {
	if err := s.verify(ctx, row, id); err != nil {
		return err
	}

	values := gsheets.ValueRange{
		Values: [][]interface{}{
			{todo.StatusCompleted},
		},
	}

	if _, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.area(fmt.Sprintf("G%v", row)), &values).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return s.wrap(err)
	}

	s.invalidate()

	return nil
}

// Delete removes the row from the worksheet. Rows below it shift up, which is
// why every destructive operation re-verifies the row ID first.
func (s *Store) Delete(ctx context.Context, row int, id string) error {
	if err := s.verify(ctx, row, id); err != nil {
		return err
	}

	sheetID, err := s.getSheetID(ctx)
	if err != nil {
		return err
	}

	rq := gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{
			{
				DeleteDimension: &gsheets.DeleteDimensionRequest{
					Range: &gsheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(row - 1),
						EndIndex:   int64(row),
					},
				},
			},
		},
	}

	if _, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return s.wrap(err)
	}

	s.invalidate()

	return nil
}

// Replace overwrites the data rows with the given list, reassigning row
// numbers in list order. Used by the TSV import.
func (s *Store) Replace(ctx context.Context, todos []todo.Todo) error {
	rq := gsheets.BatchClearValuesRequest{
		Ranges: []string{s.area("A2:G")},
	}

	if _, err := s.service.Spreadsheets.Values.BatchClear(s.spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return s.wrap(err)
	}

	if len(todos) > 0 {
		rows := make([][]interface{}, len(todos))
		for i, t := range todos {
			rows[i] = todoToRow(t)
		}

		values := gsheets.ValueRange{
			Values: rows,
		}

		if _, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.area(fmt.Sprintf("A2:G%v", len(todos)+1)), &values).
			ValueInputOption("RAW").
			Context(ctx).
			Do(); err != nil {
			return s.wrap(err)
		}
	}

	s.invalidate()

	return nil
}

// verify checks that the ID cell of the row still holds the expected ID.
func (s *Store) verify(ctx context.Context, row int, id string) error {
	if row < 2 {
		return ErrNotFound
	}

	response, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.area(fmt.Sprintf("A%v", row))).Context(ctx).Do()
	if err != nil {
		return s.wrap(err)
	}

	current := ""
	if len(response.Values) > 0 && len(response.Values[0]) > 0 {
		current = strings.TrimSpace(cell(response.Values[0][0]))
	}

	if current == "" {
		return ErrNotFound
	}

	if current != strings.TrimSpace(id) {
		return ErrStaleRow
	}

	return nil
}

func (s *Store) invalidate() {
	s.guard.Lock()
	defer s.guard.Unlock()

	s.cached = nil
	s.fetched = time.Time{}
}

func (s *Store) area(ref string) string {
	return fmt.Sprintf("%s!%s", s.worksheet, ref)
}

func (s *Store) rememberSheetID(id int64) {
	s.sheetGuard.Lock()
	defer s.sheetGuard.Unlock()

	s.sheetID = id
	s.sheetKnown = true
}

func (s *Store) getSheetID(ctx context.Context) (int64, error) {
	s.sheetGuard.Lock()
	if s.sheetKnown {
		id := s.sheetID
		s.sheetGuard.Unlock()

		return id, nil
	}
	s.sheetGuard.Unlock()

	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, s.wrap(err)
	}

	sheet := findSheet(spreadsheet, s.worksheet)
	if sheet == nil {
		return 0, fmt.Errorf("worksheet %q not found in spreadsheet %s - run 'init' to create it", s.worksheet, s.spreadsheetID)
	}

	s.rememberSheetID(sheet.Properties.SheetId)

	return sheet.Properties.SheetId, nil
}

func findSheet(spreadsheet *gsheets.Spreadsheet, name string) *gsheets.Sheet {
	for _, sheet := range spreadsheet.Sheets {
		if normalise(sheet.Properties.Title) == normalise(name) {
			return sheet
		}
	}

	return nil
}

func nextID(todos []todo.Todo) string {
	max := 0
	for _, t := range todos {
		if id, err := strconv.Atoi(t.ID); err == nil && id > max {
			max = id
		}
	}

	return strconv.Itoa(max + 1)
}

// wrap maps Sheets API errors to operator-facing messages with the
// remediation the deployment docs describe.
func (s *Store) wrap(err error) error {
	var apierr *googleapi.Error

	if !errors.As(err, &apierr) {
		return err
	}

	share := "the service account"
	if s.account != "" {
		share = fmt.Sprintf("the service account (%s)", s.account)
	}

	switch {
	case apierr.Code == 404:
		return fmt.Errorf("spreadsheet %s not found - check SPREADSHEET_ID and share the spreadsheet with %s (%v)", s.spreadsheetID, share, err)

	case apierr.Code == 403 && strings.Contains(strings.ToLower(apierr.Error()), "storage quota"):
		return fmt.Errorf("Google Drive storage quota exceeded - free up Drive storage or point SPREADSHEET_ID at an existing spreadsheet (%v)", err)

	case apierr.Code == 403:
		return fmt.Errorf("access to spreadsheet %s denied - share the spreadsheet with %s (%v)", s.spreadsheetID, share, err)
	}

	return err
}
