package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tasksheets/tasksheets/sheets"
	"github.com/tasksheets/tasksheets/todo"
)

// index lists todos, filtered and ordered by the query string. A store error
// is shown as a flash message over an empty list so the page stays usable
// while the operator fixes the deployment.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	query := s.query(r)

	todos, err := s.store.List(r.Context())
	if err != nil {
		s.flash(w, r, "error", err.Error())
		todos = nil
	}

	s.render(w, "index.html", map[string]any{
		"Todos":    query.Apply(todos),
		"Query":    query,
		"Flashes":  s.flashes(w, r),
		"Archived": false,
	})
}

func (s *Server) archive(w http.ResponseWriter, r *http.Request) {
	query := todo.DefaultQuery(s.now())
	query.Status = todo.StatusDone

	todos, err := s.store.List(r.Context())
	if err != nil {
		s.flash(w, r, "error", err.Error())
		todos = nil
	}

	s.render(w, "archive.html", map[string]any{
		"Todos":   query.Apply(todos),
		"Flashes": s.flashes(w, r),
	})
}

func (s *Server) addForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "add.html", map[string]any{
		"Todo":    todo.Todo{Priority: todo.Medium},
		"Flashes": s.flashes(w, r),
	})
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	t := formTodo(r)

	if err := t.Validate(); err != nil {
		s.flash(w, r, "error", err.Error())
		s.render(w, "add.html", map[string]any{
			"Todo":    t,
			"Flashes": s.flashes(w, r),
		})
		return
	}

	if _, err := s.store.Add(r.Context(), t); err != nil {
		s.flash(w, r, "error", err.Error())
		s.render(w, "add.html", map[string]any{
			"Todo":    t,
			"Flashes": s.flashes(w, r),
		})
		return
	}

	s.flash(w, r, "success", "Todo added")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) editForm(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	t, err := s.store.Get(r.Context(), row)
	if err != nil {
		s.flash(w, r, "error", "Todo not found")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.render(w, "edit.html", map[string]any{
		"Todo":    t,
		"Flashes": s.flashes(w, r),
	})
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	t := formTodo(r)
	t.ID = strings.TrimSpace(r.PostFormValue("id"))
	t.Row = row

	if err := t.Validate(); err != nil {
		s.flash(w, r, "error", err.Error())
		s.render(w, "edit.html", map[string]any{
			"Todo":    t,
			"Flashes": s.flashes(w, r),
		})
		return
	}

	if err := s.store.Update(r.Context(), row, t); err != nil {
		s.mutationError(w, r, err)
		return
	}

	s.flash(w, r, "success", "Todo updated")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.store.Delete(r.Context(), row, r.PostFormValue("id")); err != nil {
		s.mutationError(w, r, err)
		return
	}

	s.flash(w, r, "success", "Todo deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.store.Complete(r.Context(), row, r.PostFormValue("id")); err != nil {
		s.mutationError(w, r, err)
		return
	}

	s.flash(w, r, "success", "Todo completed")
	http.Redirect(w, r, "/archive", http.StatusSeeOther)
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	todos, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.query(r).Apply(todos))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// mutationError flashes a store error and redirects back to the list. Stale
// rows and vanished todos get a friendlier message than the raw error.
func (s *Server) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sheets.ErrNotFound):
		s.flash(w, r, "error", "Todo not found")

	case errors.Is(err, sheets.ErrStaleRow):
		s.flash(w, r, "error", "The list changed while you were editing - please try again")

	default:
		s.flash(w, r, "error", fmt.Sprintf("Error updating the worksheet (%v)", err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// query extracts the list filters from the request, falling back to the
// defaults (open todos, any priority, any due date, most urgent first).
func (s *Server) query(r *http.Request) todo.Query {
	query := todo.DefaultQuery(s.now())

	if v := r.URL.Query().Get("status"); v != "" {
		query.Status = todo.StatusFilter(v)
	}

	if v := r.URL.Query().Get("priority"); v != "" {
		query.Priority = v
	}

	if v := r.URL.Query().Get("due"); v != "" {
		query.Due = todo.DueFilter(v)
	}

	if v := r.URL.Query().Get("sort"); v != "" {
		query.Sort = todo.SortOrder(v)
	}

	return query
}

func formTodo(r *http.Request) todo.Todo {
	// an unrecognised priority is kept as-is so that Validate rejects it
	priority := todo.Priority(strings.TrimSpace(r.PostFormValue("priority")))
	if p, ok := todo.ParsePriority(string(priority)); ok {
		priority = p
	}

	return todo.Todo{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Content:  strings.TrimSpace(r.PostFormValue("content")),
		DueDate:  strings.TrimSpace(r.PostFormValue("due_date")),
		Priority: priority,
	}
}
