// Package web implements the todo list HTTP application: HTML pages for
// listing, adding, editing, completing and deleting todos, plus a small JSON
// listing endpoint and a health check.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/tasksheets/tasksheets/todo"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Store is the worksheet-backed todo store the handlers run against. Row is
// the 1-based worksheet row; id is the stored todo ID, re-verified by the
// store before destructive writes.
type Store interface {
	List(ctx context.Context) ([]todo.Todo, error)
	Get(ctx context.Context, row int) (todo.Todo, error)
	Add(ctx context.Context, t todo.Todo) (todo.Todo, error)
	Update(ctx context.Context, row int, t todo.Todo) error
	Complete(ctx context.Context, row int, id string) error
	Delete(ctx context.Context, row int, id string) error
}

type Server struct {
	router    *chi.Mux
	store     Store
	templates *template.Template
	sessions  *sessions.CookieStore
	now       func() time.Time
}

// NewServer creates the HTTP application. secretKey signs the session cookie
// that carries flash messages and must not be blank.
func NewServer(store Store, secretKey string) (*Server, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required - set it in the hosting platform's environment configuration")
	}

	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("unable to parse templates (%v)", err)
	}

	cookies := sessions.NewCookieStore([]byte(secretKey))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := Server{
		router:    chi.NewRouter(),
		store:     store,
		templates: templates,
		sessions:  cookies,
		now:       time.Now,
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/", s.index)
	s.router.Get("/add", s.addForm)
	s.router.Post("/add", s.add)
	s.router.Get("/edit/{row}", s.editForm)
	s.router.Post("/edit/{row}", s.edit)
	s.router.Post("/delete/{row}", s.delete)
	s.router.Post("/complete/{row}", s.complete)
	s.router.Get("/archive", s.archive)

	s.router.Get("/api/todos", s.apiList)
	s.router.Get("/healthz", s.healthz)

	return &s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, page string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := s.templates.ExecuteTemplate(w, page, data); err != nil {
		http.Error(w, "Internal error formatting page", http.StatusInternalServerError)
	}
}
