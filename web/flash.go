package web

import (
	"encoding/gob"
	"net/http"
)

const sessionName = "tasksheets"

// Flash is a one-shot message shown on the next rendered page. Level is
// "success" or "error" and doubles as the CSS class.
type Flash struct {
	Level string
	Text  string
}

func init() {
	gob.Register(Flash{})
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, level, text string) {
	// a tampered cookie decodes to a fresh session, which is fine here
	session, _ := s.sessions.Get(r, sessionName)

	session.AddFlash(Flash{Level: level, Text: text})
	_ = session.Save(r, w)
}

func (s *Server) flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, _ := s.sessions.Get(r, sessionName)

	values := session.Flashes()
	if len(values) > 0 {
		_ = session.Save(r, w)
	}

	flashes := []Flash{}
	for _, v := range values {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}

	return flashes
}
