package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/kredits/oracle/internal/domain"
	"github.com/kredits/oracle/internal/ledger"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// views renders the embedded HTML templates for the interactive flow.
type views struct {
	t *template.Template
}

func newViews() (*views, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}

	return &views{t: t}, nil
}

func (v *views) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	// Rendering failures past this point can only be logged by the
	// caller's middleware; the status line is already written.
	_ = v.t.ExecuteTemplate(w, name+".html.tmpl", data)
}

type loginView struct {
	PullRequest *domain.PullRequest
	AuthURL     string
}

type registerView struct {
	PullRequest *domain.PullRequest
	Contributor *ledger.Contributor
	Login       string
	Name        string
	AvatarURL   string
}

type successView struct {
	PullRequest *domain.PullRequest
}

type errorView struct {
	Message     string
	PullRequest *domain.PullRequest
}
