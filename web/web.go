// Package web provides the embedded web UI: an expression form and the
// evaluation history.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/calc/pkg/expr"
	"github.com/lemonberrylabs/calc/pkg/session"
	"github.com/lemonberrylabs/calc/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// RecentLimit is the number of history rows shown on the page.
const RecentLimit = 25

// Handler serves the web UI pages.
type Handler struct {
	store     *store.Store
	precision int
	funcMap   template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	Title string
	Data  interface{}
}

type indexContent struct {
	Current *store.Evaluation
	Recent  []*store.Evaluation
	Stats   store.Stats
}

// New creates a new web UI handler.
func New(s *store.Store, precision int) *Handler {
	h := &Handler{
		store:     s,
		precision: precision,
	}
	h.funcMap = template.FuncMap{
		"timeAgo":      timeAgo,
		"formatTime":   formatTime,
		"outcomeClass": outcomeClass,
		"outcomeIcon":  outcomeIcon,
		"truncate":     truncate,
		"result":       h.formatResult,
		"caret":        caret,
	}
	return h
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.index)
	app.Post("/ui/evaluate", h.evaluate)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

func (h *Handler) render(c *fiber.Ctx, page string, title string, data interface{}) error {
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pageData{Title: title, Data: data}); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// --- Page Handlers ---

func (h *Handler) index(c *fiber.Ctx) error {
	content := indexContent{Stats: h.store.Stats()}

	if id := c.Query("id"); id != "" {
		if ev, err := h.store.Get(id); err == nil {
			content.Current = ev
		}
	}

	recent := h.store.List()
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	content.Recent = recent

	return h.render(c, "index.html", "Calculator", content)
}

func (h *Handler) evaluate(c *fiber.Ctx) error {
	line := strings.TrimSpace(c.FormValue("expression"))
	if line == "" {
		return c.Redirect("/ui")
	}

	v, err := expr.Eval(line)
	ev := h.store.Record(line, v, err)
	return c.Redirect("/ui?id=" + ev.ID)
}

// --- Template Helpers ---

func (h *Handler) formatResult(v float64) string {
	return session.FormatResult(v, h.precision)
}

// caret returns a marker line pointing at byte offset pos of expression, or
// "" when the failure has no position. Padding counts runes, not bytes.
func caret(expression string, pos int) string {
	if pos < 0 {
		return ""
	}
	pos = min(pos, len(expression))
	return strings.Repeat(" ", utf8.RuneCountInString(expression[:pos])) + "^"
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02 15:04:05")
}

func outcomeClass(o store.Outcome) string {
	switch o {
	case store.OutcomeSucceeded:
		return "state-succeeded"
	case store.OutcomeFailed:
		return "state-failed"
	default:
		return ""
	}
}

func outcomeIcon(o store.Outcome) template.HTML {
	switch o {
	case store.OutcomeSucceeded:
		return "&#10003;"
	case store.OutcomeFailed:
		return "&#10007;"
	default:
		return "&#8226;"
	}
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
