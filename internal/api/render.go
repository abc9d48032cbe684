package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/coaching-dashboard/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageNames lists the page templates; each is parsed over its own copy of
// base.html so their "content" blocks do not collide
var pageNames = []string{"list", "detail", "plan_form", "error"}

// PageData contains common data for all pages
type PageData struct {
	Title string
	Flash *FlashMessage
	Data  any
}

// FlashMessage represents a flash message
type FlashMessage struct {
	Type    string // "error" or "info"
	Message string
}

// renderer executes page templates into gin responses
type renderer struct {
	pages   map[string]*template.Template
	actions *template.Template
	log     zerolog.Logger
}

func newRenderer(log zerolog.Logger) *renderer {
	base := template.Must(template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/base.html"))

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.Must(base.Clone()).ParseFS(templatesFS, "templates/"+name+".html"))
	}

	return &renderer{
		pages:   pages,
		actions: template.Must(template.New("").ParseFS(templatesFS, "templates/actions.html")),
		log:     log,
	}
}

// page renders a full page. The body is buffered so a template error can
// still produce a clean 500.
func (r *renderer) page(c *gin.Context, status int, name string, data PageData) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.log.Error().Str("template", name).Msg("Unknown page template")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		r.log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// errorPage renders the error page
func (r *renderer) errorPage(c *gin.Context, status int, message string) {
	r.page(c, status, "error", PageData{Title: http.StatusText(status), Data: message})
}

// fragment renders a named actions fragment
func (r *renderer) fragment(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := r.actions.ExecuteTemplate(&buf, name, data); err != nil {
		r.log.Error().Err(err).Str("fragment", name).Msg("Failed to render fragment")
		return ""
	}
	return template.HTML(buf.String())
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"ago":        formatTimeAgo,
		"formatTime": formatTime,
		"formatDate": formatDate,
		"planLabel":  planLabel,
	}
}

// asTime accepts time.Time or *time.Time
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	default:
		return time.Time{}, false
	}
}

func formatTimeAgo(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return humanize.Time(t)
}

func formatTime(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.Local().Format("Mon 2 Jan 2006 15:04")
}

func formatDate(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.Format("2 Jan 2006")
}

func planLabel(kind models.PlanKind) string {
	switch kind {
	case models.PlanDiet:
		return "Diet plan"
	case models.PlanExercise:
		return "Exercise plan"
	default:
		return fmt.Sprintf("%s plan", kind)
	}
}
