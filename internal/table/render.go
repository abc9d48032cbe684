package table

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"regexp"
)

// DefaultFallbackAvatar is served from the dashboard's static assets.
const DefaultFallbackAvatar = "/static/avatar.svg"

var urlSchemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// ResolveAvatar returns ref if it starts with a URL scheme, otherwise fallback.
// Upstream data uses placeholder strings that must not reach an <img> tag.
func ResolveAvatar(ref, fallback string) string {
	if urlSchemeRegex.MatchString(ref) {
		return ref
	}
	return fallback
}

type filterPill struct {
	Label  string
	Href   string
	Active bool
}

type renderedRow struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Avatar  string
	Href    string
	Actions template.HTML
}

type tableView struct {
	Title        string
	Search       string
	ActiveFilter string
	Filters      []filterPill
	Rows         []renderedRow
}

var tableTemplate = template.Must(template.New("table").Parse(`<section class="table-browser">
  <h2>{{.Title}}</h2>
  <form class="table-controls" method="get">
    <input type="search" name="q" value="{{.Search}}" placeholder="Search by name" autocomplete="off">
    {{- if .Filters}}
    <input type="hidden" name="filter" value="{{.ActiveFilter}}">
    {{- end}}
  </form>
  {{- if .Filters}}
  <nav class="filter-pills">
    {{- range .Filters}}
    <a class="pill{{if .Active}} active{{end}}" href="{{.Href}}">{{.Label}}</a>
    {{- end}}
  </nav>
  {{- end}}
  <table>
    <thead>
      <tr><th></th><th>ID</th><th>Name</th><th>Email</th><th>Phone</th><th>Actions</th></tr>
    </thead>
    <tbody>
      {{- range .Rows}}
      <tr data-id="{{.ID}}">
        <td><a href="{{.Href}}"><img class="avatar" src="{{.Avatar}}" alt=""></a></td>
        <td><a href="{{.Href}}">{{.ID}}</a></td>
        <td><a href="{{.Href}}">{{.Name}}</a></td>
        <td><a href="{{.Href}}">{{.Email}}</a></td>
        <td><a href="{{.Href}}">{{.Phone}}</a></td>
        <td class="actions">{{.Actions}}</td>
      </tr>
      {{- end}}
    </tbody>
  </table>
</section>
`))

// Render writes the table for the visible subset of rows.
func (b *Browser[R]) Render(w io.Writer, rows []R) error {
	view := tableView{
		Title:        b.opts.Title,
		Search:       b.search,
		ActiveFilter: b.activeFilter,
	}

	for _, f := range b.opts.Filters {
		q := url.Values{}
		if b.search != "" {
			q.Set("q", b.search)
		}
		q.Set("filter", f)
		view.Filters = append(view.Filters, filterPill{
			Label:  f,
			Href:   "?" + q.Encode(),
			Active: f == b.activeFilter,
		})
	}

	for _, row := range b.Visible(rows) {
		r := renderedRow{
			ID:     row.RowID(),
			Name:   row.DisplayName(),
			Email:  row.ContactEmail(),
			Phone:  row.ContactPhone(),
			Avatar: ResolveAvatar(row.AvatarRef(), b.opts.FallbackAvatar),
		}
		if b.opts.DetailPath != nil {
			r.Href = b.opts.DetailPath(r.ID)
		}
		if b.opts.Actions != nil {
			r.Actions = b.opts.Actions(row)
		}
		view.Rows = append(view.Rows, r)
	}

	if err := tableTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render table %q: %w", b.opts.Title, err)
	}
	return nil
}

// HTML renders the table into a fragment for embedding in a page.
func (b *Browser[R]) HTML(rows []R) (template.HTML, error) {
	var buf bytes.Buffer
	if err := b.Render(&buf, rows); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
