package api

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/service"
	"github.com/coaching-dashboard/internal/table"
	"github.com/coaching-dashboard/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/rs/zerolog"
)

// PageHandler serves the dashboard HTML pages
type PageHandler struct {
	services *service.Services
	cfg      *config.Config
	presets  *config.Presets
	render   *renderer
	log      zerolog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(services *service.Services, cfg *config.Config, presets *config.Presets, log zerolog.Logger) *PageHandler {
	log = log.With().Str("handler", "pages").Logger()
	return &PageHandler{
		services: services,
		cfg:      cfg,
		presets:  presets,
		render:   newRenderer(log),
		log:      log,
	}
}

func customerPath(id string) string { return "/customers/" + id }

// Customers handles GET /customers?q=...&filter=...
func (h *PageHandler) Customers(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	csrfField := csrf.TemplateField(c.Request)
	back := c.Request.URL.RequestURI()

	browser := table.New(table.Options[*models.Customer]{
		Title:    "Customers",
		Filters:  h.presets.CustomerFilters,
		Status:   models.SessionStatus,
		Priority: h.presets.PriorityTable(),
		Actions: func(cu *models.Customer) template.HTML {
			return h.render.fragment("status-select", statusSelect{
				ID:      cu.ID,
				Current: cu.Status,
				Options: models.Statuses,
				Return:  back,
				CSRF:    csrfField,
			})
		},
		DetailPath:     customerPath,
		FallbackAvatar: h.cfg.Dashboard.FallbackAvatar,
	})

	customers, err := h.services.Customer.List(ctx)
	var flash *FlashMessage
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load customers")
		flash = &FlashMessage{Type: "error", Message: "Customers could not be loaded. Try again shortly."}
		customers = nil
	}

	renderBrowser(h, c, browser, customers, flash)
}

// Followups handles GET /followups?q=...&filter=...
func (h *PageHandler) Followups(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	csrfField := csrf.TemplateField(c.Request)
	back := c.Request.URL.RequestURI()

	browser := table.New(table.Options[*models.Customer]{
		Title:    "Follow-ups",
		Filters:  h.presets.FollowupFilters,
		Status:   models.FollowupStatusOf,
		Priority: h.presets.PriorityTable(),
		Actions: func(cu *models.Customer) template.HTML {
			if cu.FollowupStatus != models.FollowupPending {
				return ""
			}
			return h.render.fragment("mark-contacted", statusSelect{ID: cu.ID, Return: back, CSRF: csrfField})
		},
		DetailPath:     customerPath,
		FallbackAvatar: h.cfg.Dashboard.FallbackAvatar,
	})

	leads, err := h.services.Customer.ListFollowups(ctx)
	var flash *FlashMessage
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load follow-ups")
		flash = &FlashMessage{Type: "error", Message: "Follow-ups could not be loaded. Try again shortly."}
		leads = nil
	}

	renderBrowser(h, c, browser, leads, flash)
}

// statusSelect is the data of the per-row action forms
type statusSelect struct {
	ID      string
	Current string
	Options []string
	Return  string
	CSRF    template.HTML
}

// renderBrowser applies the q and filter query parameters to b and renders
// the resulting table as a page
func renderBrowser[R table.Row](h *PageHandler, c *gin.Context, b *table.Browser[R], rows []R, flash *FlashMessage) {
	b.SetSearch(c.Query("q"))
	if filter := c.Query("filter"); filter != "" {
		b.SetFilter(filter)
	}

	fragment, err := b.HTML(rows)
	if err != nil {
		h.log.Error().Err(err).Str("table", b.Title()).Msg("Failed to render table")
		h.render.errorPage(c, http.StatusInternalServerError, "The table could not be rendered.")
		return
	}

	h.render.page(c, http.StatusOK, "list", PageData{Title: b.Title(), Flash: flash, Data: fragment})
}

// detailView is the data of the customer detail page
type detailView struct {
	Customer *models.Customer
	Avatar   string
	Sessions []*models.Session
	Plans    []*models.Plan
	Checkins []*models.Checkin
	Reports  []reportView
}

type reportView struct {
	*models.Report
	NotesHTML template.HTML
}

// CustomerDetail handles GET /customers/:id
// Sections that fail to load are left empty and reported in a flash message.
func (h *PageHandler) CustomerDetail(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	id := c.Param("id")
	customer, err := h.services.Customer.Get(ctx, id)
	if err != nil {
		h.pageError(c, err)
		return
	}

	view := detailView{
		Customer: customer,
		Avatar:   table.ResolveAvatar(customer.AvatarURL, h.cfg.Dashboard.FallbackAvatar),
	}
	var failed []string

	if view.Sessions, err = h.services.Session.ListForCustomer(ctx, id); err != nil {
		h.log.Error().Err(err).Str("customer_id", id).Msg("Failed to load sessions")
		failed = append(failed, "sessions")
	}
	for _, kind := range []models.PlanKind{models.PlanDiet, models.PlanExercise} {
		plan, err := h.services.Plan.Get(ctx, id, kind)
		if err != nil {
			h.log.Error().Err(err).Str("customer_id", id).Str("kind", string(kind)).Msg("Failed to load plan")
			failed = append(failed, string(kind)+" plan")
			continue
		}
		view.Plans = append(view.Plans, plan)
	}
	if view.Checkins, err = h.services.Checkin.ListRecent(ctx, id, h.cfg.Dashboard.CheckinHistory); err != nil {
		h.log.Error().Err(err).Str("customer_id", id).Msg("Failed to load check-ins")
		failed = append(failed, "check-ins")
	}
	reports, err := h.services.Report.List(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Str("customer_id", id).Msg("Failed to load reports")
		failed = append(failed, "reports")
	}
	for _, r := range reports {
		view.Reports = append(view.Reports, reportView{Report: r, NotesHTML: h.services.Report.RenderNotes(r.Notes)})
	}

	var flash *FlashMessage
	if len(failed) > 0 {
		flash = &FlashMessage{Type: "error", Message: "Could not load " + strings.Join(failed, ", ") + "."}
	}

	h.render.page(c, http.StatusOK, "detail", PageData{Title: customer.Name, Flash: flash, Data: view})
}

// SetCustomerStatus handles POST /customers/:id/status
func (h *PageHandler) SetCustomerStatus(c *gin.Context) {
	status := c.PostForm("status")
	h.patchAndReturn(c, &models.CustomerPatch{Status: &status}, "/customers")
}

// SetFollowupStatus handles POST /followups/:id/status
func (h *PageHandler) SetFollowupStatus(c *gin.Context) {
	status := c.PostForm("status")
	if status == "" {
		h.pageError(c, &service.ValidationFailed{Errors: []validation.ValidationError{{
			Field:   "followup_status",
			Message: "follow-up status is required",
		}}})
		return
	}
	h.patchAndReturn(c, &models.CustomerPatch{FollowupStatus: &status}, "/followups")
}

func (h *PageHandler) patchAndReturn(c *gin.Context, patch *models.CustomerPatch, fallback string) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if _, err := h.services.Customer.Update(ctx, c.Param("id"), patch); err != nil {
		h.pageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, safeReturn(c.PostForm("return"), fallback))
}

// safeReturn accepts only local paths as redirect targets
func safeReturn(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

// planFormView is the data of the grouped plan editor
type planFormView struct {
	CustomerID   string
	CustomerName string
	Kind         models.PlanKind
	PlanTitle    string
	Groups       []planFormGroup
	Errors       []validation.ValidationError
	CSRF         template.HTML
}

type planFormGroup struct {
	Name  string
	Items string
}

// EditPlan handles GET /customers/:id/plans/:kind/edit
func (h *PageHandler) EditPlan(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	customer, err := h.services.Customer.Get(ctx, c.Param("id"))
	if err != nil {
		h.pageError(c, err)
		return
	}
	plan, err := h.services.Plan.Get(ctx, customer.ID, models.PlanKind(c.Param("kind")))
	if err != nil {
		h.pageError(c, err)
		return
	}

	h.renderPlanForm(c, http.StatusOK, customer, plan.Kind, plan.Title, plan.Groups, nil)
}

// SavePlan handles POST /customers/:id/plans/:kind/edit
func (h *PageHandler) SavePlan(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	customer, err := h.services.Customer.Get(ctx, c.Param("id"))
	if err != nil {
		h.pageError(c, err)
		return
	}

	kind := models.PlanKind(c.Param("kind"))
	if !models.ValidPlanKinds[kind] {
		h.render.errorPage(c, http.StatusNotFound, "That page does not exist.")
		return
	}
	in := parsePlanForm(c.PostForm("title"), c.PostFormArray("group_name"), c.PostFormArray("group_items"))

	if _, err := h.services.Plan.Save(ctx, customer.ID, kind, in); err != nil {
		var vf *service.ValidationFailed
		if errors.As(err, &vf) {
			h.renderPlanForm(c, http.StatusUnprocessableEntity, customer, kind, in.Title, in.Groups, vf.Errors)
			return
		}
		h.pageError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, customerPath(customer.ID))
}

func (h *PageHandler) renderPlanForm(c *gin.Context, status int, customer *models.Customer, kind models.PlanKind, title string, groups []models.PlanGroup, errs []validation.ValidationError) {
	view := planFormView{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Kind:         kind,
		PlanTitle:    title,
		Errors:       errs,
		CSRF:         csrf.TemplateField(c.Request),
	}
	for _, g := range groups {
		view.Groups = append(view.Groups, planFormGroup{Name: g.Name, Items: formatItems(g.Items)})
	}
	// A blank group for adding one more
	view.Groups = append(view.Groups, planFormGroup{})

	h.render.page(c, status, "plan_form", PageData{Title: planLabel(kind), Data: view})
}

// itemSeparator splits an item line into name and detail
const itemSeparator = "|"

func formatItems(items []models.PlanItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = item.Name
		if item.Detail != "" {
			lines[i] += " " + itemSeparator + " " + item.Detail
		}
	}
	return strings.Join(lines, "\n")
}

func parseItems(text string) []models.PlanItem {
	items := []models.PlanItem{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, detail, _ := strings.Cut(line, itemSeparator)
		items = append(items, models.PlanItem{Name: strings.TrimSpace(name), Detail: strings.TrimSpace(detail)})
	}
	return items
}

// parsePlanForm pairs group names with their item text areas. Groups left
// completely blank are dropped.
func parsePlanForm(title string, names, itemTexts []string) *models.PlanInput {
	in := &models.PlanInput{Title: title, Groups: []models.PlanGroup{}}
	for i, name := range names {
		var text string
		if i < len(itemTexts) {
			text = itemTexts[i]
		}
		if strings.TrimSpace(name) == "" && strings.TrimSpace(text) == "" {
			continue
		}
		in.Groups = append(in.Groups, models.PlanGroup{Name: name, Items: parseItems(text)})
	}
	return in
}

// pageError renders the error page for a service error
func (h *PageHandler) pageError(c *gin.Context, err error) {
	status := errorStatus(err)
	switch status {
	case http.StatusNotFound:
		h.render.errorPage(c, status, "That page does not exist.")
	case http.StatusInternalServerError, http.StatusGatewayTimeout:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Page request failed")
		h.render.errorPage(c, status, "Something went wrong. Try again shortly.")
	default:
		h.render.errorPage(c, status, err.Error())
	}
}
