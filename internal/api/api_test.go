package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coaching-dashboard/internal/api"
	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/mocks"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080", RequestTimeout: 5 * time.Second},
		Dashboard: config.DashboardConfig{
			FallbackAvatar: "/static/avatar.svg",
			CheckinHistory: 14,
		},
		Lifecycle: config.LifecycleConfig{Interval: time.Hour, ExpiringWindow: 7 * 24 * time.Hour},
	}
}

func setupTestRouter() (*gin.Engine, *service.Services, *mocks.Store) {
	gin.SetMode(gin.TestMode)

	repos, store := mocks.NewRepositories()
	cfg := testConfig()
	log := zerolog.Nop()
	services := service.NewServices(repos, cfg, log)
	router := api.NewRouter(services, cfg, config.DefaultPresets(), nil, log)

	return router, services, store
}

func seed(t *testing.T, services *service.Services, name, status, followup string) *models.Customer {
	t.Helper()
	email := strings.ToLower(strings.Fields(name)[0]) + "@example.com"
	c, err := services.Customer.Create(context.Background(), &models.CustomerInput{
		Name: name, Email: email, Status: status, FollowupStatus: followup, AvatarURL: "placeholder",
	})
	if err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return c
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// assertOrder checks that each needle appears in body, in the given order
func assertOrder(t *testing.T, body string, needles ...string) {
	t.Helper()
	last := -1
	for _, n := range needles {
		i := strings.Index(body, n)
		if i < 0 {
			t.Errorf("Expected %q in body", n)
			return
		}
		if i < last {
			t.Errorf("Expected %q after the previous entries", n)
		}
		last = i
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := get(router, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "coaching-dashboard" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestHealthEndpoint_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repos, _ := mocks.NewRepositories()
	cfg := testConfig()
	services := service.NewServices(repos, cfg, zerolog.Nop())
	down := func(context.Context) error { return errors.New("connection refused") }
	router := api.NewRouter(services, cfg, config.DefaultPresets(), down, zerolog.Nop())

	w := get(router, "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, services, _ := setupTestRouter()
	seed(t, services, "Ann Lee", models.StatusActive, "")
	seed(t, services, "Bob Roe", models.StatusActive, "")

	w := get(router, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	db := response["database"].(map[string]interface{})
	if db["customers"].(float64) != 2 {
		t.Errorf("Expected 2 customers, got %v", db["customers"])
	}
}

func TestRootRedirectsToCustomers(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := get(router, "/")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/customers" {
		t.Errorf("Expected redirect to /customers, got %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestCustomersPage_PriorityOrder(t *testing.T) {
	router, services, _ := setupTestRouter()
	seed(t, services, "Ann Expired", models.StatusExpired, "")
	seed(t, services, "Bob Active", models.StatusActive, "")
	seed(t, services, "Cat Expiring", models.StatusExpiringSoon, "")
	seed(t, services, "Dan Blocked", models.StatusBlocked, "")
	seed(t, services, "Eve Active", models.StatusActive, "")

	w := get(router, "/customers")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML, got %s", w.Header().Get("Content-Type"))
	}

	assertOrder(t, w.Body.String(), "Cat Expiring", "Bob Active", "Eve Active", "Ann Expired", "Dan Blocked")
}

func TestCustomersPage_SearchAndFilter(t *testing.T) {
	router, services, _ := setupTestRouter()
	seed(t, services, "Bob Active", models.StatusActive, "")
	eve := seed(t, services, "Eve Active", models.StatusActive, "")
	seed(t, services, "Eve Expired", models.StatusExpired, "")

	w := get(router, "/customers?q=EVE&filter=Active")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()

	if !strings.Contains(body, "Eve Active") {
		t.Error("Expected Eve Active to be listed")
	}
	if strings.Contains(body, "Bob Active") || strings.Contains(body, "Eve Expired") {
		t.Error("Expected non-matching customers to be hidden")
	}
	if !strings.Contains(body, `value="EVE"`) {
		t.Error("Expected search box to keep the query")
	}
	if !strings.Contains(body, `href="/customers/`+eve.ID+`"`) {
		t.Error("Expected row link to the detail page")
	}
	if !strings.Contains(body, `action="/customers/`+eve.ID+`/status"`) {
		t.Error("Expected status form in the actions column")
	}
	if !strings.Contains(body, `src="/static/avatar.svg"`) {
		t.Error("Expected fallback avatar for placeholder image")
	}
}

func TestCustomersPage_UnknownFilterIgnored(t *testing.T) {
	router, services, _ := setupTestRouter()
	seed(t, services, "Bob Active", models.StatusActive, "")

	w := get(router, "/customers?filter=Nonsense")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Bob Active") {
		t.Errorf("Expected unknown filter to leave All active, got %d", w.Code)
	}
}

func TestCustomersPage_LoadFailure(t *testing.T) {
	router, services, store := setupTestRouter()
	seed(t, services, "Bob Active", models.StatusActive, "")
	store.Customer.Err = context.DeadlineExceeded

	w := get(router, "/customers")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "Bob Active") {
		t.Error("Expected no rows on failure")
	}
	if !strings.Contains(body, "could not be loaded") {
		t.Error("Expected flash message")
	}
}

func TestFollowupsPage(t *testing.T) {
	router, services, _ := setupTestRouter()
	seed(t, services, "Client Only", models.StatusActive, "")
	pending := seed(t, services, "Pia Pending", "", models.FollowupPending)
	seed(t, services, "Carl Contacted", "", models.FollowupContacted)

	w := get(router, "/followups")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()

	if strings.Contains(body, "Client Only") {
		t.Error("Expected customers without follow-up status to be excluded")
	}
	assertOrder(t, body, "Pia Pending", "Carl Contacted")
	if got := strings.Count(body, `action="/followups/`); got != 1 {
		t.Errorf("Expected 1 Mark contacted form, got %d", got)
	}
	if !strings.Contains(body, `action="/followups/`+pending.ID+`/status"`) {
		t.Error("Expected Mark contacted form for the pending lead")
	}

	w = get(router, "/followups?filter=Contacted")
	if strings.Contains(w.Body.String(), "Pia Pending") {
		t.Error("Expected Contacted filter to hide pending leads")
	}
}

func TestSetCustomerStatus(t *testing.T) {
	router, services, _ := setupTestRouter()
	c := seed(t, services, "Bob Active", models.StatusActive, "")

	w := doForm(router, "/customers/"+c.ID+"/status", url.Values{
		"status": {models.StatusBlocked},
		"return": {"/customers?filter=Blocked"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/customers?filter=Blocked" {
		t.Errorf("Expected redirect back, got %s", loc)
	}

	updated, _ := services.Customer.Get(context.Background(), c.ID)
	if updated.Status != models.StatusBlocked {
		t.Errorf("Expected Blocked, got %s", updated.Status)
	}

	w = doForm(router, "/customers/"+c.ID+"/status", url.Values{
		"status": {models.StatusActive},
		"return": {"//evil.example.com"},
	})
	if loc := w.Header().Get("Location"); loc != "/customers" {
		t.Errorf("Expected off-site return to be replaced, got %s", loc)
	}

	w = doForm(router, "/customers/"+c.ID+"/status", url.Values{"status": {"Gone"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for unknown status, got %d", w.Code)
	}
}

func TestSetFollowupStatus(t *testing.T) {
	router, services, _ := setupTestRouter()
	lead := seed(t, services, "Pia Pending", "", models.FollowupPending)

	w := doForm(router, "/followups/"+lead.ID+"/status", url.Values{})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 without a status, got %d", w.Code)
	}
	unchanged, _ := services.Customer.Get(context.Background(), lead.ID)
	if unchanged.FollowupStatus != models.FollowupPending {
		t.Errorf("Expected Pending to be kept, got %s", unchanged.FollowupStatus)
	}

	w = doForm(router, "/followups/"+lead.ID+"/status", url.Values{"status": {models.FollowupContacted}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/followups" {
		t.Fatalf("Expected redirect to /followups, got %d %s", w.Code, w.Header().Get("Location"))
	}

	updated, _ := services.Customer.Get(context.Background(), lead.ID)
	if updated.FollowupStatus != models.FollowupContacted {
		t.Errorf("Expected Contacted, got %s", updated.FollowupStatus)
	}
}

func TestCustomerDetailPage(t *testing.T) {
	router, services, _ := setupTestRouter()
	ctx := context.Background()
	c := seed(t, services, "Noor Ali", models.StatusActive, "")

	if _, err := services.Checkin.Record(ctx, c.ID, &models.CheckinInput{Mood: 4, WeightKg: 71.5}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := services.Report.Create(ctx, c.ID, &models.ReportInput{
		Title: "Blood work", FileURL: "https://files.example.com/blood.pdf", Notes: "**Iron** low",
	}); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if _, err := services.Plan.Save(ctx, c.ID, models.PlanDiet, &models.PlanInput{
		Groups: []models.PlanGroup{{Name: "Breakfast", Items: []models.PlanItem{{Name: "Oats", Detail: "60 g"}}}},
	}); err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	w := get(router, "/customers/"+c.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()

	for _, want := range []string{"Noor Ali", "71.5 kg", "<strong>Iron</strong>", "Breakfast", "Oats: 60 g", "Exercise plan", "No sessions booked."} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q on detail page", want)
		}
	}
	if !strings.Contains(body, "ago") && !strings.Contains(body, "now") {
		t.Error("Expected relative check-in time")
	}
}

func TestCustomerDetailPage_NotFound(t *testing.T) {
	router, _, _ := setupTestRouter()

	for _, path := range []string{"/customers/42", "/customers/550e8400-e29b-41d4-a716-446655440000"} {
		if w := get(router, path); w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestPlanEditForm(t *testing.T) {
	router, services, _ := setupTestRouter()
	c := seed(t, services, "Max Roe", models.StatusActive, "")
	path := "/customers/" + c.ID + "/plans/exercise/edit"

	w := get(router, path)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="group_name"`) {
		t.Error("Expected group editor")
	}

	w = doForm(router, path, url.Values{
		"title":       {"Strength"},
		"group_name":  {"Day 1", "", "Day 2"},
		"group_items": {"Squat | 5x5\nBench | 5x5", "", "Deadlift | 1x5"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d: %s", w.Code, w.Body.String())
	}

	plan, err := services.Plan.Get(context.Background(), c.ID, models.PlanExercise)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(plan.Groups) != 2 || len(plan.Groups[0].Items) != 2 {
		t.Fatalf("Expected 2 groups with 2 items in the first, got %+v", plan.Groups)
	}
	if plan.Groups[0].Items[0] != (models.PlanItem{Name: "Squat", Detail: "5x5"}) {
		t.Errorf("Unexpected first item %+v", plan.Groups[0].Items[0])
	}

	w = doForm(router, path, url.Values{
		"group_name":  {"Day 1", "day 1"},
		"group_items": {"Squat", "Lunge"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for duplicate group names, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "duplicate group name") {
		t.Error("Expected validation message in form")
	}

	if w := get(router, "/customers/"+c.ID+"/plans/yoga/edit"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown plan kind, got %d", w.Code)
	}
}

func TestCustomerAPI(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doJSON(router, "POST", "/v1/customers", map[string]any{
		"name": "Ann Lee", "email": "ann@example.com", "session_status": "Active",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Customer
	json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(router, "POST", "/v1/customers", map[string]any{"name": "", "email": "nope"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", w.Code)
	}
	var invalid map[string]any
	json.Unmarshal(w.Body.Bytes(), &invalid)
	if details, ok := invalid["details"].([]any); !ok || len(details) != 2 {
		t.Errorf("Expected 2 validation details, got %v", invalid["details"])
	}

	w = doJSON(router, "PATCH", "/v1/customers/"+created.ID, map[string]any{"session_status": "Expiring Soon"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var patched models.Customer
	json.Unmarshal(w.Body.Bytes(), &patched)
	if patched.Status != models.StatusExpiringSoon || patched.Name != "Ann Lee" {
		t.Errorf("Unexpected patch result %+v", patched)
	}

	if w := get(router, "/v1/customers/"+created.ID); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := get(router, "/v1/customers/not-a-uuid"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	req := httptest.NewRequest("POST", "/v1/customers", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	bad := httptest.NewRecorder()
	router.ServeHTTP(bad, req)
	if bad.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", bad.Code)
	}
}

func TestCustomerAPI_ListFiltersAndSorts(t *testing.T) {
	router, services, _ := setupTestRouter()
	seed(t, services, "Ann Expired", models.StatusExpired, "")
	seed(t, services, "Bob Active", models.StatusActive, "")
	seed(t, services, "Cat Expiring", models.StatusExpiringSoon, "")

	w := get(router, "/v1/customers")
	var response struct {
		Customers []models.Customer `json:"customers"`
		Total     int               `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if len(response.Customers) != 3 || response.Customers[0].Name != "Cat Expiring" || response.Customers[2].Name != "Ann Expired" {
		t.Errorf("Expected priority order, got %+v", response.Customers)
	}

	w = get(router, "/v1/customers?status=Active&q=bo")
	json.Unmarshal(w.Body.Bytes(), &response)
	if len(response.Customers) != 1 || response.Customers[0].Name != "Bob Active" || response.Total != 3 {
		t.Errorf("Expected only Bob of 3, got %+v (total %d)", response.Customers, response.Total)
	}

	if w := get(router, "/v1/customers?status=Gone"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", w.Code)
	}
}

func TestSessionAPI_Conflicts(t *testing.T) {
	router, services, _ := setupTestRouter()
	c := seed(t, services, "Sam Park", models.StatusActive, "")
	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Minute)
	path := "/v1/customers/" + c.ID + "/sessions"

	w := doJSON(router, "POST", path, map[string]any{"coach": "Priya", "starts_at": start, "duration_minutes": 60})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var session models.Session
	json.Unmarshal(w.Body.Bytes(), &session)

	w = doJSON(router, "POST", path, map[string]any{"coach": "Priya", "starts_at": start.Add(15 * time.Minute), "duration_minutes": 30})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for overlap, got %d", w.Code)
	}

	w = doJSON(router, "POST", path, map[string]any{"coach": "Priya", "starts_at": start.Add(24 * time.Hour), "duration_minutes": 5})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for short session, got %d", w.Code)
	}

	if w := doJSON(router, "POST", "/v1/sessions/"+session.ID+"/complete", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := doJSON(router, "POST", "/v1/sessions/"+session.ID+"/cancel", nil); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for completed session, got %d", w.Code)
	}

	w = get(router, path)
	var list struct {
		Sessions []models.Session `json:"sessions"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Sessions) != 1 || list.Sessions[0].Status != models.SessionCompleted {
		t.Errorf("Expected one completed session, got %+v", list.Sessions)
	}
}

func TestPlanAPI(t *testing.T) {
	router, services, _ := setupTestRouter()
	c := seed(t, services, "Max Roe", models.StatusActive, "")
	path := "/v1/customers/" + c.ID + "/plans/diet"

	w := get(router, path)
	var empty models.Plan
	json.Unmarshal(w.Body.Bytes(), &empty)
	if w.Code != http.StatusOK || empty.ID != "" || empty.Groups == nil {
		t.Errorf("Expected empty plan with empty groups, got %d %+v", w.Code, empty)
	}

	w = doJSON(router, "PUT", path, map[string]any{
		"title":  "Cut",
		"groups": []map[string]any{{"name": "Lunch", "items": []map[string]any{{"name": "Salad"}}}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = get(router, path)
	var plan models.Plan
	json.Unmarshal(w.Body.Bytes(), &plan)
	if plan.Title != "Cut" || len(plan.Groups) != 1 || plan.Groups[0].Items[0].Name != "Salad" {
		t.Errorf("Unexpected plan %+v", plan)
	}

	if w := doJSON(router, "PUT", path, map[string]any{"groups": []any{}}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for empty plan, got %d", w.Code)
	}
	if w := get(router, "/v1/customers/"+c.ID+"/plans/yoga"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown kind, got %d", w.Code)
	}
}

func TestCheckinAPI(t *testing.T) {
	router, services, _ := setupTestRouter()
	c := seed(t, services, "Lia Moss", models.StatusActive, "")
	path := "/v1/customers/" + c.ID + "/checkins"

	if w := doJSON(router, "POST", path, map[string]any{"mood": 3, "sleep_hours": 7.5}); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(router, "POST", path, map[string]any{"mood": 9}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for mood 9, got %d", w.Code)
	}

	w := get(router, path+"?limit=5")
	var list struct {
		Checkins []models.Checkin `json:"checkins"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Checkins) != 1 || list.Checkins[0].SleepHours != 7.5 {
		t.Errorf("Unexpected check-ins %+v", list.Checkins)
	}

	if w := get(router, path+"?limit=zero"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", w.Code)
	}
}

func TestReportAPI(t *testing.T) {
	router, services, _ := setupTestRouter()
	c := seed(t, services, "Noor Ali", models.StatusActive, "")

	w := doJSON(router, "POST", "/v1/customers/"+c.ID+"/reports", map[string]any{
		"title": "Thyroid", "file_url": "https://files.example.com/t.pdf", "notes": "*TSH* normal <script>x()</script>",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created map[string]any
	json.Unmarshal(w.Body.Bytes(), &created)
	if html, _ := created["notes_html"].(string); strings.Contains(html, "<script>") || !strings.Contains(html, "<em>TSH</em>") {
		t.Errorf("Expected sanitized notes, got %q", html)
	}

	if w := doJSON(router, "POST", "/v1/customers/"+c.ID+"/reports", map[string]any{
		"title": "Bad", "file_url": "ftp://files.example.com/t.pdf",
	}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for ftp URL, got %d", w.Code)
	}

	id := created["id"].(string)
	if w := doJSON(router, "DELETE", "/v1/reports/"+id, nil); w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if w := doJSON(router, "DELETE", "/v1/reports/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestExportCustomers(t *testing.T) {
	router, services, _ := setupTestRouter()
	seed(t, services, "Ann Lee", models.StatusActive, "")

	w := get(router, "/v1/exports/customers?format=csv")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "text/csv" {
		t.Errorf("Expected text/csv, got %s", w.Header().Get("Content-Type"))
	}
	if lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n"); len(lines) != 2 {
		t.Errorf("Expected header and 1 row, got %d lines", len(lines))
	}

	w = get(router, "/v1/exports/customers")
	if w.Header().Get("Content-Type") != "application/x-ndjson" {
		t.Errorf("Expected NDJSON by default, got %s", w.Header().Get("Content-Type"))
	}

	if w := get(router, "/v1/exports/customers?format=xml"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	router, _, _ := setupTestRouter()

	req := httptest.NewRequest("OPTIONS", "/v1/customers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Errorf("Expected PATCH to be allowed, got %s", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestFallbackAvatar(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := get(router, "/static/avatar.svg")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/svg+xml" {
		t.Errorf("Expected SVG, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestCSRF(t *testing.T) {
	router, services, _ := setupTestRouter()
	c := seed(t, services, "Bob Active", models.StatusActive, "")
	protected := api.CSRF([]byte("0123456789abcdef0123456789abcdef"), nil)(router)

	w := doForm(protected, "/customers/"+c.ID+"/status", url.Values{"status": {models.StatusBlocked}})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without token, got %d", w.Code)
	}

	w = doJSON(protected, "PATCH", "/v1/customers/"+c.ID, map[string]any{"goal": "Run 10k"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected JSON request to bypass CSRF, got %d", w.Code)
	}

	w = doJSON(protected, "POST", "/v1/customers", map[string]any{"name": "X"})
	if w.Code == http.StatusForbidden {
		t.Errorf("Expected JSON API request to reach the handler, got %d", w.Code)
	}

	w = get(protected, "/customers")
	if !strings.Contains(w.Body.String(), `name="csrf_token"`) {
		t.Error("Expected token field in action forms")
	}
}

func TestCSRF_FormRoutesIgnoreJSONContentType(t *testing.T) {
	router, services, _ := setupTestRouter()
	lead := seed(t, services, "Lia Lead", "", models.FollowupPending)
	protected := api.CSRF([]byte("0123456789abcdef0123456789abcdef"), nil)(router)

	req := httptest.NewRequest("POST", "/followups/"+lead.ID+"/status", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for tokenless form route, got %d", w.Code)
	}
	stored, _ := services.Customer.Get(context.Background(), lead.ID)
	if stored.FollowupStatus != models.FollowupPending {
		t.Errorf("Expected follow-up status untouched, got %s", stored.FollowupStatus)
	}

	form := url.Values{"name": {"Mallory"}, "email": {"m@example.com"}}
	w = doForm(protected, "/v1/customers", form)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for form-encoded API post, got %d", w.Code)
	}
}
