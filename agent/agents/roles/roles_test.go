package roles

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	accommodationx "github.com/verdanthealth/wellness-agent/agent/accommodation"
	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
	policyx "github.com/verdanthealth/wellness-agent/agent/policy"
	privacyx "github.com/verdanthealth/wellness-agent/agent/privacy"
)

type fakeSearchProvider struct {
	results []contractx.SearchResult
	err     error
	gotQ    string
}

func (f *fakeSearchProvider) Search(_ context.Context, query string) ([]contractx.SearchResult, error) {
	f.gotQ = query
	return f.results, f.err
}

type testEnv struct {
	registry contractx.Registry
	memory   *memoryx.Service
	store    *memoryx.MemStore
	search   *fakeSearchProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memoryx.NewMemStore()
	engine, err := policyx.New(policyx.DefaultTable(5))
	if err != nil {
		t.Fatalf("policy.New() error = %v", err)
	}
	aggregator, err := privacyx.NewAggregator(store, privacyx.DefaultStatistics(), privacyx.Config{Salt: "test"})
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}
	memoryService, err := memoryx.NewService(store, engine, aggregator, memoryx.ServiceConfig{
		RetryAttempts: 1,
		RetryBackoff:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	accommodations, err := accommodationx.NewService(store)
	if err != nil {
		t.Fatalf("accommodation.NewService() error = %v", err)
	}
	search := &fakeSearchProvider{}
	registry, err := NewRegistry(memoryService, accommodations, search)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return &testEnv{registry: registry, memory: memoryService, store: store, search: search}
}

func handlerReq(role contractx.Role, scope, dept, text string) contractx.HandlerRequest {
	return contractx.HandlerRequest{
		Text:   text,
		Handle: contractx.MintHandle(role, scope, "org-1", dept, "sess-1"),
		Now:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestEmployeeLogsAndViewsSymptoms(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	handler := env.registry.Employee()

	logged, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "engineering", "log a headache severity 6"))
	if err != nil {
		t.Fatalf("Handle(log) error = %v", err)
	}
	if logged.Kind != "symptom_logged" {
		t.Fatalf("kind = %s", logged.Kind)
	}
	entry, ok := logged.Data["entry"].(map[string]any)
	if !ok || entry["symptom"] != "headache" || entry["severity"] != 6 {
		t.Fatalf("unexpected entry: %#v", logged.Data["entry"])
	}

	history, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "engineering", "show my history"))
	if err != nil {
		t.Fatalf("Handle(history) error = %v", err)
	}
	if history.Kind != "symptom_history" {
		t.Fatalf("kind = %s", history.Kind)
	}
	entries, ok := history.Data["entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("unexpected entries: %#v", history.Data["entries"])
	}
}

func TestEmployeeClearsSymptomLog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	handler := env.registry.Employee()

	if _, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "", "log some stress")); err != nil {
		t.Fatalf("Handle(log) error = %v", err)
	}
	cleared, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "", "forget everything you know about my symptoms"))
	if err != nil {
		t.Fatalf("Handle(clear) error = %v", err)
	}
	if cleared.Kind != "symptom_log_cleared" {
		t.Fatalf("kind = %s", cleared.Kind)
	}

	history, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "", "show my history"))
	if err != nil {
		t.Fatalf("Handle(history) error = %v", err)
	}
	if _, ok := history.Data["entries"]; ok {
		t.Fatalf("expected empty history, got %#v", history.Data)
	}
}

func TestEmployeeUpdatesPreferences(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	handler := env.registry.Employee()

	updated, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "", "update my preferences reminder=09:00"))
	if err != nil {
		t.Fatalf("Handle(update) error = %v", err)
	}
	if updated.Kind != "preferences_updated" {
		t.Fatalf("kind = %s", updated.Kind)
	}

	current, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "", "what are my notification preferences"))
	if err != nil {
		t.Fatalf("Handle(show) error = %v", err)
	}
	if current.Kind != "preferences" {
		t.Fatalf("kind = %s", current.Kind)
	}
}

func seedDepartmentSymptoms(t *testing.T, env *testEnv, owners int, dept string) {
	t.Helper()

	ctx := context.Background()
	for i := 0; i < owners; i++ {
		handle := contractx.MintHandle(contractx.RoleEmployee, fmt.Sprintf("u%d", i), "org-1", dept, "sess")
		err := env.memory.RememberList(ctx, handle, contractx.CategorySymptomLog, "entries", map[string]any{
			"date": "2026-03-01", "symptom": "fatigue", "severity": 5,
		})
		if err != nil {
			t.Fatalf("RememberList() error = %v", err)
		}
	}
}

func TestHRTrendsRespectThreshold(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	handler := env.registry.HRManager()

	seedDepartmentSymptoms(t, env, 3, "engineering")

	small, err := handler.Handle(ctx, handlerReq(contractx.RoleHRManager, "org-1", "", "what is the trend in engineering"))
	if err != nil {
		t.Fatalf("Handle(trends) error = %v", err)
	}
	if small.Kind != "insufficient_data" {
		t.Fatalf("kind = %s, want insufficient_data", small.Kind)
	}

	seedDepartmentSymptoms(t, env, 6, "engineering")

	big, err := handler.Handle(ctx, handlerReq(contractx.RoleHRManager, "org-1", "", "what is the trend in engineering"))
	if err != nil {
		t.Fatalf("Handle(trends) error = %v", err)
	}
	if big.Kind != "aggregate_report" {
		t.Fatalf("kind = %s, want aggregate_report", big.Kind)
	}
	if big.Data["contributing_count"].(int) < 5 {
		t.Fatalf("unexpected contributing count: %#v", big.Data)
	}
}

func TestHRLogsPolicyDecision(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	handler := env.registry.HRManager()

	got, err := handler.Handle(context.Background(), handlerReq(contractx.RoleHRManager, "org-1", "", "record a policy decision about flexible fridays"))
	if err != nil {
		t.Fatalf("Handle(policy) error = %v", err)
	}
	if got.Kind != "policy_logged" {
		t.Fatalf("kind = %s", got.Kind)
	}
}

func TestEmployerSeesOrgWideOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	handler := env.registry.Employer()

	seedDepartmentSymptoms(t, env, 6, "engineering")

	got, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployer, "org-1", "", "how is wellness trending across the company"))
	if err != nil {
		t.Fatalf("Handle(trends) error = %v", err)
	}
	if got.Kind != "aggregate_report" {
		t.Fatalf("kind = %s", got.Kind)
	}
	if got.Data["grouping_key"] != "" {
		t.Fatalf("employer report must be org-wide, got grouping %q", got.Data["grouping_key"])
	}
}

func TestLeaveRequestLifecycleThroughHandlers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	handler := env.registry.LeaveRequest()

	submitted, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "engineering", "I need a sick day start=2026-03-10"))
	if err != nil {
		t.Fatalf("Handle(submit) error = %v", err)
	}
	if submitted.Kind != "request_submitted" {
		t.Fatalf("kind = %s", submitted.Kind)
	}
	requestID, _ := submitted.Data["request_id"].(string)
	if requestID == "" {
		t.Fatalf("missing request id: %#v", submitted.Data)
	}

	queue, err := handler.Handle(ctx, handlerReq(contractx.RoleHRManager, "org-1", "", "show the accommodation queue"))
	if err != nil {
		t.Fatalf("Handle(queue) error = %v", err)
	}
	if queue.Kind != "request_list" {
		t.Fatalf("kind = %s", queue.Kind)
	}

	approved, err := handler.Handle(ctx, handlerReq(contractx.RoleHRManager, "org-1", "", "approve "+requestID))
	if err != nil {
		t.Fatalf("Handle(approve) error = %v", err)
	}
	if approved.Kind != "request_transitioned" || approved.Data["status"] != "approved" {
		t.Fatalf("unexpected result: kind=%s data=%#v", approved.Kind, approved.Data)
	}

	status, err := handler.Handle(ctx, handlerReq(contractx.RoleEmployee, "u1", "engineering", "what is the status of "+requestID))
	if err != nil {
		t.Fatalf("Handle(status) error = %v", err)
	}
	if status.Data["status"] != "approved" {
		t.Fatalf("owner sees status %v", status.Data["status"])
	}
}

func TestLeaveRequestDeniedForEmployer(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	handler := env.registry.LeaveRequest()

	_, err := handler.Handle(context.Background(), handlerReq(contractx.RoleEmployer, "org-1", "", "I need time off"))
	if !errors.Is(err, contractx.ErrPrivacyViolation) {
		t.Fatalf("Handle() as employer error = %v", err)
	}
}

func TestSearchHandlerDelegates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.search.results = []contractx.SearchResult{
		{Title: "Desk stretches", URL: "https://example.com/stretch", Snippet: "simple stretches"},
	}
	handler := env.registry.Search()

	got, err := handler.Handle(context.Background(), handlerReq(contractx.RoleEmployee, "u1", "", "search for desk stretches"))
	if err != nil {
		t.Fatalf("Handle(search) error = %v", err)
	}
	if got.Kind != "search_results" {
		t.Fatalf("kind = %s", got.Kind)
	}
	if env.search.gotQ != "desk stretches" {
		t.Fatalf("provider query = %q", env.search.gotQ)
	}
	results, ok := got.Data["results"].([]map[string]any)
	if !ok || len(results) != 1 {
		t.Fatalf("unexpected results: %#v", got.Data["results"])
	}
}

func TestHelpListsRoleCapabilities(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	handler := env.registry.Help()

	for _, role := range []contractx.Role{contractx.RoleEmployee, contractx.RoleHRManager, contractx.RoleEmployer} {
		got, err := handler.Handle(context.Background(), handlerReq(role, "scope", "", "???"))
		if err != nil {
			t.Fatalf("Handle(help) error = %v", err)
		}
		if got.Kind != "help" {
			t.Fatalf("kind = %s", got.Kind)
		}
		caps, ok := got.Data["capabilities"].([]string)
		if !ok || len(caps) == 0 {
			t.Fatalf("missing capabilities for %s: %#v", role, got.Data)
		}
	}
}
