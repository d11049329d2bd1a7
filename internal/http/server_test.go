package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spendwise/internal/identity"
	"spendwise/internal/services"
	"spendwise/internal/store/memory"
	"spendwise/internal/stream"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := memory.New()
	hub := stream.NewHub()
	accounts := services.NewAccountService(identity.NewMemoryProvider(), st)
	expenses := services.NewExpenseService(st, hub, nil)
	budgets := services.NewBudgetService(st, hub, nil)
	dashboards := services.NewDashboardService(st, hub, budgets)

	srv := NewServer(Options{
		Addr:       ":0",
		Accounts:   accounts,
		Expenses:   expenses,
		Budgets:    budgets,
		Dashboards: dashboards,
	})
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url, token string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if out != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp
}

func signUp(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/auth/signup", "", credentialsRequest{
		Email:       email,
		Password:    "secret1",
		DisplayName: "Test User",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	var sess sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("empty token")
	}
	return sess.Token
}

func TestSignUpAndSignIn(t *testing.T) {
	ts := newTestServer(t)
	signUp(t, ts, "a@example.com")

	resp := postJSON(t, ts.URL+"/api/auth/login", "", credentialsRequest{
		Email:    "a@example.com",
		Password: "secret1",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	bad := postJSON(t, ts.URL+"/api/auth/login", "", credentialsRequest{
		Email:    "a@example.com",
		Password: "wrong",
	})
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", bad.StatusCode)
	}
}

func TestDuplicateSignUp(t *testing.T) {
	ts := newTestServer(t)
	signUp(t, ts, "a@example.com")

	resp := postJSON(t, ts.URL+"/api/auth/signup", "", credentialsRequest{
		Email:    "a@example.com",
		Password: "secret1",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/expenses", "/api/budget", "/api/dashboard", "/api/me"} {
		resp := getJSON(t, ts.URL+path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", path, resp.StatusCode)
		}
	}

	resp := getJSON(t, ts.URL+"/api/expenses", "bogus-token", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bogus token status = %d, want 401", resp.StatusCode)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	resp := postJSON(t, ts.URL+"/api/expenses", token, map[string]any{
		"amount":      42.50,
		"category":    "Food",
		"description": "groceries",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created expensePayload
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Amount != 42.50 || created.Category != "Food" {
		t.Fatalf("created = %+v", created)
	}
	if created.Date == 0 {
		t.Fatal("date not defaulted")
	}

	var listed []expensePayload
	getJSON(t, ts.URL+"/api/expenses", token, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}
}

func TestExpenseValidationRejected(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	cases := []map[string]any{
		{"amount": -5, "category": "Food"},
		{"amount": 10, "category": ""},
		{"category": "Food"},
		{"amount": 0, "category": "Food"},
		{"amount": "abc", "category": "Food"},
	}
	for _, c := range cases {
		resp := postJSON(t, ts.URL+"/api/expenses", token, c)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("%+v status = %d, want 422", c, resp.StatusCode)
		}
	}

	var listed []expensePayload
	getJSON(t, ts.URL+"/api/expenses", token, &listed)
	if len(listed) != 0 {
		t.Fatalf("rejected expenses reached the store: %+v", listed)
	}
}

func TestExpenseStringAmountAccepted(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	resp := postJSON(t, ts.URL+"/api/expenses", token, map[string]any{
		"amount": "12,34", "category": "Food",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created expensePayload
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if created.Amount != 12.34 {
		t.Fatalf("amount = %v, want 12.34", created.Amount)
	}
}

func TestExpenseIsolationBetweenUsers(t *testing.T) {
	ts := newTestServer(t)
	tokenA := signUp(t, ts, "a@example.com")
	tokenB := signUp(t, ts, "b@example.com")

	resp := postJSON(t, ts.URL+"/api/expenses", tokenA, map[string]any{
		"amount": 10, "category": "Food",
	})
	resp.Body.Close()

	var listed []expensePayload
	getJSON(t, ts.URL+"/api/expenses", tokenB, &listed)
	if len(listed) != 0 {
		t.Fatalf("user B sees %d foreign expenses", len(listed))
	}
}

func TestBudgetAndDashboard(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	put, err := http.NewRequest(http.MethodPut, ts.URL+"/api/budget",
		strings.NewReader(`{"amount":100,"period":"monthly"}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	put.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(put)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put budget status = %d", resp.StatusCode)
	}

	created := postJSON(t, ts.URL+"/api/expenses", token, map[string]any{
		"amount": 42.50, "category": "Food",
	})
	created.Body.Close()

	var dashboard dashboardPayload
	getJSON(t, ts.URL+"/api/dashboard", token, &dashboard)
	if dashboard.Summary.Total != 42.50 {
		t.Errorf("total = %v, want 42.50", dashboard.Summary.Total)
	}
	if dashboard.Summary.ByCategory["Food"] != 42.50 {
		t.Errorf("Food = %v, want 42.50", dashboard.Summary.ByCategory["Food"])
	}
	if dashboard.Budget.Remaining != 57.50 {
		t.Errorf("remaining = %v, want 57.50", dashboard.Budget.Remaining)
	}
	if dashboard.Budget.Utilization != 0.425 {
		t.Errorf("utilization = %v, want 0.425", dashboard.Budget.Utilization)
	}
	if dashboard.Summary.Colors["Food"] == "" {
		t.Error("no color assigned to category")
	}
}

func TestCategories(t *testing.T) {
	ts := newTestServer(t)

	var categories []categoryPayload
	getJSON(t, ts.URL+"/api/categories", "", &categories)
	if len(categories) == 0 {
		t.Fatal("no categories")
	}
	for _, c := range categories {
		if c.Name == "" || !strings.HasPrefix(c.Color, "#") {
			t.Errorf("bad category entry %+v", c)
		}
	}
}

func TestDashboardChart(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	// No expenses yet: nothing to draw.
	resp := getJSON(t, ts.URL+"/api/dashboard/chart.png", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("empty chart status = %d, want 204", resp.StatusCode)
	}

	created := postJSON(t, ts.URL+"/api/expenses", token, map[string]any{
		"amount": 10, "category": "Food",
	})
	created.Body.Close()

	resp = getJSON(t, ts.URL+"/api/dashboard/chart.png", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chart status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestDashboardStream(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/dashboard/stream?token="+token, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	event := readSSEEvent(t, reader)
	var initial dashboardPayload
	if err := json.Unmarshal([]byte(event), &initial); err != nil {
		t.Fatalf("decode initial event: %v", err)
	}

	created := postJSON(t, ts.URL+"/api/expenses", token, map[string]any{
		"amount": 42.50, "category": "Food",
	})
	created.Body.Close()

	event = readSSEEvent(t, reader)
	var next dashboardPayload
	if err := json.Unmarshal([]byte(event), &next); err != nil {
		t.Fatalf("decode update event: %v", err)
	}
	if next.Version <= initial.Version {
		t.Fatalf("version did not advance: %d -> %d", initial.Version, next.Version)
	}
	if next.Summary.Total != 42.50 {
		t.Fatalf("streamed total = %v, want 42.50", next.Summary.Total)
	}
}

// readSSEEvent reads lines until a data: line followed by a blank line.
func readSSEEvent(t *testing.T, reader *bufio.Reader) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var data string
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
		}
		if line == "" && data != "" {
			return data
		}
	}
	t.Fatal("no event before deadline")
	return ""
}

func TestProfileUpdate(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/me",
		strings.NewReader(`{"displayName":"New Name"}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}

	var me profilePayload
	getJSON(t, ts.URL+"/api/me", token, &me)
	if me.DisplayName != "New Name" {
		t.Fatalf("display name = %q, want updated", me.DisplayName)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "a@example.com")

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/expenses", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get /healthz: %v", err)
	}
	resp.Body.Close()

	var metrics map[string]int64
	resp = getJSON(t, ts.URL+"/metricsz", "", &metrics)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metricsz status = %d", resp.StatusCode)
	}
	// The middleware counts a request before it is handled, so the
	// metrics request itself is included.
	if metrics["totalRequests"] < 2 {
		t.Fatalf("totalRequests = %d, want at least 2", metrics["totalRequests"])
	}
}
