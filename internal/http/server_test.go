package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"orcamento/internal/core"
	"orcamento/internal/dashboard"
	"orcamento/internal/financeapi"
	"orcamento/internal/log"
)

type fakeFinance struct {
	mu        sync.Mutex
	dashboard core.Dashboard
	loadErr   error
	createErr error
	pingErr   error
	created   []core.NewExpense
}

func (f *fakeFinance) FetchDashboard(ctx context.Context) (core.Dashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return core.Dashboard{}, f.loadErr
	}
	return f.dashboard, nil
}

func (f *fakeFinance) CreateExpense(ctx context.Context, e core.NewExpense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeFinance) Ping(ctx context.Context) error { return f.pingErr }

func sampleDashboard() core.Dashboard {
	return core.Dashboard{
		Summary: core.Summary{
			TotalPlanned:   core.Money{Cents: 100000},
			TotalPaid:      core.Money{Cents: 25000},
			TotalRemaining: core.Money{Cents: 75000},
		},
		Expenses: []core.Expense{
			{Paid: true, Description: "Aluguel", Amount: core.Money{Cents: 80000}, DueDay: 5},
			{Description: "Luz", Amount: core.Money{Cents: 20000}, DueDay: 10, Remaining: core.Money{Cents: 15000}},
		},
	}
}

func newTestServer(t *testing.T, f *fakeFinance, pinger Pinger) *Server {
	t.Helper()
	ctrl := dashboard.NewController(f, dashboard.WithLogger(log.Discard()))
	srv, err := NewServer(":0", ctrl, pinger, log.Discard())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, values url.Values, htmx bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return req
}

func TestIndexRendersDashboard(t *testing.T) {
	srv := newTestServer(t, &fakeFinance{dashboard: sampleDashboard()}, nil)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`<html lang="pt-BR">`,
		"R$\u00a01.000,00",
		"R$\u00a0250,00",
		"R$\u00a0750,00",
		"width: 25%",
		"25% do orçamento quitado",
		`<span class="badge paid">Pago</span>`,
		`<span class="badge pending">Pendente</span>`,
		"Dia 5",
		"Dia 10",
		"Reserve pelo menos R$\u00a0750,00",
		"Planejar quitação do cartão",
		`href="#resumo" class="active"`,
		"--scroll-offset: 24px; --scroll-duration: 500ms;",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing security headers")
	}
}

func TestIndexLoadFailure(t *testing.T) {
	srv := newTestServer(t, &fakeFinance{loadErr: errors.New("connection refused")}, nil)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<td colspan="5">Não foi possível carregar as despesas.</td>`) {
		t.Error("missing failure row spanning all columns")
	}
	if !strings.Contains(body, "Não foi possível carregar os dados do orçamento.") {
		t.Error("missing load failure feedback")
	}
	if !strings.Contains(body, "feedback error") {
		t.Error("feedback must carry the error class")
	}
	if strings.Count(body, "<tr>") != 2 {
		t.Errorf("expected header row plus one body row, got %d rows", strings.Count(body, "<tr>"))
	}
}

func TestDashboardPartial(t *testing.T) {
	tests := []struct {
		name    string
		finance *fakeFinance
		wantOOB int
	}{
		{"loaded", &fakeFinance{dashboard: sampleDashboard()}, 4},
		{"failed", &fakeFinance{loadErr: errors.New("boom")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.finance, nil)
			rr := serve(srv, httptest.NewRequest(http.MethodGet, "/ui/dashboard", nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d", rr.Code)
			}
			if got := strings.Count(rr.Body.String(), `hx-swap-oob="true"`); got != tt.wantOOB {
				t.Errorf("oob fragments = %d, want %d", got, tt.wantOOB)
			}
		})
	}
}

func validExpense() url.Values {
	return url.Values{
		"description": {"Internet"},
		"amount":      {"150,5"},
		"dueDay":      {"12"},
		"remaining":   {"150.50"},
	}
}

func TestCreateExpense(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		htmx       bool
		createErr  error
		wantStatus int
		wantBody   []string
		wantPosts  int
	}{
		{
			name:       "invalid htmx",
			values:     url.Values{"description": {"  "}, "amount": {"10"}, "dueDay": {"1"}},
			htmx:       true,
			wantStatus: http.StatusOK,
			wantBody:   []string{core.MsgDescriptionRequired},
		},
		{
			name:       "invalid plain",
			values:     url.Values{"description": {"Luz"}, "amount": {"10"}, "dueDay": {"32"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   []string{core.MsgInvalidDueDay, `value="Luz"`},
		},
		{
			name:       "accepted",
			values:     validExpense(),
			htmx:       true,
			wantStatus: http.StatusOK,
			wantBody:   []string{`name="description" type="text" value=""`, "Dia 5"},
			wantPosts:  1,
		},
		{
			name:       "rejected",
			values:     validExpense(),
			createErr:  &financeapi.APIError{StatusCode: http.StatusBadRequest, Message: "Descrição duplicada"},
			wantStatus: http.StatusBadGateway,
			wantBody:   []string{"Descrição duplicada", `value="Internet"`},
		},
		{
			name:       "transport failure",
			values:     validExpense(),
			htmx:       true,
			createErr:  errors.New("connection refused"),
			wantStatus: http.StatusOK,
			wantBody:   []string{dashboard.MsgCreateFailed, `value="Internet"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFinance{dashboard: sampleDashboard(), createErr: tt.createErr}
			srv := newTestServer(t, f, nil)

			rr := serve(srv, postForm("/ui/expenses", tt.values, tt.htmx))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantStatus)
			}
			body := rr.Body.String()
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			if len(f.created) != tt.wantPosts {
				t.Errorf("posts = %d, want %d", len(f.created), tt.wantPosts)
			}
		})
	}
}

func TestCreateExpenseAcceptedPayloadAndTriggers(t *testing.T) {
	f := &fakeFinance{dashboard: sampleDashboard()}
	srv := newTestServer(t, f, nil)

	rr := serve(srv, postForm("/ui/expenses", validExpense(), true))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if len(f.created) != 1 {
		t.Fatalf("posts = %d, want 1", len(f.created))
	}
	got := f.created[0]
	want := core.NewExpense{Description: "Internet", Amount: core.Money{Cents: 15050}, DueDay: 12, Remaining: core.Money{Cents: 15050}}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}

	trigger := rr.Header().Get("HX-Trigger")
	for _, name := range []string{"expense:created", "form:reset", "show-notification"} {
		if !strings.Contains(trigger, name) {
			t.Errorf("HX-Trigger %q missing %q", trigger, name)
		}
	}
	if !strings.Contains(trigger, dashboard.MsgCreated) {
		t.Errorf("HX-Trigger %q missing the success message", trigger)
	}
	// the reload clears the status line; the toast carries the success
	if !strings.Contains(rr.Body.String(), `class="feedback" role="status" aria-live="polite" hx-swap-oob="true"></p>`) {
		t.Errorf("status line not cleared after reload:\n%s", rr.Body.String())
	}
	// form in place plus summary, table, goals and status line out of band
	if n := strings.Count(rr.Body.String(), `hx-swap-oob="true"`); n != 4 {
		t.Errorf("oob fragments = %d, want 4", n)
	}
}

func TestCreateExpensePaidSendsZeroRemaining(t *testing.T) {
	f := &fakeFinance{dashboard: sampleDashboard()}
	srv := newTestServer(t, f, nil)

	values := validExpense()
	values.Set("paid", "on")
	values.Set("remaining", "99")
	serve(srv, postForm("/ui/expenses", values, true))

	if len(f.created) != 1 {
		t.Fatalf("posts = %d, want 1", len(f.created))
	}
	if !f.created[0].Paid || f.created[0].Remaining.Cents != 0 {
		t.Errorf("paid expense payload = %+v", f.created[0])
	}
}

func TestCreateExpenseJSON(t *testing.T) {
	f := &fakeFinance{dashboard: sampleDashboard()}
	srv := newTestServer(t, f, nil)

	req := httptest.NewRequest(http.MethodPost, "/ui/expenses",
		strings.NewReader(`{"description":"Água","amount":80,"dueDay":15,"paid":false,"remaining":"80"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := serve(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp submissionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Outcome != core.OutcomeAccepted || resp.Message != dashboard.MsgCreated {
		t.Errorf("response = %+v", resp)
	}
	if len(f.created) != 1 || f.created[0].Amount.Cents != 8000 {
		t.Errorf("created = %+v", f.created)
	}
}

func TestCreateExpenseMalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeFinance{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/ui/expenses", strings.NewReader(`{"description":`))
	req.Header.Set("Content-Type", "application/json")
	if rr := serve(srv, req); rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestFormEvents(t *testing.T) {
	tests := []struct {
		name       string
		event      string
		values     url.Values
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "paid locks remaining",
			event:      "paid",
			values:     url.Values{"amount": {"150"}, "paid": {"on"}, "remaining": {"20"}},
			wantStatus: http.StatusOK,
			wantBody:   []string{`value="0.00" disabled`, `type="hidden" name="remaining" value="0.00"`},
		},
		{
			name:       "unpaid fills empty remaining",
			event:      "paid",
			values:     url.Values{"amount": {"150,5"}},
			wantStatus: http.StatusOK,
			wantBody:   []string{`value="150.50">`},
		},
		{
			name:       "amount follows while unpaid",
			event:      "amount",
			values:     url.Values{"amount": {" 1 200,5 "}, "remaining": {"3"}},
			wantStatus: http.StatusOK,
			wantBody:   []string{`value="1200.50">`},
		},
		{
			name:       "amount ignored while paid",
			event:      "amount",
			values:     url.Values{"amount": {"99"}, "paid": {"on"}, "remaining": {"0.00"}},
			wantStatus: http.StatusOK,
			wantBody:   []string{`value="0.00" disabled`},
		},
		{
			name:       "unknown event",
			event:      "blur",
			values:     url.Values{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeFinance{}, nil)
			rr := serve(srv, postForm("/ui/form?event="+tt.event, tt.values, true))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantStatus)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(rr.Body.String(), want) {
					t.Errorf("body %q missing %q", rr.Body.String(), want)
				}
			}
		})
	}
}

func TestNav(t *testing.T) {
	tests := []struct {
		active string
		want   string
	}{
		{"#metas", `href="#metas" class="active"`},
		{"#cadastro", `href="#cadastro" class="active"`},
		{"#unknown", `href="#resumo" class="active"`},
	}

	for _, tt := range tests {
		t.Run(tt.active, func(t *testing.T) {
			srv := newTestServer(t, &fakeFinance{}, nil)
			rr := serve(srv, httptest.NewRequest(http.MethodGet, dashboard.NavPath+"?active="+url.QueryEscape(tt.active), nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
			if n := strings.Count(body, `class="active"`); n != 1 {
				t.Errorf("active links = %d, want 1", n)
			}
		})
	}
}

func TestHealthAndReady(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pinger     Pinger
		wantStatus int
	}{
		{"health", "/healthz", nil, http.StatusOK},
		{"ready without pinger", "/readyz", nil, http.StatusOK},
		{"ready", "/readyz", &fakeFinance{}, http.StatusOK},
		{"not ready", "/readyz", &fakeFinance{pingErr: errors.New("down")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeFinance{}, tt.pinger)
			rr := serve(srv, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status"] == nil {
				t.Error("missing status field")
			}
		})
	}
}

func TestMethodsAndNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeFinance{}, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/ui/expenses", http.StatusMethodNotAllowed},
		{http.MethodGet, "/ui/form?event=paid", http.StatusMethodNotAllowed},
		{http.MethodPost, "/", http.StatusMethodNotAllowed},
		{http.MethodPost, "/ui/dashboard", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := serve(srv, httptest.NewRequest(tt.method, tt.path, nil))
		if rr.Code != tt.want {
			t.Errorf("%s %s status=%d, want %d", tt.method, tt.path, rr.Code, tt.want)
		}
	}
}

func TestDescriptionsAreEscaped(t *testing.T) {
	d := sampleDashboard()
	d.Expenses[0].Description = `<script>alert(1)</script>`
	srv := newTestServer(t, &fakeFinance{dashboard: d}, nil)

	body := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	if strings.Contains(body, "<script>alert(1)") {
		t.Fatal("expense description rendered unescaped")
	}
	if !strings.Contains(body, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Error("escaped description missing")
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &fakeFinance{}, nil)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}
	if !strings.Contains(rr.Body.String(), "scroll-margin-top: 24px") {
		t.Error("stylesheet missing section scroll offset")
	}
}

func TestRateLimitOnPost(t *testing.T) {
	srv := newTestServer(t, &fakeFinance{}, nil)

	values := url.Values{"amount": {"10"}}
	var last int
	for i := 0; i < 61; i++ {
		req := postForm("/ui/form?event=amount", values, true)
		req.RemoteAddr = "203.0.113.7:4000"
		last = serve(srv, req).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("61st POST status=%d, want 429", last)
	}

	// reads are never limited
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "203.0.113.7:4000"
	if rr := serve(srv, req); rr.Code != http.StatusOK {
		t.Errorf("GET after limit status=%d", rr.Code)
	}
}

func TestMetricsCountSubmissions(t *testing.T) {
	srv := newTestServer(t, &fakeFinance{dashboard: sampleDashboard()}, nil)

	serve(srv, postForm("/ui/expenses", validExpense(), true))
	serve(srv, postForm("/ui/expenses", url.Values{}, true))

	body := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Body.String()
	for _, want := range []string{
		`expense_submissions_total{outcome="accepted"} 1`,
		`expense_submissions_total{outcome="invalid"} 1`,
		"http_requests_total 3",
		`http_responses_total{class="2xx"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct", "203.0.113.1:5000", "", "", "203.0.113.1"},
		{"untrusted peer ignores XFF", "203.0.113.1:5000", "198.51.100.9", "", "203.0.113.1"},
		{"trusted proxy XFF", "10.0.0.2:5000", "198.51.100.9, 10.0.0.2", "", "198.51.100.9"},
		{"trusted proxy X-Real-IP", "127.0.0.1:5000", "", "198.51.100.10", "198.51.100.10"},
		{"garbage XFF", "10.0.0.2:5000", "not-an-ip", "", "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
