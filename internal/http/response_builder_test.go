package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orcamento/internal/core"
	"orcamento/internal/dashboard"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]map[string]any {
	t.Helper()
	var triggers map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	return triggers
}

func TestHTMXResponse_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().HTML([]byte("<p>ok</p>")).Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger must be absent without triggers")
	}
}

func TestHTMXResponse_ExpenseCreated(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerExpenseCreated(core.NewExpense{Description: "Aluguel", Amount: core.Money{Cents: 123456}, DueDay: 5}).
		TriggerFormReset().
		TriggerFeedback(dashboard.Success(dashboard.MsgCreated)).
		Write(w)

	triggers := decodeTriggers(t, w)
	for _, name := range []string{EventExpenseCreated, EventFormReset, EventNotification} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}

	created := triggers[EventExpenseCreated]
	if created["description"] != "Aluguel" {
		t.Errorf("description = %v", created["description"])
	}
	if created["amount"] != "R$ 1.234,56" {
		t.Errorf("amount = %v", created["amount"])
	}
	if created["dueDay"] != float64(5) {
		t.Errorf("dueDay = %v", created["dueDay"])
	}

	note := triggers[EventNotification]
	if note["type"] != "success" || note["message"] != dashboard.MsgCreated || note["duration"] != float64(successNotificationMs) {
		t.Errorf("notification = %v", note)
	}
}

func TestHTMXResponse_TriggerFeedback(t *testing.T) {
	tests := []struct {
		name         string
		feedback     dashboard.Feedback
		wantTrigger  bool
		wantType     string
		wantDuration float64
	}{
		{"success", dashboard.Success("ok"), true, "success", successNotificationMs},
		{"error", dashboard.Failure("falhou"), true, "error", errorNotificationMs},
		{"cleared", dashboard.Feedback{}, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHTMXResponse().TriggerFeedback(tt.feedback).Write(w)

			if !tt.wantTrigger {
				if h := w.Header().Get("HX-Trigger"); h != "" {
					t.Fatalf("HX-Trigger = %q, want none", h)
				}
				return
			}
			note := decodeTriggers(t, w)[EventNotification]
			if note["type"] != tt.wantType {
				t.Errorf("type = %v, want %s", note["type"], tt.wantType)
			}
			if note["duration"] != tt.wantDuration {
				t.Errorf("duration = %v, want %v", note["duration"], tt.wantDuration)
			}
		})
	}
}

func TestHTMXResponse_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponse
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Formato inválido"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<p class="feedback error" role="alert">Formato inválido</p>`,
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("Erro ao montar a página"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<p class="feedback error" role="alert">Erro ao montar a página</p>`,
		},
		{
			name:       "not found",
			builder:    NotFoundError("Página não encontrada"),
			wantStatus: http.StatusNotFound,
			wantBody:   `<p class="feedback error" role="alert">Página não encontrada</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}

func TestTooManyRequestsError(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequestsError("Devagar", "60").Write(w)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()

	MethodNotAllowedError("GET, HEAD").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if w.Header().Get("Allow") != "GET, HEAD" {
		t.Errorf("Allow header = %q, want %q", w.Header().Get("Allow"), "GET, HEAD")
	}
}
