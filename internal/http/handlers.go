package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"orcamento/internal/core"
	"orcamento/internal/dashboard"
	"orcamento/internal/log"
)

// handleIndex renders the full dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Página não encontrada").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	view := s.dash.Load(r.Context())
	body, err := s.renderer.Page(view)
	if err != nil {
		s.renderFailed(w, r, "page", err)
		return
	}
	NewHTMXResponse().HTML(body).Write(w)
}

// handleDashboard reloads the summary, table, goals and status line.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	view := s.dash.Load(r.Context())
	body, err := s.renderer.Sections(view)
	if err != nil {
		s.renderFailed(w, r, "sections", err)
		return
	}
	NewHTMXResponse().HTML(body).Write(w)
}

// submissionResponse is the JSON answer for non-htmx clients.
type submissionResponse struct {
	Outcome core.Outcome `json:"outcome"`
	Message string       `json:"message"`
	Field   string       `json:"field,omitempty"`
}

// handleCreateExpense validates and submits the expense form.
//
// htmx only swaps 2xx responses, so htmx requests always get 200 and the
// outcome travels in the status line. Other clients get 422 for invalid
// input and 502 when the budget API refused or failed.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Expense request body rejected",
			log.FieldError, err.Error(), log.FieldPath, r.URL.Path)
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	res := s.dash.Submit(r.Context(), dashboard.FormFromValues(p.Get))
	s.appMetrics.count(res.Outcome)

	status := http.StatusOK
	if !isHTMX(r) {
		switch res.Outcome {
		case core.OutcomeInvalid:
			status = http.StatusUnprocessableEntity
		case core.OutcomeRejected, core.OutcomeFailed:
			status = http.StatusBadGateway
		}
	}

	if p.IsJSON() && !isHTMX(r) {
		writeJSON(w, status, submissionResponse{
			Outcome: res.Outcome,
			Message: res.Feedback.Message,
			Field:   res.Field,
		})
		return
	}

	body, err := s.renderer.Submission(res)
	if err != nil {
		s.renderFailed(w, r, "submission", err)
		return
	}

	resp := NewHTMXResponse().Status(status).HTML(body)
	switch res.Outcome {
	case core.OutcomeAccepted:
		resp.TriggerExpenseCreated(res.Expense).
			TriggerFormReset().
			TriggerFeedback(res.Feedback)
	case core.OutcomeRejected, core.OutcomeFailed:
		resp.TriggerFeedback(res.Feedback)
	}
	resp.Write(w)
}

// handleFormEvent applies a paid toggle or an amount change and returns the
// remaining amount field.
func (s *Server) handleFormEvent(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	form := dashboard.FormFromValues(p.Get)

	switch r.URL.Query().Get("event") {
	case "paid":
		form = form.TogglePaid(form.Paid)
	case "amount":
		form = form.InputAmount(form.Amount)
	default:
		BadRequestError("Evento desconhecido").Write(w)
		return
	}

	body, err := s.renderer.RemainingField(form)
	if err != nil {
		s.renderFailed(w, r, "remaining_field", err)
		return
	}
	NewHTMXResponse().HTML(body).Write(w)
}

// handleNav marks the clicked link active; htmx scrolls to its section.
func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	nav := dashboard.NewNav().Activate(r.URL.Query().Get("active"))
	body, err := s.renderer.Nav(nav)
	if err != nil {
		s.renderFailed(w, r, "nav", err)
		return
	}
	NewHTMXResponse().HTML(body).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks that the budget API answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{"templates": "ok"}

	if s.pinger == nil {
		checks["finance_api"] = "not_configured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			checks["finance_api"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["finance_api"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides request and submission counters in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", s.traceMiddleware.Total())

	fmt.Fprintf(w, "# HELP http_responses_total HTTP responses by status class\n")
	fmt.Fprintf(w, "# TYPE http_responses_total counter\n")
	for class := 2; class <= 5; class++ {
		fmt.Fprintf(w, "http_responses_total{class=\"%dxx\"} %d\n", class, s.traceMiddleware.Responses(class))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP expense_submissions_total Expense submissions by outcome\n")
	fmt.Fprintf(w, "# TYPE expense_submissions_total counter\n")
	fmt.Fprintf(w, "expense_submissions_total{outcome=\"accepted\"} %d\n", atomic.LoadInt64(&s.appMetrics.accepted))
	fmt.Fprintf(w, "expense_submissions_total{outcome=\"rejected\"} %d\n", atomic.LoadInt64(&s.appMetrics.rejected))
	fmt.Fprintf(w, "expense_submissions_total{outcome=\"failed\"} %d\n", atomic.LoadInt64(&s.appMetrics.failed))
	fmt.Fprintf(w, "expense_submissions_total{outcome=\"invalid\"} %d\n\n", atomic.LoadInt64(&s.appMetrics.invalid))

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", s.rateLimiter.Hits())

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.ActiveClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.appMetrics.uptime).Seconds())
}

// handleRateLimited answers a POST over the per-client limit.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, extractClientIP(r),
		log.FieldPath, r.URL.Path)
	TooManyRequestsError("Muitas requisições. Tente novamente em instantes.", "60").Write(w)
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
		"template", name,
		log.FieldOperation, log.OpRender,
		log.FieldError, err.Error())
	InternalServerError("Erro ao montar a página").Write(w)
}
