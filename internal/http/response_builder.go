// Package http serves the budget dashboard.
//
// Responses are assembled with HTMXResponse: a status, an optional HTML
// body and the HX-Trigger events the page listens to (expense:created,
// form:reset and show-notification).
package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"orcamento/internal/core"
	"orcamento/internal/dashboard"
)

// Events dispatched on the page through HX-Trigger.
const (
	EventExpenseCreated = "expense:created"
	EventFormReset      = "form:reset"
	EventNotification   = "show-notification"
)

// How long the page keeps a notification on screen, in milliseconds.
const (
	successNotificationMs = 3000
	errorNotificationMs   = 5000
)

// HTMXResponse is a response under construction. Methods chain and the
// response is sent once with Write.
type HTMXResponse struct {
	status   int
	header   http.Header
	triggers map[string]any
	body     []byte
}

// NewHTMXResponse starts an empty 200 response.
func NewHTMXResponse() *HTMXResponse {
	return &HTMXResponse{
		status:   http.StatusOK,
		header:   make(http.Header),
		triggers: make(map[string]any),
	}
}

func (b *HTMXResponse) Status(code int) *HTMXResponse {
	b.status = code
	return b
}

func (b *HTMXResponse) Header(name, value string) *HTMXResponse {
	b.header.Set(name, value)
	return b
}

// HTML sets an already rendered HTML body.
func (b *HTMXResponse) HTML(body []byte) *HTMXResponse {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = body
	return b
}

// Trigger adds an HX-Trigger event. A later call with the same name
// replaces the payload.
func (b *HTMXResponse) Trigger(name string, payload any) *HTMXResponse {
	b.triggers[name] = payload
	return b
}

// TriggerExpenseCreated announces an expense the budget API accepted.
func (b *HTMXResponse) TriggerExpenseCreated(e core.NewExpense) *HTMXResponse {
	return b.Trigger(EventExpenseCreated, map[string]any{
		"description": e.Description,
		"amount":      core.FormatBRL(e.Amount),
		"dueDay":      e.DueDay,
	})
}

// TriggerFormReset tells the page the form was emptied.
func (b *HTMXResponse) TriggerFormReset() *HTMXResponse {
	return b.Trigger(EventFormReset, struct{}{})
}

// TriggerFeedback mirrors the status line as a toast. A cleared line adds
// nothing.
func (b *HTMXResponse) TriggerFeedback(f dashboard.Feedback) *HTMXResponse {
	if f.Empty() {
		return b
	}
	duration := errorNotificationMs
	if f.Kind == dashboard.FeedbackSuccess {
		duration = successNotificationMs
	}
	return b.Trigger(EventNotification, map[string]any{
		"type":     f.Class(),
		"message":  f.Message,
		"duration": duration,
	})
}

// Write sends the response. Headers must not have been written yet.
func (b *HTMXResponse) Write(w http.ResponseWriter) {
	for name, values := range b.header {
		w.Header()[name] = values
	}
	if len(b.triggers) > 0 {
		if data, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(data))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse answers with an escaped error line styled like the form
// feedback.
func ErrorResponse(status int, message string) *HTMXResponse {
	return NewHTMXResponse().
		Status(status).
		HTML([]byte(`<p class="feedback error" role="alert">` + template.HTMLEscapeString(message) + `</p>`))
}

func BadRequestError(message string) *HTMXResponse {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *HTMXResponse {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponse {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// TooManyRequestsError asks the client to retry after retryAfter seconds.
func TooManyRequestsError(message, retryAfter string) *HTMXResponse {
	return ErrorResponse(http.StatusTooManyRequests, message).Header("Retry-After", retryAfter)
}

// MethodNotAllowedError lists the accepted methods in the Allow header.
func MethodNotAllowedError(allowed string) *HTMXResponse {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowed)
}
