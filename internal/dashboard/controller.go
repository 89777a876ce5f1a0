// Package dashboard turns budget API data into the dashboard view and runs
// the expense form: validation, submission and the reload that follows.
package dashboard

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"orcamento/internal/core"
	"orcamento/internal/financeapi"
	"orcamento/internal/log"
)

// FinanceClient is the part of the budget API the dashboard needs.
type FinanceClient interface {
	FetchDashboard(ctx context.Context) (core.Dashboard, error)
	CreateExpense(ctx context.Context, e core.NewExpense) error
}

// Notifier is told about every expense the API accepted.
type Notifier interface {
	ExpenseCreated(ctx context.Context, e core.NewExpense, at time.Time) error
}

// Recorder keeps the submission journal.
type Recorder interface {
	Record(ctx context.Context, s core.Submission) error
}

// SubmitResult is what the page shows after a submission.
type SubmitResult struct {
	Outcome  core.Outcome
	Form     FormState
	Feedback Feedback
	// Field names the invalid input when Outcome is OutcomeInvalid.
	Field string
	// Expense is the payload that was sent; zero for invalid forms.
	Expense core.NewExpense
	// Reload is the freshly loaded dashboard after an accepted expense.
	Reload *View
}

// Controller loads the dashboard and submits new expenses. It holds no
// dashboard data between calls.
type Controller struct {
	client   FinanceClient
	notifier Notifier
	recorder Recorder
	logger   *log.Logger
	slog     *log.StructuredLogger
	now      func() time.Time
	loads    singleflight.Group
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier publishes accepted expenses.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithRecorder journals every submission that reached the API.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController wires the dashboard to a budget API client.
func NewController(client FinanceClient, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		logger: log.New(log.DefaultConfig()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentDashboard)
	c.slog = log.NewStructuredLogger(c.logger)
	return c
}

// Load fetches the dashboard. Loads running at the same time share one
// upstream request; nothing is kept once it returns.
func (c *Controller) Load(ctx context.Context) View {
	v, err, shared := c.loads.Do("dashboard", func() (any, error) {
		return c.client.FetchDashboard(context.WithoutCancel(ctx))
	})
	if err != nil {
		c.slog.LogError(ctx, "Dashboard load failed", err, log.ComponentDashboard, log.OpLoad,
			log.NewFields().WithErrorType(errorType(err)))
		return FailedView()
	}
	d := v.(core.Dashboard)
	c.logger.DebugContext(ctx, "Dashboard loaded", log.FieldExpenses, len(d.Expenses), "shared", shared)
	return NewView(d)
}

// reload bypasses the load group so that a load started before the POST
// cannot answer for it.
func (c *Controller) reload(ctx context.Context) View {
	d, err := c.client.FetchDashboard(ctx)
	if err != nil {
		c.slog.LogError(ctx, "Dashboard reload failed", err, log.ComponentDashboard, log.OpLoad,
			log.NewFields().WithErrorType(errorType(err)))
		return FailedView()
	}
	return NewView(d)
}

// Submit validates the form and, when valid, posts it to the budget API.
//
// A local validation failure never reaches the network. A rejected or failed
// POST keeps the form as typed. An accepted expense resets the form and
// reloads the dashboard. The reloaded view has a cleared status line, so the
// success message lives only in the result; if the reload fails its error
// replaces it.
func (c *Controller) Submit(ctx context.Context, form FormState) SubmitResult {
	expense, err := form.Expense().Validate()
	if err != nil {
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			return SubmitResult{Outcome: core.OutcomeInvalid, Form: form, Feedback: Failure(MsgCreateFailed)}
		}
		c.logger.DebugContext(ctx, "Expense form invalid", log.FieldField, ve.Field, log.FieldOperation, log.OpValidate)
		return SubmitResult{Outcome: core.OutcomeInvalid, Form: form, Feedback: Failure(ve.Message), Field: ve.Field}
	}

	err = c.client.CreateExpense(ctx, expense)
	if err != nil {
		outcome, msg := classify(err)
		c.slog.LogSubmission(ctx, string(outcome), expense.Description, expense.Amount.Cents, expense.DueDay, expense.Paid, err)
		c.record(ctx, expense, outcome, msg)
		return SubmitResult{Outcome: outcome, Form: form, Feedback: Failure(msg), Expense: expense}
	}

	c.slog.LogSubmission(ctx, string(core.OutcomeAccepted), expense.Description, expense.Amount.Cents, expense.DueDay, expense.Paid, nil)
	c.record(ctx, expense, core.OutcomeAccepted, MsgCreated)
	c.notify(ctx, expense)

	view := c.reload(ctx)
	fb := Success(MsgCreated)
	if !view.Loaded {
		fb = view.Feedback
	}
	return SubmitResult{
		Outcome:  core.OutcomeAccepted,
		Form:     form.Reset(),
		Feedback: fb,
		Expense:  expense,
		Reload:   &view,
	}
}

// classify maps a CreateExpense error to an outcome and the message to show.
func classify(err error) (core.Outcome, string) {
	var apiErr *financeapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return core.OutcomeRejected, apiErr.Message
		}
		return core.OutcomeRejected, MsgCreateFailed
	}
	return core.OutcomeFailed, MsgCreateFailed
}

// errorType tells an answer we could not use from no answer at all.
func errorType(err error) string {
	var apiErr *financeapi.APIError
	if errors.As(err, &apiErr) || errors.Is(err, financeapi.ErrUnexpectedStatus) {
		return log.ErrorTypeUpstream
	}
	return log.ErrorTypeNetwork
}

func (c *Controller) record(ctx context.Context, e core.NewExpense, outcome core.Outcome, msg string) {
	if c.recorder == nil {
		return
	}
	s := core.Submission{Expense: e, Outcome: outcome, Message: msg, CreatedAt: c.now()}
	if err := c.recorder.Record(context.WithoutCancel(ctx), s); err != nil {
		c.slog.LogError(ctx, "Journal record failed", err, log.ComponentJournal, log.OpRecord,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
	}
}

func (c *Controller) notify(ctx context.Context, e core.NewExpense) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.ExpenseCreated(context.WithoutCancel(ctx), e, c.now()); err != nil {
		c.slog.LogError(ctx, "Expense event publish failed", err, log.ComponentEvents, log.OpPublish, nil)
	}
}
