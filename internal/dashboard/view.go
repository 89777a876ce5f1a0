package dashboard

import (
	"strconv"

	"orcamento/internal/core"
)

// Columns is the number of columns of the expense table.
const Columns = 5

// SummaryView holds the formatted totals and the progress bar.
type SummaryView struct {
	Planned       string
	Paid          string
	Remaining     string
	Progress      float64
	ProgressWidth string
	ProgressLabel string
}

// ExpenseRow is one formatted table row.
type ExpenseRow struct {
	Paid        bool
	Description string
	Amount      string
	DueDay      string
	Remaining   string
}

// Badge is the status text of the row.
func (r ExpenseRow) Badge() string {
	if r.Paid {
		return "Pago"
	}
	return "Pendente"
}

// BadgeClass is the CSS class of the status badge.
func (r ExpenseRow) BadgeClass() string {
	if r.Paid {
		return "paid"
	}
	return "pending"
}

// View is everything the dashboard page shows. It is built once per load
// and rendered as a whole or as out-of-band fragments.
type View struct {
	// Loaded is false when the budget API could not be read; only the table
	// and the status line carry the failure then.
	Loaded   bool
	Summary  SummaryView
	Rows     []ExpenseRow
	Goals    []core.Goal
	Feedback Feedback
	Form     FormState
	Nav      Nav
	// Count is the number of expense rows returned by the API.
	Count int
}

// NewView formats a dashboard payload. The status line is cleared.
func NewView(d core.Dashboard) View {
	rows := NewRows(d.Expenses)
	return View{
		Loaded:  true,
		Summary: summaryView(d.Summary),
		Rows:    rows,
		Goals:   core.Goals(d.Summary),
		Form:    NewForm(),
		Nav:     NewNav(),
		Count:   len(rows),
	}
}

// NewRows formats expenses as table rows, in the order given.
func NewRows(expenses []core.Expense) []ExpenseRow {
	rows := make([]ExpenseRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, ExpenseRow{
			Paid:        e.Paid,
			Description: e.Description,
			Amount:      core.FormatBRL(e.Amount),
			DueDay:      "Dia " + strconv.Itoa(e.DueDay),
			Remaining:   core.FormatBRL(e.Remaining),
		})
	}
	return rows
}

// FailedView is the view shown when the dashboard could not be loaded.
func FailedView() View {
	return View{
		Summary:  summaryView(core.Summary{}),
		Feedback: Failure(MsgLoadFailed),
		Form:     NewForm(),
		Nav:      NewNav(),
	}
}

// Columns is exposed to templates for the colspan of the failure row.
func (v View) Columns() int { return Columns }

// Failed reports whether the table shows the load failure row.
func (v View) Failed() bool { return !v.Loaded }

// FailureRow is the text of the single row shown when loading failed.
func (v View) FailureRow() string { return MsgRowsFailed }

func summaryView(s core.Summary) SummaryView {
	return SummaryView{
		Planned:       core.FormatBRL(s.TotalPlanned),
		Paid:          core.FormatBRL(s.TotalPaid),
		Remaining:     core.FormatBRL(s.TotalRemaining),
		Progress:      s.ProgressPercent(),
		ProgressWidth: s.ProgressWidth(),
		ProgressLabel: s.ProgressLabel(),
	}
}
