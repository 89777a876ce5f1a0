package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"orcamento/internal/core"
	"orcamento/internal/dashboard"
)

var (
	ColorBorder = lipgloss.Color("#282726")
	ColorDim    = lipgloss.Color("#575653")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorOrange = lipgloss.Color("#DA702C")
	ColorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	valueStyle   = lipgloss.NewStyle().Foreground(ColorText)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorDim)
	successStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	pendingStyle = lipgloss.NewStyle().Foreground(ColorOrange)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
)

// progressCells is the width of the terminal progress bar.
const progressCells = 30

// Table is a bordered text table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. A single cell row spans the whole
// width, like the failure row of the web table.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		if len(row) == 1 && numCols > 1 {
			continue
		}
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	inner := -1
	for _, w := range widths {
		inner += w + 3
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right) + "\n")
	}

	rule("╭", "┬", "╮")
	b.WriteString(dimStyle.Render("│"))
	for i, h := range t.Headers {
		b.WriteString(headerStyle.Render(" " + pad(h, widths[i]) + " "))
		b.WriteString(dimStyle.Render("│"))
	}
	b.WriteString("\n")
	rule("├", "┼", "┤")

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		if len(row) == 1 && numCols > 1 {
			b.WriteString(valueStyle.Render(" " + pad(row[0], inner-2) + " "))
			b.WriteString(dimStyle.Render("│") + "\n")
			continue
		}
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i]) + " "))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// pad right-pads s to w display cells.
func pad(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// RenderSummary renders the dashboard the way the web page lays it out.
func RenderSummary(v dashboard.View) string {
	var b strings.Builder

	b.WriteString(RenderTitle("ORÇAMENTO") + "\n\n")

	metrics := [][2]string{
		{"Planejado", v.Summary.Planned},
		{"Pago", v.Summary.Paid},
		{"Restante", v.Summary.Remaining},
	}
	for _, m := range metrics {
		b.WriteString("  " + labelStyle.Render(pad(m[0], 10)) + " " + valueStyle.Render(m[1]) + "\n")
	}
	b.WriteString("\n  " + RenderProgress(v.Summary) + "\n\n")

	if v.Failed() {
		b.WriteString(RenderTable(Table{
			Title:   "Despesas",
			Headers: expenseHeaders,
			Rows:    [][]string{{v.FailureRow()}},
		}))
	} else {
		b.WriteString(RenderExpenses(v.Rows))
	}

	if len(v.Goals) > 0 {
		b.WriteString("\n  " + headerStyle.Render("Metas") + "\n")
		for _, g := range v.Goals {
			b.WriteString("  • " + valueStyle.Render(g.Title) + "\n")
			b.WriteString("    " + dimStyle.Render(g.Description) + "\n")
		}
	}

	if fb := RenderFeedback(v.Feedback); fb != "" {
		b.WriteString("\n  " + fb + "\n")
	}
	return b.String()
}

var expenseHeaders = []string{"Status", "Descrição", "Valor", "Vencimento", "Restante"}

// RenderExpenses renders the expense table.
func RenderExpenses(rows []dashboard.ExpenseRow) string {
	t := Table{Title: "Despesas", Headers: expenseHeaders}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Badge(), r.Description, r.Amount, r.DueDay, r.Remaining})
	}
	return RenderTable(t)
}

// RenderProgress draws the paid share of the budget followed by its label.
func RenderProgress(s dashboard.SummaryView) string {
	filled := int(s.Progress / 100 * progressCells)
	if filled > progressCells {
		filled = progressCells
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", progressCells-filled))
	return bar + " " + valueStyle.Render(s.ProgressLabel)
}

// RenderFeedback styles the status line; an empty message renders nothing.
func RenderFeedback(f dashboard.Feedback) string {
	switch f.Class() {
	case "":
		return ""
	case string(dashboard.FeedbackSuccess):
		return successStyle.Render(f.Message)
	default:
		return errorStyle.Render(f.Message)
	}
}

var outcomeLabels = map[core.Outcome]string{
	core.OutcomeAccepted: "aceita",
	core.OutcomeRejected: "recusada",
	core.OutcomeFailed:   "falhou",
}

// RenderHistory lists journal entries, newest first.
func RenderHistory(entries []core.Submission) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("Nenhuma despesa enviada ainda.") + "\n"
	}

	t := Table{
		Title:   "Envios recentes",
		Headers: []string{"Quando", "Resultado", "Descrição", "Valor", "Vencimento", "Mensagem"},
	}
	for _, s := range entries {
		label, ok := outcomeLabels[s.Outcome]
		if !ok {
			label = string(s.Outcome)
		}
		t.Rows = append(t.Rows, []string{
			s.CreatedAt.Local().Format("02/01/2006 15:04"),
			label,
			s.Expense.Description,
			core.FormatBRL(s.Expense.Amount),
			fmt.Sprintf("Dia %d", s.Expense.DueDay),
			s.Message,
		})
	}
	return RenderTable(t)
}

// outcomeStyle colours the outcome of an add command.
func outcomeStyle(o core.Outcome) lipgloss.Style {
	if o == core.OutcomeAccepted {
		return successStyle
	}
	if o == core.OutcomeInvalid {
		return pendingStyle
	}
	return errorStyle
}
