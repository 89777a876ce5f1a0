package core

import (
	"fmt"
	"math"
	"strconv"
)

// ProgressPercent returns the share of the planned budget already paid, in
// percent, clamped to [0, 100]. A zero planned total yields 0.
func (s Summary) ProgressPercent() float64 {
	if s.TotalPlanned.Cents == 0 {
		return 0
	}
	pct := float64(s.TotalPaid.Cents) / float64(s.TotalPlanned.Cents) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// ProgressWidth is the CSS width of the progress bar, e.g. "37.5%".
func (s Summary) ProgressWidth() string {
	return strconv.FormatFloat(s.ProgressPercent(), 'f', -1, 64) + "%"
}

// ProgressLabel is the caption shown under the progress bar.
func (s Summary) ProgressLabel() string {
	return fmt.Sprintf("%d%% do orçamento quitado", int(math.Round(s.ProgressPercent())))
}

// Goals returns the suggestion cards shown next to the dashboard. Only the first
// one depends on the data: it quotes the current remaining total.
func Goals(s Summary) []Goal {
	return []Goal{
		{
			Title: "Manter margem de segurança",
			Description: "Reserve pelo menos " + FormatBRL(s.TotalRemaining) +
				" para despesas variáveis e emergências.",
		},
		{
			Title:       "Planejar quitação do cartão",
			Description: "Defina um plano semanal para pagar o cartão Nubank antes do vencimento e evitar juros.",
		},
		{
			Title:       "Monitorar assinaturas",
			Description: "Revise serviços como internet e streaming buscando renegociação ou ajustes de pacote.",
		},
	}
}
