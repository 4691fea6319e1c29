package service

import (
	"github.com/cleberrangel/dimensionamento-api/internal/ledger"
	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"github.com/cleberrangel/dimensionamento-api/internal/session"
)

// Cards são os indicadores do painel já formatados para exibição.
// Valores não finitos aparecem como "0".
type Cards struct {
	TotalManHours            string `json:"total_man_hours"`
	TotalManHoursPerPoint    string `json:"total_man_hours_per_point"`
	ProjectDurationDays      string `json:"project_duration_days"`
	DailyProductivityPerCell string `json:"daily_productivity_per_cell"`
	TotalDailyProductivity   string `json:"total_daily_productivity"`
	TotalCells               string `json:"total_cells"`
}

// FormatCards formata os indicadores do resultado
func FormatCards(r model.CalculationResults) Cards {
	cells := 0
	for _, wf := range r.WorkFrontsDistribution {
		cells += wf.AllocatedCells
	}
	return Cards{
		TotalManHours:            numeric.Format(r.TotalManHours, 0),
		TotalManHoursPerPoint:    numeric.Format(r.TotalManHoursPerPoint, 2),
		ProjectDurationDays:      numeric.Format(r.ProjectDurationDays, 1),
		DailyProductivityPerCell: numeric.Format(r.DailyProductivityPerCell, 2),
		TotalDailyProductivity:   numeric.Format(r.TotalDailyProductivity, 2),
		TotalCells:               numeric.Format(float64(cells), 0),
	}
}

// LedgerView é a tabela de equipe com totais e o gráfico por categoria
type LedgerView struct {
	ledger.Summary
	Breakdown []ledger.Slice `json:"breakdown"`
}

// NewLedgerView monta a visão da tabela consolidada
func NewLedgerView(roles []model.TeamRole) LedgerView {
	return LedgerView{
		Summary:   ledger.Summarize(roles),
		Breakdown: ledger.Breakdown(roles),
	}
}

// CalculationView é a resposta do cálculo sem sessão
type CalculationView struct {
	Results   model.CalculationResults `json:"results"`
	Cards     Cards                    `json:"cards"`
	TeamRoles []model.TeamRole         `json:"team_roles"`
	Ledger    LedgerView               `json:"ledger"`
}

// SessionView é o estado da sessão enviado aos clientes (REST e WebSocket)
type SessionView struct {
	session.Snapshot
	Cards  Cards      `json:"cards"`
	Ledger LedgerView `json:"ledger"`
}

// NewSessionView monta a visão a partir de um snapshot consolidado
func NewSessionView(snap session.Snapshot) SessionView {
	return SessionView{
		Snapshot: snap,
		Cards:    FormatCards(snap.Results),
		Ledger:   NewLedgerView(snap.TeamRoles),
	}
}
