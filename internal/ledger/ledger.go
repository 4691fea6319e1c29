// Package ledger trata a tabela consolidada de equipe: totais, percentuais,
// agregação por categoria e a sincronização das funções de campo com o cálculo.
package ledger

import (
	"strings"

	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"github.com/google/uuid"
)

// Palette são as cores usadas no gráfico de proporção, em ordem de aparição
var Palette = []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899"}

// SyncTargets identifica as funções que recebem o total de HH calculado
type SyncTargets struct {
	TechnicalRoleID string `json:"technical_role_id" yaml:"technical_role_id"`
	CivilRoleID     string `json:"civil_role_id" yaml:"civil_role_id"`
}

// Row é uma linha da tabela com o HH numérico e o percentual já calculados
type Row struct {
	model.TeamRole
	HH      float64 `json:"hh"`
	Percent string  `json:"percent_of_total"`
}

// Summary é a tabela consolidada com a linha de totais
type Summary struct {
	Rows         []Row   `json:"rows"`
	TotalPeople  int     `json:"total_people"`
	TotalHH      float64 `json:"total_hh"`
	TotalPercent string  `json:"total_percent"`
}

// Slice é uma fatia do gráfico de proporção por categoria
type Slice struct {
	Category string  `json:"category"`
	HH       float64 `json:"hh"`
	Percent  float64 `json:"percent"`
	Color    string  `json:"color"`
}

// RowHH lê o total HH de uma função. Texto não numérico ("N/A") conta como 0.
func RowHH(role model.TeamRole) float64 {
	return numeric.ParseLenient(role.TotalHH)
}

// Summarize monta a tabela consolidada com percentuais e totais
func Summarize(roles []model.TeamRole) Summary {
	s := Summary{Rows: make([]Row, len(roles))}

	for _, role := range roles {
		s.TotalPeople += role.Quantity
		s.TotalHH += RowHH(role)
	}

	for i, role := range roles {
		hh := RowHH(role)
		s.Rows[i] = Row{
			TeamRole: role,
			HH:       hh,
			Percent:  numeric.FormatPercent(hh, s.TotalHH),
		}
	}

	s.TotalPercent = "0%"
	if s.TotalHH != 0 {
		s.TotalPercent = "100%"
	}
	return s
}

// Breakdown agrega o HH das funções por categoria, na ordem em que as categorias
// aparecem. Funções sem HH positivo ficam de fora.
func Breakdown(roles []model.TeamRole) []Slice {
	index := make(map[string]int)
	var slices []Slice
	total := 0.0

	for _, role := range roles {
		hh := RowHH(role)
		if hh <= 0 {
			continue
		}
		total += hh
		if i, ok := index[role.Category]; ok {
			slices[i].HH += hh
			continue
		}
		index[role.Category] = len(slices)
		slices = append(slices, Slice{
			Category: role.Category,
			HH:       hh,
			Color:    Palette[len(slices)%len(Palette)],
		})
	}

	for i := range slices {
		slices[i].Percent = slices[i].HH / total * 100
	}
	return slices
}

// Sync copia os totais técnico e civil do resultado para as funções alvo,
// arredondados para inteiro. As demais funções não são alteradas.
// Alvos ausentes da lista são ignorados.
func Sync(roles []model.TeamRole, results model.CalculationResults, targets SyncTargets) []model.TeamRole {
	out := make([]model.TeamRole, len(roles))
	copy(out, roles)

	for i := range out {
		switch {
		case targets.TechnicalRoleID != "" && out[i].ID == targets.TechnicalRoleID:
			out[i].TotalHH = numeric.FormatRounded(results.TotalTechnicalManHours)
		case targets.CivilRoleID != "" && out[i].ID == targets.CivilRoleID:
			out[i].TotalHH = numeric.FormatRounded(results.TotalCivilManHours)
		}
	}
	return out
}

// IsSyncTarget indica se a função é sobrescrita a cada recálculo
func (t SyncTargets) IsSyncTarget(roleID string) bool {
	return roleID != "" && (roleID == t.TechnicalRoleID || roleID == t.CivilRoleID)
}

// NewRole cria uma linha nova com os valores padrão da tabela
func NewRole() model.TeamRole {
	return model.TeamRole{
		ID:               strings.ReplaceAll(uuid.New().String(), "-", "")[:9],
		Category:         "Nova Categoria",
		Function:         "Nova Função",
		Quantity:         1,
		TotalHH:          "0",
		Responsibilities: "Descrição das atribuições",
	}
}
