package model

import (
	"fmt"

	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
)

// InputsRequest representa os parâmetros do projeto enviados pelo cliente.
// Campos ausentes ficam como estão; valores inválidos ou negativos viram 0.
type InputsRequest struct {
	TotalPoints     *numeric.Value     `json:"total_points"`
	WorkHoursPerDay *numeric.Value     `json:"work_hours_per_day"`
	PeoplePerCell   *numeric.Value     `json:"people_per_cell"`
	WorkFronts      []WorkFrontRequest `json:"work_fronts,omitempty"`
}

// WorkFrontRequest representa uma frente enviada pelo cliente
type WorkFrontRequest struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	AllocatedCells *numeric.Value `json:"allocated_cells"`
}

// TaskRequest representa uma atividade enviada pelo cliente
type TaskRequest struct {
	ID               string        `json:"id"`
	Phase            string        `json:"phase"`
	Name             string        `json:"name"`
	ManHoursPerPoint numeric.Value `json:"man_hours_per_point"`
	Category         Category      `json:"category" binding:"required"`
}

// SyncRequest indica quais funções recebem o HH calculado
type SyncRequest struct {
	TechnicalRoleID string `json:"technical_role_id"`
	CivilRoleID     string `json:"civil_role_id"`
}

// CalculateRequest é o payload do cálculo sem sessão
type CalculateRequest struct {
	Inputs    InputsRequest `json:"inputs"`
	Tasks     []TaskRequest `json:"tasks" binding:"dive"`
	TeamRoles []TeamRole    `json:"team_roles,omitempty"`
	Sync      *SyncRequest  `json:"sync,omitempty"`
}

// TaskPatchRequest altera parcialmente uma atividade
type TaskPatchRequest struct {
	Name             *string        `json:"name"`
	Phase            *string        `json:"phase"`
	ManHoursPerPoint *numeric.Value `json:"man_hours_per_point"`
}

// RescaleRequest define o novo total de HH por ponto. Valor negativo é ignorado,
// por isso não passa pelo limite a zero de numeric.Value.
type RescaleRequest struct {
	TotalManHoursPerPoint *float64 `json:"total_man_hours_per_point" binding:"required"`
}

// CellsRequest soma (ou subtrai) células de uma frente
type CellsRequest struct {
	Delta int `json:"delta"`
}

// RolePatchRequest altera parcialmente uma linha da equipe
type RolePatchRequest struct {
	Category         *string        `json:"category"`
	Function         *string        `json:"function"`
	Quantity         *numeric.Value `json:"quantity"`
	TotalHH          *string        `json:"total_hh"`
	Responsibilities *string        `json:"responsibilities"`
}

// FloatPtr converte um valor opcional da borda em *float64
func FloatPtr(v *numeric.Value) *float64 {
	if v == nil {
		return nil
	}
	f := v.Float64()
	return &f
}

// ToTask converte o payload em atividade do domínio
func (r TaskRequest) ToTask() (Task, error) {
	if !r.Category.Valid() {
		return Task{}, fmt.Errorf("atividade %q (%s): %w", r.ID, r.Category, ErrInvalidCategory)
	}
	return Task{
		ID:               r.ID,
		Phase:            r.Phase,
		Name:             r.Name,
		ManHoursPerPoint: r.ManHoursPerPoint.Float64(),
		Category:         r.Category,
	}, nil
}

// ToProjectInputs converte o payload completo em parâmetros do projeto
func (r InputsRequest) ToProjectInputs() ProjectInputs {
	in := ProjectInputs{WorkFronts: make([]WorkFront, len(r.WorkFronts))}
	if r.TotalPoints != nil {
		in.TotalPoints = r.TotalPoints.Int()
	}
	if r.WorkHoursPerDay != nil {
		in.WorkHoursPerDay = r.WorkHoursPerDay.Float64()
	}
	if r.PeoplePerCell != nil {
		in.PeoplePerCell = r.PeoplePerCell.Float64()
	}
	for i, wf := range r.WorkFronts {
		cells := 0
		if wf.AllocatedCells != nil {
			cells = wf.AllocatedCells.Int()
		}
		in.WorkFronts[i] = WorkFront{ID: wf.ID, Name: wf.Name, AllocatedCells: cells}
	}
	return in
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Meta contém metadados da resposta
type Meta struct {
	SessionID string `json:"session_id,omitempty"`
	Revision  int    `json:"revision,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
