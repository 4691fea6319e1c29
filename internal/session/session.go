// Package session mantém o estado de edição de um projeto: parâmetros, atividades,
// frentes e equipe. Toda alteração recalcula o resultado e sincroniza a equipe
// antes de liberar o lock, então leitores só enxergam estados consolidados.
package session

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/ledger"
	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"github.com/cleberrangel/dimensionamento-api/internal/preset"
	"github.com/cleberrangel/dimensionamento-api/internal/sizing"
	"github.com/google/uuid"
)

// Snapshot é uma cópia consolidada do estado da sessão
type Snapshot struct {
	ID        string                   `json:"id"`
	Revision  int                      `json:"revision"`
	UpdatedAt time.Time                `json:"updated_at"`
	Inputs    model.ProjectInputs      `json:"inputs"`
	Tasks     []model.Task             `json:"tasks"`
	TeamRoles []model.TeamRole         `json:"team_roles"`
	Results   model.CalculationResults `json:"results"`
	Sync      ledger.SyncTargets       `json:"sync"`
	Timeline  []model.TimelinePhase    `json:"timeline"`
}

// Session é o estado de edição de um único projeto
type Session struct {
	mu sync.RWMutex

	id        string
	revision  int
	updatedAt time.Time

	inputs   model.ProjectInputs
	tasks    []model.Task
	roles    []model.TeamRole
	results  model.CalculationResults
	targets  ledger.SyncTargets
	timeline []model.TimelinePhase
}

// New cria uma sessão a partir de um preset e já calcula o resultado inicial
func New(p *preset.Preset) *Session {
	s := &Session{
		id:       uuid.New().String(),
		inputs:   p.ProjectInputs(),
		tasks:    append([]model.Task(nil), p.Tasks...),
		roles:    append([]model.TeamRole(nil), p.TeamRoles...),
		targets:  p.Sync,
		timeline: append([]model.TimelinePhase(nil), p.Timeline...),
	}
	s.recompute()
	return s
}

// ID retorna o identificador da sessão
func (s *Session) ID() string {
	return s.id
}

// compute é o motor de cálculo; os testes trocam para contar execuções
var compute = sizing.Compute

// recompute roda o motor e a sincronização da equipe. Chamar com o lock de escrita.
func (s *Session) recompute() {
	s.results = compute(s.inputs, s.tasks)
	s.resync()
}

// resync copia o resultado atual para as funções sincronizadas e gera nova revisão.
// Chamar com o lock de escrita.
func (s *Session) resync() {
	s.roles = ledger.Sync(s.roles, s.results, s.targets)
	s.revision++
	s.updatedAt = time.Now()
}

// mutate aplica fn sob lock e recalcula se fn não retornar erro
func (s *Session) mutate(fn func() error) (Snapshot, error) {
	return s.apply(fn, s.recompute)
}

// mutateLedger aplica fn à tabela de equipe. Só parâmetros e atividades mudam o
// resultado, então o motor não roda: apenas a sincronização.
func (s *Session) mutateLedger(fn func() error) (Snapshot, error) {
	return s.apply(fn, s.resync)
}

func (s *Session) apply(fn func() error, settle func()) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(); err != nil {
		return Snapshot{}, err
	}
	settle()
	return s.snapshotLocked(), nil
}

// Snapshot retorna uma cópia consolidada do estado atual
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        s.id,
		Revision:  s.revision,
		UpdatedAt: s.updatedAt,
		Inputs:    s.inputs.Clone(),
		Tasks:     append([]model.Task(nil), s.tasks...),
		TeamRoles: append([]model.TeamRole(nil), s.roles...),
		Results:   s.results.Clone(),
		Sync:      s.targets,
		Timeline:  append([]model.TimelinePhase(nil), s.timeline...),
	}
}

// InputsPatch altera parcialmente os parâmetros do projeto. Campos nil ficam como estão.
type InputsPatch struct {
	TotalPoints     *float64
	WorkHoursPerDay *float64
	PeoplePerCell   *float64
}

// SetInputs atualiza os parâmetros do projeto
func (s *Session) SetInputs(patch InputsPatch) Snapshot {
	snap, _ := s.mutate(func() error {
		if patch.TotalPoints != nil {
			s.inputs.TotalPoints = numeric.ClampInt(*patch.TotalPoints)
		}
		if patch.WorkHoursPerDay != nil {
			s.inputs.WorkHoursPerDay = numeric.Clamp(*patch.WorkHoursPerDay)
		}
		if patch.PeoplePerCell != nil {
			s.inputs.PeoplePerCell = numeric.Clamp(*patch.PeoplePerCell)
		}
		return nil
	})
	return snap
}

// TaskPatch altera parcialmente uma atividade. A categoria não é editável.
type TaskPatch struct {
	Name             *string
	Phase            *string
	ManHoursPerPoint *float64
}

// UpdateTask atualiza uma atividade pelo id
func (s *Session) UpdateTask(taskID string, patch TaskPatch) (Snapshot, error) {
	return s.mutate(func() error {
		for i := range s.tasks {
			if s.tasks[i].ID != taskID {
				continue
			}
			if patch.Name != nil {
				s.tasks[i].Name = *patch.Name
			}
			if patch.Phase != nil {
				s.tasks[i].Phase = *patch.Phase
			}
			if patch.ManHoursPerPoint != nil {
				s.tasks[i].ManHoursPerPoint = numeric.Clamp(*patch.ManHoursPerPoint)
			}
			return nil
		}
		return model.ErrTaskNotFound
	})
}

// RescaleManHours reescala todas as atividades para que o HH/ponto total seja newTotal.
// Cada coeficiente é arredondado para duas casas. Valor negativo ou soma atual zero
// não alteram nada.
func (s *Session) RescaleManHours(newTotal float64) Snapshot {
	snap, _ := s.mutate(func() error {
		if newTotal < 0 || math.IsNaN(newTotal) || math.IsInf(newTotal, 0) {
			return nil
		}
		current := 0.0
		for _, task := range s.tasks {
			current += task.ManHoursPerPoint
		}
		if current == 0 {
			return nil
		}
		ratio := newTotal / current
		for i := range s.tasks {
			s.tasks[i].ManHoursPerPoint = math.Round(s.tasks[i].ManHoursPerPoint*ratio*100) / 100
		}
		return nil
	})
	return snap
}

func (s *Session) frontIndex(frontID string) int {
	for i, wf := range s.inputs.WorkFronts {
		if wf.ID == frontID {
			return i
		}
	}
	return -1
}

// AdjustCells soma delta às células da frente. A soma é feita em float64 e passa
// pelo mesmo limite das demais entradas, então nunca fica negativa nem estoura int.
func (s *Session) AdjustCells(frontID string, delta int) (Snapshot, error) {
	return s.mutate(func() error {
		i := s.frontIndex(frontID)
		if i < 0 {
			return model.ErrWorkFrontNotFound
		}
		cells := float64(s.inputs.WorkFronts[i].AllocatedCells) + float64(delta)
		s.inputs.WorkFronts[i].AllocatedCells = numeric.ClampInt(cells)
		return nil
	})
}

// WorkFrontPatch altera parcialmente uma frente de trabalho
type WorkFrontPatch struct {
	Name           *string
	AllocatedCells *float64
}

// UpdateWorkFront renomeia a frente e/ou define suas células
func (s *Session) UpdateWorkFront(frontID string, patch WorkFrontPatch) (Snapshot, error) {
	return s.mutate(func() error {
		i := s.frontIndex(frontID)
		if i < 0 {
			return model.ErrWorkFrontNotFound
		}
		if patch.Name != nil {
			s.inputs.WorkFronts[i].Name = *patch.Name
		}
		if patch.AllocatedCells != nil {
			s.inputs.WorkFronts[i].AllocatedCells = numeric.ClampInt(*patch.AllocatedCells)
		}
		return nil
	})
}

// AddWorkFront inclui uma nova frente ao final da lista
func (s *Session) AddWorkFront(name string, cells float64) Snapshot {
	snap, _ := s.mutate(func() error {
		if strings.TrimSpace(name) == "" {
			name = "Nova Frente"
		}
		s.inputs.WorkFronts = append(s.inputs.WorkFronts, model.WorkFront{
			ID:             "wf-" + uuid.New().String()[:8],
			Name:           name,
			AllocatedCells: numeric.ClampInt(cells),
		})
		return nil
	})
	return snap
}

// RemoveWorkFront remove uma frente
func (s *Session) RemoveWorkFront(frontID string) (Snapshot, error) {
	return s.mutate(func() error {
		i := s.frontIndex(frontID)
		if i < 0 {
			return model.ErrWorkFrontNotFound
		}
		s.inputs.WorkFronts = append(s.inputs.WorkFronts[:i:i], s.inputs.WorkFronts[i+1:]...)
		return nil
	})
}

func (s *Session) roleIndex(roleID string) int {
	for i, r := range s.roles {
		if r.ID == roleID {
			return i
		}
	}
	return -1
}

// AddRole inclui uma função com os valores padrão
func (s *Session) AddRole() (Snapshot, model.TeamRole) {
	role := ledger.NewRole()
	snap, _ := s.mutateLedger(func() error {
		s.roles = append(s.roles, role)
		return nil
	})
	return snap, role
}

// RolePatch altera parcialmente uma função da equipe
type RolePatch struct {
	Category         *string
	Function         *string
	Quantity         *float64
	TotalHH          *string
	Responsibilities *string
}

// UpdateRole atualiza uma função. O Total HH das funções sincronizadas é
// sobrescrito pela sincronização logo em seguida.
func (s *Session) UpdateRole(roleID string, patch RolePatch) (Snapshot, error) {
	return s.mutateLedger(func() error {
		i := s.roleIndex(roleID)
		if i < 0 {
			return model.ErrTeamRoleNotFound
		}
		role := &s.roles[i]
		if patch.Category != nil {
			role.Category = *patch.Category
		}
		if patch.Function != nil {
			role.Function = *patch.Function
		}
		if patch.Quantity != nil {
			role.Quantity = numeric.ClampInt(*patch.Quantity)
		}
		if patch.TotalHH != nil {
			role.TotalHH = *patch.TotalHH
		}
		if patch.Responsibilities != nil {
			role.Responsibilities = *patch.Responsibilities
		}
		return nil
	})
}

// RemoveRole remove uma função da equipe
func (s *Session) RemoveRole(roleID string) (Snapshot, error) {
	return s.mutateLedger(func() error {
		i := s.roleIndex(roleID)
		if i < 0 {
			return model.ErrTeamRoleNotFound
		}
		s.roles = append(s.roles[:i:i], s.roles[i+1:]...)
		return nil
	})
}
