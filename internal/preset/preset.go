// Package preset carrega os dados iniciais de um projeto (atividades, frentes,
// equipe e alvos de sincronização) a partir de YAML.
package preset

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/cleberrangel/dimensionamento-api/internal/ledger"
	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Inputs são os parâmetros escalares do projeto no preset
type Inputs struct {
	TotalPoints     float64 `yaml:"total_points"`
	WorkHoursPerDay float64 `yaml:"work_hours_per_day"`
	PeoplePerCell   float64 `yaml:"people_per_cell"`
}

// Preset modela o arquivo YAML de um projeto
type Preset struct {
	Inputs     Inputs                `yaml:"inputs"`
	Tasks      []model.Task          `yaml:"tasks"`
	WorkFronts []model.WorkFront     `yaml:"work_fronts"`
	TeamRoles  []model.TeamRole      `yaml:"team_roles"`
	Sync       ledger.SyncTargets    `yaml:"sync"`
	Timeline   []model.TimelinePhase `yaml:"timeline"`
}

// DefaultYAML retorna o conteúdo bruto do preset embutido
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Default retorna o preset embutido
func Default() (*Preset, error) {
	return Parse(defaultYAML)
}

// Load lê um preset do disco. Caminho vazio usa o preset embutido.
func Load(path string) (*Preset, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: ler %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodifica e normaliza um preset
func Parse(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decodificar yaml: %w", err)
	}
	if err := p.normalize(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Preset) normalize() error {
	p.Inputs.TotalPoints = numeric.Clamp(p.Inputs.TotalPoints)
	p.Inputs.WorkHoursPerDay = numeric.Clamp(p.Inputs.WorkHoursPerDay)
	p.Inputs.PeoplePerCell = numeric.Clamp(p.Inputs.PeoplePerCell)

	for i := range p.Tasks {
		task := &p.Tasks[i]
		if !task.Category.Valid() {
			return fmt.Errorf("atividade %q: %w: %q", task.ID, model.ErrInvalidCategory, task.Category)
		}
		task.ManHoursPerPoint = numeric.Clamp(task.ManHoursPerPoint)
	}
	for i := range p.WorkFronts {
		p.WorkFronts[i].AllocatedCells = numeric.ClampInt(float64(p.WorkFronts[i].AllocatedCells))
	}
	for i := range p.TeamRoles {
		p.TeamRoles[i].Quantity = numeric.ClampInt(float64(p.TeamRoles[i].Quantity))
	}
	return nil
}

// ProjectInputs monta os parâmetros do motor a partir do preset
func (p *Preset) ProjectInputs() model.ProjectInputs {
	return model.ProjectInputs{
		TotalPoints:     numeric.ClampInt(p.Inputs.TotalPoints),
		WorkHoursPerDay: p.Inputs.WorkHoursPerDay,
		PeoplePerCell:   p.Inputs.PeoplePerCell,
		WorkFronts:      append([]model.WorkFront(nil), p.WorkFronts...),
	}
}

// WithSyncOverrides substitui os alvos de sincronização quando informados
func (p *Preset) WithSyncOverrides(technicalRoleID, civilRoleID string) *Preset {
	if technicalRoleID != "" {
		p.Sync.TechnicalRoleID = technicalRoleID
	}
	if civilRoleID != "" {
		p.Sync.CivilRoleID = civilRoleID
	}
	return p
}
