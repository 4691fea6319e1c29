package model

// Category classifica o esforço de uma atividade
type Category string

const (
	// CategoryTechnical agrupa atividades técnicas (elétrica, montagem, ativação)
	CategoryTechnical Category = "technical"
	// CategoryCivil agrupa atividades de infraestrutura civil
	CategoryCivil Category = "civil"
	// CategoryOverhead agrupa deslocamento e improdutividade, rateados entre técnica e civil
	CategoryOverhead Category = "overhead"
)

// Valid indica se a categoria é uma das categorias conhecidas
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryCivil, CategoryOverhead:
		return true
	}
	return false
}

// Task representa o esforço de uma atividade em HH por ponto
type Task struct {
	ID               string   `json:"id" yaml:"id"`
	Phase            string   `json:"phase" yaml:"phase"`
	Name             string   `json:"name" yaml:"name"`
	ManHoursPerPoint float64  `json:"man_hours_per_point" yaml:"man_hours_per_point"`
	Category         Category `json:"category" yaml:"category"`
}

// WorkFront representa uma frente de trabalho e suas células alocadas
type WorkFront struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	AllocatedCells int    `json:"allocated_cells" yaml:"allocated_cells"`
}

// ProjectInputs contém os parâmetros do projeto lidos pelo motor de cálculo
type ProjectInputs struct {
	TotalPoints     int         `json:"total_points" yaml:"total_points"`
	WorkHoursPerDay float64     `json:"work_hours_per_day" yaml:"work_hours_per_day"`
	PeoplePerCell   float64     `json:"people_per_cell" yaml:"people_per_cell"`
	WorkFronts      []WorkFront `json:"work_fronts" yaml:"work_fronts"`
}

// TotalCells soma as células alocadas em todas as frentes
func (p ProjectInputs) TotalCells() int {
	total := 0
	for _, wf := range p.WorkFronts {
		total += wf.AllocatedCells
	}
	return total
}

// Clone devolve uma cópia independente dos parâmetros
func (p ProjectInputs) Clone() ProjectInputs {
	out := p
	out.WorkFronts = append([]WorkFront(nil), p.WorkFronts...)
	return out
}

// TeamRole representa uma linha da tabela consolidada de equipe
type TeamRole struct {
	ID               string `json:"id" yaml:"id"`
	Category         string `json:"category" yaml:"category"`
	Function         string `json:"function" yaml:"function"`
	Quantity         int    `json:"quantity" yaml:"quantity"`
	TotalHH          string `json:"total_hh" yaml:"total_hh"` // texto livre, aceita "N/A"
	Responsibilities string `json:"responsibilities" yaml:"responsibilities"`
}

// TimelinePhase é uma barra do cronograma ilustrativo (semanas, não derivado do cálculo)
type TimelinePhase struct {
	Name      string `json:"name" yaml:"name"`
	StartWeek int    `json:"start_week" yaml:"start_week"`
	EndWeek   int    `json:"end_week" yaml:"end_week"`
}
