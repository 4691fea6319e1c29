package model

// WorkFrontDistribution é a frente de trabalho com os pontos e HH calculados
type WorkFrontDistribution struct {
	WorkFront
	TotalPoints int     `json:"total_points"`
	TechnicalHH float64 `json:"technical_hh"`
	CivilHH     float64 `json:"civil_hh"`
	TotalHH     float64 `json:"total_hh"`
}

// CalculationResults contém o resultado completo do dimensionamento
type CalculationResults struct {
	TotalManHours                  float64                 `json:"total_man_hours"`
	TotalTechnicalManHours         float64                 `json:"total_technical_man_hours"`
	TotalCivilManHours             float64                 `json:"total_civil_man_hours"`
	TotalManHoursPerPoint          float64                 `json:"total_man_hours_per_point"`
	TotalTechnicalManHoursPerPoint float64                 `json:"total_technical_man_hours_per_point"`
	TotalCivilManHoursPerPoint     float64                 `json:"total_civil_man_hours_per_point"`
	DailyProductivityPerCell       float64                 `json:"daily_productivity_per_cell"`
	TotalDailyProductivity         float64                 `json:"total_daily_productivity"`
	ProjectDurationDays            float64                 `json:"project_duration_days"`
	WorkFrontsDistribution         []WorkFrontDistribution `json:"work_fronts_distribution"`
}

// Clone devolve uma cópia independente do resultado
func (r CalculationResults) Clone() CalculationResults {
	out := r
	out.WorkFrontsDistribution = append([]WorkFrontDistribution(nil), r.WorkFrontsDistribution...)
	return out
}
