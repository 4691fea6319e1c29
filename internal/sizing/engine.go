package sizing

import "github.com/cleberrangel/dimensionamento-api/internal/model"

// CategoryHours é a soma de HH/ponto das atividades, por categoria
type CategoryHours struct {
	Technical float64
	Civil     float64
	Overhead  float64
}

// AggregateByCategory soma manHoursPerPoint agrupando pela categoria da atividade.
// Categorias ausentes ficam com 0; categorias desconhecidas são ignoradas.
func AggregateByCategory(tasks []model.Task) CategoryHours {
	var h CategoryHours
	for _, task := range tasks {
		switch task.Category {
		case model.CategoryTechnical:
			h.Technical += task.ManHoursPerPoint
		case model.CategoryCivil:
			h.Civil += task.ManHoursPerPoint
		case model.CategoryOverhead:
			h.Overhead += task.ManHoursPerPoint
		}
	}
	return h
}

// Rates contém as taxas compostas de HH por ponto, já com o overhead rateado
type Rates struct {
	OverheadShareTechnical float64
	OverheadShareCivil     float64
	Technical              float64
	Civil                  float64
	Total                  float64
}

// ComposeRates rateia o overhead entre técnica e civil na proporção de cada uma.
// Sem horas produtivas, o overhead é dividido meio a meio.
func ComposeRates(h CategoryHours) Rates {
	r := Rates{OverheadShareTechnical: 0.5, OverheadShareCivil: 0.5}

	productive := h.Technical + h.Civil
	if productive > 0 {
		r.OverheadShareTechnical = h.Technical / productive
		r.OverheadShareCivil = h.Civil / productive
	}

	r.Technical = h.Technical + h.Overhead*r.OverheadShareTechnical
	r.Civil = h.Civil + h.Overhead*r.OverheadShareCivil
	r.Total = r.Technical + r.Civil
	return r
}

// Compute calcula o resultado completo do dimensionamento.
//
// Os totais agregados são somados a partir das frentes, de modo que a soma das
// frentes é sempre igual ao total. Nunca falha: divisões por zero caem em 0.
func Compute(inputs model.ProjectInputs, tasks []model.Task) model.CalculationResults {
	rates := ComposeRates(AggregateByCategory(tasks))

	cells := make([]int, len(inputs.WorkFronts))
	for i, wf := range inputs.WorkFronts {
		cells[i] = wf.AllocatedCells
	}
	points := DistributeCells(inputs.TotalPoints, cells)

	result := model.CalculationResults{
		TotalManHoursPerPoint:          rates.Total,
		TotalTechnicalManHoursPerPoint: rates.Technical,
		TotalCivilManHoursPerPoint:     rates.Civil,
		WorkFrontsDistribution:         make([]model.WorkFrontDistribution, len(inputs.WorkFronts)),
	}

	for i, wf := range inputs.WorkFronts {
		p := float64(points[i])
		front := model.WorkFrontDistribution{
			WorkFront:   wf,
			TotalPoints: points[i],
			TechnicalHH: p * rates.Technical,
			CivilHH:     p * rates.Civil,
			TotalHH:     p * rates.Total,
		}
		result.WorkFrontsDistribution[i] = front

		result.TotalManHours += front.TotalHH
		result.TotalTechnicalManHours += front.TechnicalHH
		result.TotalCivilManHours += front.CivilHH
	}

	dailyHoursPerCell := inputs.PeoplePerCell * inputs.WorkHoursPerDay
	if rates.Total > 0 {
		result.DailyProductivityPerCell = dailyHoursPerCell / rates.Total
	}
	result.TotalDailyProductivity = result.DailyProductivityPerCell * float64(inputs.TotalCells())
	if result.TotalDailyProductivity > 0 {
		result.ProjectDurationDays = float64(inputs.TotalPoints) / result.TotalDailyProductivity
	}

	return result
}
