package service

import (
	"bytes"
	"fmt"

	"github.com/cleberrangel/dimensionamento-api/internal/ledger"
	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"github.com/xuri/excelize/v2"
)

// Nomes das abas da planilha exportada
const (
	SheetTeam       = "Equipe Consolidada"
	SheetWorkFronts = "Frentes de Trabalho"
	SheetSummary    = "Resumo"
)

// ExportFileName é o nome sugerido para o download
const ExportFileName = "equipe_consolidada.xlsx"

// TeamHeaders são as colunas da tabela consolidada de equipe
var TeamHeaders = []string{"Categoria", "Função", "Qtd. Pessoas", "Total HH", "% do Total", "Atribuições Principais"}

var workFrontHeaders = []string{"Frente", "Células", "Pontos", "HH Técnico", "HH Civil", "HH Total"}

// ExportData é o estado consolidado que vai para a planilha
type ExportData struct {
	Inputs    model.ProjectInputs
	Results   model.CalculationResults
	TeamRoles []model.TeamRole
}

// ExcelGenerator gera arquivos Excel
type ExcelGenerator struct{}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

type excelStyles struct {
	header int
	odd    int
	even   int
	total  int
	number int
}

// Generate gera a planilha com equipe, frentes e resumo
func (g *ExcelGenerator) Generate(data ExportData) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Renomeia a sheet padrão
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, SheetTeam); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}
	for _, name := range []string{SheetWorkFronts, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("criar sheet %s: %w", name, err)
		}
	}

	styles, err := g.newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilos: %w", err)
	}

	if err := g.writeTeam(f, styles, data.TeamRoles); err != nil {
		return nil, fmt.Errorf("escrever equipe: %w", err)
	}

	if err := g.writeWorkFronts(f, styles, data.Results); err != nil {
		return nil, fmt.Errorf("escrever frentes: %w", err)
	}

	if err := g.writeSummary(f, styles, data); err != nil {
		return nil, fmt.Errorf("escrever resumo: %w", err)
	}

	f.SetActiveSheet(0)

	// Escreve para buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

func (g *ExcelGenerator) newStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	thin := func(color string) []excelize.Border {
		return []excelize.Border{
			{Type: "left", Color: color, Style: 1},
			{Type: "top", Color: color, Style: 1},
			{Type: "bottom", Color: color, Style: 1},
			{Type: "right", Color: color, Style: 1},
		}
	}

	// Verde escuro do cabeçalho da tabela de equipe
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"166534"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: thin("000000"),
	})
	if err != nil {
		return s, err
	}

	s.odd, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    thin("D9D9D9"),
	})
	if err != nil {
		return s, err
	}

	s.even, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFFFFF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    thin("D9D9D9"),
	})
	if err != nil {
		return s, err
	}

	s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F0F0F0"}, Pattern: 1},
		Border: thin("000000"),
	})
	if err != nil {
		return s, err
	}

	// #,##0.00
	s.number, err = f.NewStyle(&excelize.Style{
		NumFmt: 4,
		Border: thin("D9D9D9"),
	})
	return s, err
}

// writeHeaders escreve a linha de cabeçalho de uma aba
func (g *ExcelGenerator) writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

// writeRow escreve uma linha inteira a partir da coluna A
func (g *ExcelGenerator) writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	return f.SetCellStyle(sheet, first, last, style)
}

// writeTeam escreve a tabela consolidada de equipe com a linha de totais
func (g *ExcelGenerator) writeTeam(f *excelize.File, s excelStyles, roles []model.TeamRole) error {
	if err := g.writeHeaders(f, SheetTeam, TeamHeaders, s.header); err != nil {
		return err
	}

	summary := ledger.Summarize(roles)

	for i, row := range summary.Rows {
		style := s.even
		if i%2 == 1 {
			style = s.odd
		}
		values := []interface{}{
			row.Category,
			row.Function,
			row.Quantity,
			row.TotalHH,
			row.Percent,
			row.Responsibilities,
		}
		if err := g.writeRow(f, SheetTeam, i+2, values, style); err != nil {
			return err
		}
	}

	totals := []interface{}{
		"TOTAIS",
		"",
		numeric.FormatLocale(float64(summary.TotalPeople)),
		numeric.FormatLocale(summary.TotalHH),
		summary.TotalPercent,
		"",
	}
	if err := g.writeRow(f, SheetTeam, len(summary.Rows)+2, totals, s.total); err != nil {
		return err
	}

	widths := []float64{25, 35, 14, 14, 12, 70}
	return g.setWidths(f, SheetTeam, widths)
}

// writeWorkFronts escreve a distribuição por frente com totais
func (g *ExcelGenerator) writeWorkFronts(f *excelize.File, s excelStyles, results model.CalculationResults) error {
	if err := g.writeHeaders(f, SheetWorkFronts, workFrontHeaders, s.header); err != nil {
		return err
	}

	var cells, points int
	var technical, civil, total float64

	for i, wf := range results.WorkFrontsDistribution {
		values := []interface{}{
			wf.Name,
			wf.AllocatedCells,
			wf.TotalPoints,
			numeric.Safe(wf.TechnicalHH),
			numeric.Safe(wf.CivilHH),
			numeric.Safe(wf.TotalHH),
		}
		row := i + 2
		if err := g.writeRow(f, SheetWorkFronts, row, values, s.number); err != nil {
			return err
		}
		cells += wf.AllocatedCells
		points += wf.TotalPoints
		technical += wf.TechnicalHH
		civil += wf.CivilHH
		total += wf.TotalHH
	}

	totals := []interface{}{
		"TOTAIS",
		cells,
		points,
		numeric.Safe(technical),
		numeric.Safe(civil),
		numeric.Safe(total),
	}
	if err := g.writeRow(f, SheetWorkFronts, len(results.WorkFrontsDistribution)+2, totals, s.total); err != nil {
		return err
	}

	return g.setWidths(f, SheetWorkFronts, []float64{35, 10, 10, 14, 14, 14})
}

// SummaryLine é uma linha do resumo: rótulo e valor numérico
type SummaryLine struct {
	Label string
	Value float64
}

// SummaryLines lista as métricas agregadas na ordem de exibição
func SummaryLines(inputs model.ProjectInputs, r model.CalculationResults) []SummaryLine {
	return []SummaryLine{
		{"Total de pontos", float64(inputs.TotalPoints)},
		{"Horas de trabalho por dia", inputs.WorkHoursPerDay},
		{"Pessoas por célula", inputs.PeoplePerCell},
		{"Total de células", float64(inputs.TotalCells())},
		{"HH total", r.TotalManHours},
		{"HH técnico", r.TotalTechnicalManHours},
		{"HH civil", r.TotalCivilManHours},
		{"HH por ponto", r.TotalManHoursPerPoint},
		{"HH técnico por ponto", r.TotalTechnicalManHoursPerPoint},
		{"HH civil por ponto", r.TotalCivilManHoursPerPoint},
		{"Produtividade diária por célula (pontos/dia)", r.DailyProductivityPerCell},
		{"Produtividade diária total (pontos/dia)", r.TotalDailyProductivity},
		{"Duração estimada (dias)", r.ProjectDurationDays},
	}
}

// writeSummary escreve as métricas agregadas
func (g *ExcelGenerator) writeSummary(f *excelize.File, s excelStyles, data ExportData) error {
	if err := g.writeHeaders(f, SheetSummary, []string{"Indicador", "Valor"}, s.header); err != nil {
		return err
	}

	for i, line := range SummaryLines(data.Inputs, data.Results) {
		values := []interface{}{line.Label, numeric.Safe(line.Value)}
		if err := g.writeRow(f, SheetSummary, i+2, values, s.number); err != nil {
			return err
		}
	}

	return g.setWidths(f, SheetSummary, []float64{45, 16})
}

// setWidths ajusta a largura das colunas
func (g *ExcelGenerator) setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
