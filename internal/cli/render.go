package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cleberrangel/dimensionamento-api/internal/ledger"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"github.com/cleberrangel/dimensionamento-api/internal/service"
	"github.com/cleberrangel/dimensionamento-api/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("35")).
			Bold(true).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("22")).
			Bold(true).
			Padding(0, 1)

	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = numberStyle.Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// newTable cria uma tabela com cabeçalho destacado. Colunas em rightAligned são
// alinhadas à direita e a linha totalRow (se >= 0) sai em negrito.
func newTable(headers []string, rows [][]string, rightAligned map[int]bool, totalRow int) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == totalRow:
				return totalStyle
			case rightAligned[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
}

func section(w io.Writer, title string, body fmt.Stringer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(title), body.String())
	return err
}

// cardRows lista os indicadores formatados na ordem do painel
func cardRows(cards service.Cards) [][]string {
	return [][]string{
		{"HH total", cards.TotalManHours},
		{"HH por ponto", cards.TotalManHoursPerPoint},
		{"Duração estimada (dias)", cards.ProjectDurationDays},
		{"Produtividade por célula (pontos/dia)", cards.DailyProductivityPerCell},
		{"Produtividade total (pontos/dia)", cards.TotalDailyProductivity},
		{"Células", cards.TotalCells},
	}
}

// frontRows monta a distribuição por frente com a linha de totais
func frontRows(snap session.Snapshot) [][]string {
	var rows [][]string
	var cells, points int
	var technical, civil, total float64

	for _, wf := range snap.Results.WorkFrontsDistribution {
		rows = append(rows, []string{
			wf.Name,
			strconv.Itoa(wf.AllocatedCells),
			strconv.Itoa(wf.TotalPoints),
			numeric.Format(wf.TechnicalHH, 0),
			numeric.Format(wf.CivilHH, 0),
			numeric.Format(wf.TotalHH, 0),
		})
		cells += wf.AllocatedCells
		points += wf.TotalPoints
		technical += wf.TechnicalHH
		civil += wf.CivilHH
		total += wf.TotalHH
	}

	return append(rows, []string{
		"TOTAIS",
		strconv.Itoa(cells),
		strconv.Itoa(points),
		numeric.Format(technical, 0),
		numeric.Format(civil, 0),
		numeric.Format(total, 0),
	})
}

// teamRows monta a tabela consolidada de equipe com a linha de totais
func teamRows(summary ledger.Summary) [][]string {
	rows := make([][]string, 0, len(summary.Rows)+1)
	for _, row := range summary.Rows {
		rows = append(rows, []string{
			row.Category,
			row.Function,
			strconv.Itoa(row.Quantity),
			row.TotalHH,
			row.Percent,
		})
	}
	return append(rows, []string{
		"TOTAIS",
		"",
		numeric.FormatLocale(float64(summary.TotalPeople)),
		numeric.FormatLocale(summary.TotalHH),
		summary.TotalPercent,
	})
}

// renderSnapshot escreve indicadores, frentes e equipe
func renderSnapshot(w io.Writer, snap session.Snapshot) error {
	cards := newTable([]string{"Indicador", "Valor"}, cardRows(service.FormatCards(snap.Results)), map[int]bool{1: true}, -1)
	if err := section(w, "Resultado", cards); err != nil {
		return err
	}

	fronts := frontRows(snap)
	frontTable := newTable(
		[]string{"Frente", "Células", "Pontos", "HH Técnico", "HH Civil", "HH Total"},
		fronts,
		map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true},
		len(fronts)-1,
	)
	if err := section(w, "Frentes de Trabalho", frontTable); err != nil {
		return err
	}

	team := teamRows(ledger.Summarize(snap.TeamRoles))
	teamTable := newTable(
		service.TeamHeaders[:5],
		team,
		map[int]bool{2: true, 3: true, 4: true},
		len(team)-1,
	)
	return section(w, "Equipe Consolidada", teamTable)
}
