package service

import (
	"bytes"
	"math"
	"testing"

	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/preset"
	"github.com/cleberrangel/dimensionamento-api/internal/session"
	"github.com/xuri/excelize/v2"
)

func defaultExportData(t *testing.T) ExportData {
	t.Helper()
	p, err := preset.Default()
	if err != nil {
		t.Fatalf("preset.Default() error = %v", err)
	}
	snap := session.New(p).Snapshot()
	return ExportData{Inputs: snap.Inputs, Results: snap.Results, TeamRoles: snap.TeamRoles}
}

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func rawCell(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s, %s) error = %v", sheet, cell, err)
	}
	return v
}

func TestGenerateSheets(t *testing.T) {
	buf, err := NewExcelGenerator().Generate(defaultExportData(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f := openWorkbook(t, buf)

	sheets := f.GetSheetList()
	want := []string{SheetTeam, SheetWorkFronts, SheetSummary}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i], want[i])
		}
	}
}

func TestGenerateTeamSheet(t *testing.T) {
	buf, err := NewExcelGenerator().Generate(defaultExportData(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	f := openWorkbook(t, buf)

	rows, err := f.GetRows(SheetTeam)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	// cabeçalho + 7 funções + totais
	if len(rows) != 9 {
		t.Fatalf("rows = %d, want 9", len(rows))
	}
	for i, h := range TeamHeaders {
		if rows[0][i] != h {
			t.Errorf("header %d = %q, want %q", i, rows[0][i], h)
		}
	}

	// Técnico de instalação recebe o HH técnico arredondado: 350 * (18 + 5*18/23)
	first := rows[1]
	if first[3] != "7670" {
		t.Errorf("tr1 Total HH = %q, want 7670", first[3])
	}
	if first[4] != "52.7%" {
		t.Errorf("tr1 percent = %q, want 52.7%%", first[4])
	}
	if rows[2][3] != "2130" {
		t.Errorf("tr2 Total HH = %q, want 2130", rows[2][3])
	}

	totals := rows[8]
	if totals[0] != "TOTAIS" || totals[2] != "38" || totals[3] != "14.552" || totals[4] != "100%" {
		t.Errorf("totals row = %v", totals)
	}
}

func TestGenerateTeamSheetZeroTotal(t *testing.T) {
	data := ExportData{TeamRoles: []model.TeamRole{
		{ID: "a", Category: "X", Function: "Y", Quantity: 2, TotalHH: "0"},
		{ID: "b", Category: "X", Function: "Z", Quantity: 1, TotalHH: "N/A"},
	}}

	buf, err := NewExcelGenerator().Generate(data)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	f := openWorkbook(t, buf)

	if got := rawCell(t, f, SheetTeam, "E2"); got != "0%" {
		t.Errorf("row percent = %q, want 0%%", got)
	}
	if got := rawCell(t, f, SheetTeam, "D3"); got != "N/A" {
		t.Errorf("free text HH = %q, want N/A", got)
	}
	if got := rawCell(t, f, SheetTeam, "E4"); got != "0%" {
		t.Errorf("totals percent = %q, want 0%%", got)
	}
}

func TestGenerateWorkFrontsSheet(t *testing.T) {
	buf, err := NewExcelGenerator().Generate(defaultExportData(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	f := openWorkbook(t, buf)

	wantPoints := []string{"155", "78", "39", "39", "39"}
	for i, want := range wantPoints {
		cell, _ := excelize.CoordinatesToCellName(3, i+2)
		if got := rawCell(t, f, SheetWorkFronts, cell); got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	if got := rawCell(t, f, SheetWorkFronts, "A7"); got != "TOTAIS" {
		t.Errorf("A7 = %q, want TOTAIS", got)
	}
	if got := rawCell(t, f, SheetWorkFronts, "B7"); got != "9" {
		t.Errorf("total cells = %q, want 9", got)
	}
	if got := rawCell(t, f, SheetWorkFronts, "C7"); got != "350" {
		t.Errorf("total points = %q, want 350", got)
	}
	if got := rawCell(t, f, SheetWorkFronts, "F7"); got != "9800" {
		t.Errorf("total HH = %q, want 9800", got)
	}
}

func TestGenerateSummaryNonFinite(t *testing.T) {
	data := ExportData{
		Inputs: model.ProjectInputs{TotalPoints: 10},
		Results: model.CalculationResults{
			TotalManHours:       math.NaN(),
			ProjectDurationDays: math.Inf(1),
		},
	}

	buf, err := NewExcelGenerator().Generate(data)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	f := openWorkbook(t, buf)

	lines := SummaryLines(data.Inputs, data.Results)
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(2, i+2)
		got := rawCell(t, f, SheetSummary, cell)
		switch line.Label {
		case "Total de pontos":
			if got != "10" {
				t.Errorf("%s = %q, want 10", line.Label, got)
			}
		case "HH total", "Duração estimada (dias)":
			if got != "0" {
				t.Errorf("%s = %q, want 0", line.Label, got)
			}
		}
	}
}
