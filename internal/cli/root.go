// Package cli implementa a linha de comando dimensionamento: calcula um projeto a
// partir de um preset, mostra o resultado em tabelas e exporta a planilha.
package cli

import (
	"io"

	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/cleberrangel/dimensionamento-api/internal/preset"
	"github.com/cleberrangel/dimensionamento-api/internal/session"
	"github.com/spf13/cobra"
)

// projectFlags são as opções comuns a calcular e exportar
type projectFlags struct {
	presetPath    string
	points        float64
	hoursPerDay   float64
	peoplePerCell float64
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.presetPath, "preset", "", "arquivo YAML do preset (padrão: preset embutido)")
	cmd.Flags().Float64Var(&f.points, "pontos", 0, "total de pontos do projeto")
	cmd.Flags().Float64Var(&f.hoursPerDay, "horas-dia", 0, "horas de trabalho por dia")
	cmd.Flags().Float64Var(&f.peoplePerCell, "pessoas-celula", 0, "pessoas por célula")
}

// snapshot carrega o preset, aplica as opções informadas e devolve o estado calculado
func (f *projectFlags) snapshot(cmd *cobra.Command) (session.Snapshot, error) {
	p, err := preset.Load(f.presetPath)
	if err != nil {
		return session.Snapshot{}, err
	}

	s := session.New(p)
	patch := session.InputsPatch{}
	if cmd.Flags().Changed("pontos") {
		patch.TotalPoints = &f.points
	}
	if cmd.Flags().Changed("horas-dia") {
		patch.WorkHoursPerDay = &f.hoursPerDay
	}
	if cmd.Flags().Changed("pessoas-celula") {
		patch.PeoplePerCell = &f.peoplePerCell
	}
	snap := s.SetInputs(patch)

	logger.Global().Debug().
		Str("preset", f.presetPath).
		Int("total_points", snap.Inputs.TotalPoints).
		Int("tasks", len(snap.Tasks)).
		Int("revision", snap.Revision).
		Msg("Projeto calculado")

	return snap, nil
}

// NewRootCommand monta a árvore de comandos escrevendo em out
func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "dimensionamento",
		Short: "Dimensionamento de mão de obra por pontos",
		Long: `dimensionamento calcula homem-hora, duração e distribuição de pontos por frente
de trabalho a partir de um preset YAML e monta a tabela consolidada de equipe.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.InitWithWriter(cmd.ErrOrStderr(), logLevel, false)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "nível de log (debug, info, warn, error)")

	root.AddCommand(newCalculateCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newPresetCommand())
	return root
}

// Execute roda a CLI com os argumentos do processo
func Execute(out io.Writer) error {
	return NewRootCommand(out).Execute()
}

func newPresetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preset",
		Short: "Mostra o preset embutido",
		Long:  "Imprime o YAML do preset padrão, útil como ponto de partida para um preset próprio.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(preset.DefaultYAML())
			return err
		},
	}
}
