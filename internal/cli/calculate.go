package cli

import (
	"github.com/spf13/cobra"
)

func newCalculateCommand() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:     "calcular",
		Aliases: []string{"calc"},
		Short:   "Calcula o dimensionamento e mostra as tabelas",
		Long: `Calcula HH, duração e distribuição por frente a partir do preset e imprime
os indicadores, a tabela de frentes e a tabela consolidada de equipe.

Exemplos:
  dimensionamento calcular
  dimensionamento calcular --pontos 700 --pessoas-celula 4
  dimensionamento calcular --preset meu_projeto.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := flags.snapshot(cmd)
			if err != nil {
				return err
			}
			return renderSnapshot(cmd.OutOrStdout(), snap)
		},
	}
	flags.register(cmd)
	return cmd
}
