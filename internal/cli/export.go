package cli

import (
	"fmt"
	"os"

	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/cleberrangel/dimensionamento-api/internal/service"
	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var flags projectFlags
	var output string

	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Exporta a tabela consolidada para Excel",
		Long: `Calcula o projeto e grava a planilha com as abas de equipe, frentes e resumo.

Exemplos:
  dimensionamento exportar
  dimensionamento exportar --saida obra.xlsx --pontos 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := flags.snapshot(cmd)
			if err != nil {
				return err
			}

			buf, err := service.NewExcelGenerator().Generate(service.ExportData{
				Inputs:    snap.Inputs,
				Results:   snap.Results,
				TeamRoles: snap.TeamRoles,
			})
			if err != nil {
				return fmt.Errorf("gerar planilha: %w", err)
			}

			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("gravar %s: %w", output, err)
			}

			logger.Global().Info().
				Str("file", output).
				Int("bytes", buf.Len()).
				Msg("Planilha exportada")
			fmt.Fprintf(cmd.OutOrStdout(), "Planilha gravada em %s\n", output)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "saida", "o", service.ExportFileName, "arquivo de saída")
	return cmd
}
