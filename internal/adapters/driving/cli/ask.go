package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question and get a grounded answer",
	Long: `Retrieves the most relevant chunks for the question and generates
an answer with the configured language model, citing the documents the
answer was grounded on.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, appOptions{withLLM: true})
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.answerer.Ask(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Fuentes consultadas:")
		seen := map[string]bool{}
		for _, src := range answer.Sources {
			line := formatSource(src)
			if !seen[line] {
				seen[line] = true
				cmd.Printf("  - %s\n", line)
			}
		}
	}
	return nil
}

func formatSource(src domain.SourceRef) string {
	return fmt.Sprintf("%s %s, Art. %s (%s)",
		src.TipoDocumento, src.NumeroDocumento, src.Articulo, src.NombreArchivo)
}
