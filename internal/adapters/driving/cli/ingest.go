package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
)

var ingestContext bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [archive.zip]",
	Short: "Index a ZIP archive of PDF documents",
	Long: `Extracts every PDF inside the archive, chunks the text, embeds the
chunks and stores them in the vector collection. Legal documents are
split by article; with --context the archive is indexed as contextual
material split into overlapping windows instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestContext, "context", false, "index as contextual documents instead of legal texts")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	// The pipeline consumes its input archive, so work on a copy and
	// leave the user's file alone.
	path, err := stageArchive(args[0], a.cfg.UploadDir())
	if err != nil {
		return err
	}

	kind := domain.KindLegal
	if ingestContext {
		kind = domain.KindContext
	}

	summary, err := a.pipeline.Ingest(ctx, path, kind)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	count, err := a.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count collection: %w", err)
	}

	cmd.Printf("Batch %s: %d file(s) processed, collection now holds %d chunks\n",
		summary.BatchID, summary.FilesAttempted, count)

	records, err := a.log.ListBatch(ctx, summary.BatchID)
	if err != nil {
		return nil
	}
	for _, rec := range records {
		switch rec.Status {
		case driven.FileIndexed:
			cmd.Printf("  %s: %d chunk(s)\n", rec.Filename, rec.Chunks)
		default:
			cmd.Printf("  %s: %s (%s)\n", rec.Filename, rec.Status, rec.Detail)
		}
	}
	return nil
}

func stageArchive(src, uploadDir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	path := filepath.Join(uploadDir, uuid.New().String()+"_"+filepath.Base(src))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to stage archive: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to stage archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to stage archive: %w", err)
	}
	return path, nil
}
