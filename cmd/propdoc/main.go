package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/propdocs/extractor/internal/export"
	"github.com/propdocs/extractor/internal/extract"
	"github.com/propdocs/extractor/internal/repository"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "propdoc",
		Short:         "Extract structured fields from recognized property documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(processCmd(), exportCmd())
	return cmd
}

// processCmd runs the extraction pipeline in-process on a recognized-text
// file and prints the result as JSON. No store is touched.
func processCmd() *cobra.Command {
	var confidence float64

	cmd := &cobra.Command{
		Use:   "process <text-file>",
		Short: "Run extraction on a recognized-text file and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if confidence < 0 || confidence > 100 {
				return fmt.Errorf("confidence must be in [0,100], got %v", confidence)
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			p := extract.NewPipeline(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			})))
			res := p.Process(extract.RawRecognitionResult{
				Text:       string(text),
				Confidence: confidence,
			})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().Float64Var(&confidence, "confidence", 100, "OCR confidence score in [0,100]")
	return cmd
}

// exportCmd writes an XLSX workbook of completed extractions from a store.
func exportCmd() *cobra.Command {
	var (
		dsn     string
		out     string
		fromStr string
		toStr   string
		docType string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed extraction results to an XLSX workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			parseDate := func(s string) (*time.Time, error) {
				if s == "" {
					return nil, nil
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					return nil, fmt.Errorf("invalid date %q: %w", s, err)
				}
				return &t, nil
			}
			from, err := parseDate(fromStr)
			if err != nil {
				return err
			}
			to, err := parseDate(toStr)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			store, err := repository.Open(ctx, repository.Config{
				DSN:         dsn,
				MaxConns:    2,
				DialTimeout: 3 * time.Second,
			}, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			docsRepo := repository.NewDocumentRepository(store, logger)
			svc := export.NewService(docsRepo, "Extractions", logger)
			data, err := svc.ExportResultsXLSX(ctx, from, to, extract.DocumentType(docType))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "db", "file:propdocs.db", "store DSN (postgres:// or sqlite file)")
	cmd.Flags().StringVar(&out, "out", "extraction-results.xlsx", "output XLSX path")
	cmd.Flags().StringVar(&fromStr, "from", "", "from date YYYY-MM-DD")
	cmd.Flags().StringVar(&toStr, "to", "", "to date YYYY-MM-DD")
	cmd.Flags().StringVar(&docType, "type", "", "restrict to one document type (e.g. LEASE_AGREEMENT)")
	return cmd
}
