// Command rxscan runs the prescription pipeline from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medilens/backend/config"
	"github.com/medilens/backend/internal/app"
	"github.com/medilens/backend/internal/domain"
	"github.com/medilens/backend/internal/usecase"
)

var (
	viewOnly bool
	verbose  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rxscan",
		Short:         "Recognize medicines in a prescription and match them to catalog products",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&viewOnly, "view", false, "print only the presentation view")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "analyze <image>",
			Short: "Run OCR on an image and match the recognized medicines",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				return run(cmd, func(ctx context.Context, svc *usecase.AnalysisService) (*domain.AnalysisResult, error) {
					return svc.Analyze(ctx, data)
				})
			},
		},
		&cobra.Command{
			Use:   "text <file|->",
			Short: "Match medicines in already recognized text",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				text, err := readText(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				return run(cmd, func(ctx context.Context, svc *usecase.AnalysisService) (*domain.AnalysisResult, error) {
					return svc.AnalyzeText(ctx, text)
				})
			},
		},
		&cobra.Command{
			Use:   "patterns",
			Short: "List the medicine pattern catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				catalog, err := app.Patterns(cfg)
				if err != nil {
					return err
				}
				for _, entry := range catalog.Entries() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", entry.Name, strings.Join(entry.Variations, ", "))
				}
				return nil
			},
		},
	)

	return root
}

type pipelineFunc func(ctx context.Context, svc *usecase.AnalysisService) (*domain.AnalysisResult, error)

func run(cmd *cobra.Command, pipeline pipelineFunc) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = app.NewLogger(cfg.Server.Environment); err != nil {
			return err
		}
		defer logger.Sync()
	}

	ctx := cmd.Context()
	patternCatalog, err := app.Patterns(cfg)
	if err != nil {
		return err
	}
	infra, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc := usecase.NewAnalysisService(app.Extractor(cfg, logger), patternCatalog, infra.Catalog, nil, logger)
	result, err := pipeline(ctx, svc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if viewOnly {
		return enc.Encode(usecase.Present(result))
	}
	return enc.Encode(map[string]any{
		"result": result,
		"view":   usecase.Present(result),
	})
}

func readText(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}
