// loader ingests Stack Overflow questions into Neo4j with embeddings, and
// offers the code-concept extraction flow. Run from project root:
//
//	go run ./cmd/loader load --tag neo4j --page 1
//	go run ./cmd/loader load-top
//	go run ./cmd/loader import-code --name main.go --path ./main.go main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/e64/stackgraph/internal/config"
	"github.com/e64/stackgraph/internal/embedding"
	"github.com/e64/stackgraph/internal/extract"
	"github.com/e64/stackgraph/internal/graph"
	"github.com/e64/stackgraph/internal/ingest"
	"github.com/e64/stackgraph/internal/stack"
)

func main() {
	_ = godotenv.Load(".env") // ignore error if .env missing

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "loader",
		Short:         "Ingest Stack Overflow data into Neo4j",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLoadCmd(logger), newLoadTopCmd(logger), newImportCodeCmd(logger))

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLoadCmd(logger *slog.Logger) *cobra.Command {
	var (
		tag   string
		page  int
		pages int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Ingest pages of questions for a tag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			loader, closeFn, err := buildLoader(ctx, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			return loader.LoadPages(ctx, tag, page, pages)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "neo4j", "tag to ingest")
	cmd.Flags().IntVar(&page, "page", 1, "first page to ingest")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to ingest")
	return cmd
}

func newLoadTopCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "load-top",
		Short: "Ingest the top-voted question batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			loader, closeFn, err := buildLoader(ctx, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			return loader.LoadHighScore(ctx)
		},
	}
}

func newImportCodeCmd(logger *slog.Logger) *cobra.Command {
	var (
		name string
		path string
	)

	cmd := &cobra.Command{
		Use:   "import-code [file|-]",
		Short: "Extract domain concepts from a source file via the LLM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			code, err := readCode(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}
			if path == "" {
				path = args[0]
			}

			client := extract.NewClient(cfg.LLM)
			logger.Info("extracting concepts", slog.String("model", client.Model()), slog.String("file", name))

			sink := extract.TokenSinkFunc(func(token string) {
				fmt.Fprint(os.Stderr, token)
			})
			result, err := client.ExtractFromCode(ctx, name, path, code, sink)
			if err != nil {
				return fmt.Errorf("extract from code: %w", err)
			}
			fmt.Fprintln(os.Stderr)

			// Extraction results are only reported; there is no
			// persistence path for them.
			logger.Info("extraction complete", slog.Int("chars", len(result)))
			fmt.Println(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "file name shown to the model")
	cmd.Flags().StringVar(&path, "path", "", "file path shown to the model")
	return cmd
}

func readCode(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", arg, err)
	}
	return string(data), nil
}

// buildLoader wires the full ingestion pipeline: graph client, constraints,
// embedder, vector indexes (in that order — provisioning must succeed before
// any upsert is issued).
func buildLoader(ctx context.Context, logger *slog.Logger) (*ingest.Loader, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	graphClient, err := graph.NewClient(cfg.Neo4j)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to neo4j: %w", err)
	}
	closeFn := func() { _ = graphClient.Close(ctx) }

	if err := graphClient.Verify(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	logger.Info("connected to neo4j", slog.String("uri", cfg.Neo4j.URI))

	if err := graphClient.EnsureConstraints(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure constraints: %w", err)
	}

	embedder, err := embedding.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("init embedder: %w", err)
	}
	logger.Info("embeddings enabled",
		slog.String("model", embedder.ModelID()),
		slog.Int("dimension", embedder.Dimension()))

	if err := graphClient.EnsureVectorIndexes(ctx, embedder.Dimension()); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure vector indexes: %w", err)
	}

	source := stack.NewClient(cfg.Stack)
	normalizer := ingest.NewNormalizer(embedder, cfg.Embedding.Concurrency, logger)
	loader := ingest.NewLoader(source, normalizer, graphClient, logger)
	return loader, closeFn, nil
}
