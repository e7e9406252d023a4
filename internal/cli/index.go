package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"docindex/internal/chunker"
	"docindex/internal/config"
	"docindex/internal/db"
	"docindex/internal/embedding"
	"docindex/internal/indexer"
	"docindex/internal/localstore"
)

var (
	indexStrategy string
	indexStore    string
	indexConfig   string
	indexDryRun   bool
)

var indexCmd = &cobra.Command{
	Use:   "index <file_path>",
	Short: "Extract, chunk, embed and store one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexStrategy, "strategy", "s", string(chunker.StrategyFixed),
		"chunking strategy: fixed, sentence or paragraph")
	indexCmd.Flags().StringVar(&indexStore, "store", "",
		"store backend: postgres or local (overrides config)")
	indexCmd.Flags().StringVar(&indexConfig, "config", "", "path to a YAML config file")
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "chunk only, skip embedding and storage")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	filePath := args[0]

	strategy, err := chunker.ParseStrategy(indexStrategy)
	if err != nil {
		return err
	}

	cfg, err := config.Load(indexConfig)
	if err != nil {
		return err
	}
	if indexStore != "" {
		backend, err := config.ParseBackend(indexStore)
		if err != nil {
			return err
		}
		cfg.Store.Backend = backend
	}

	ck, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return err
	}

	if indexDryRun {
		return report(indexer.New(ck, nil, nil, true).Run(ctx, filePath, strategy))
	}

	// credentials are checked before the input file is touched
	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}

	embedder, err := embedding.NewGeminiClient(ctx, cfg.Embedding, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}

	var writer indexer.ChunkWriter
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		bdb, err := db.Connect(ctx, cfg.PostgresURL, cfg.Store.Debug)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer bdb.Close()
		if err := db.Init(ctx, bdb, cfg.Embedding.Dimension); err != nil {
			return err
		}
		writer = db.NewStore(bdb, cfg.Embedding.Dimension)
	case config.BackendLocal:
		store, err := localstore.Open(cfg.Store.Path, cfg.Store.Collection)
		if err != nil {
			return err
		}
		writer = store
	}

	return report(indexer.New(ck, embedder, writer, false).Run(ctx, filePath, strategy))
}

func report(summary *indexer.Summary, err error) error {
	if err != nil {
		if summary != nil && summary.ChunksProduced > 0 {
			log.Error().
				Int("stored", summary.ChunksStored).
				Int("produced", summary.ChunksProduced).
				Msg("Indexing aborted")
		}
		return err
	}
	log.Info().
		Str("file", summary.Filename).
		Str("strategy", string(summary.Strategy)).
		Int("chunks", summary.ChunksProduced).
		Int("stored", summary.ChunksStored).
		Msg("Indexing complete")
	return nil
}
