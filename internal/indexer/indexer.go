// Package indexer sequences the pipeline for one file: extract, chunk,
// embed each chunk, write each record. Processing is strictly sequential
// and fails fast; chunks written before a failure stay written.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"docindex/internal/chunker"
	"docindex/internal/extractor"
)

var (
	ErrNoTextExtracted  = errors.New("no text extracted from file")
	ErrNoChunksProduced = errors.New("no chunks produced")
)

// Embedder turns one chunk of text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkWriter persists one chunk record and returns its id.
type ChunkWriter interface {
	Write(ctx context.Context, chunkText string, embedding []float32, filename, strategy string, position int) (string, error)
}

type Indexer struct {
	chunker  *chunker.Chunker
	embedder Embedder
	writer   ChunkWriter
	dryRun   bool
}

// New wires the pipeline. embedder and writer may be nil when dryRun is
// set; a dry run stops after chunking.
func New(c *chunker.Chunker, embedder Embedder, writer ChunkWriter, dryRun bool) *Indexer {
	return &Indexer{chunker: c, embedder: embedder, writer: writer, dryRun: dryRun}
}

// Summary reports one run. On failure partway through storage it still
// carries the counts reached so far.
type Summary struct {
	Filename       string
	Strategy       chunker.Strategy
	Characters     int
	ChunksProduced int
	ChunksStored   int
}

// Run processes a single file. The returned Summary is non-nil whenever
// the input file could be read, even if the run failed later.
func (ix *Indexer) Run(ctx context.Context, filePath string, strategy chunker.Strategy) (*Summary, error) {
	log.Info().Str("file", filePath).Str("strategy", string(strategy)).Msg("Processing file")

	text, err := extractor.Extract(filePath)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	summary := &Summary{
		Filename:   filepath.Base(filePath),
		Strategy:   strategy,
		Characters: utf8.RuneCountInString(text),
	}
	if text == "" {
		return summary, ErrNoTextExtracted
	}
	log.Info().Int("characters", summary.Characters).Msg("Text extracted")

	chunks, err := ix.chunker.Chunk(text, strategy)
	if err != nil {
		return summary, err
	}
	summary.ChunksProduced = len(chunks)
	if len(chunks) == 0 {
		return summary, ErrNoChunksProduced
	}
	log.Info().Int("chunks", len(chunks)).Msg("Text chunked")

	if ix.dryRun {
		log.Info().Msg("Dry run, skipping embedding and storage")
		return summary, nil
	}

	for i, chunk := range chunks {
		vec, err := ix.embedder.Embed(ctx, chunk)
		if err != nil {
			return summary, fmt.Errorf("embed chunk %d of %d: %w", i+1, len(chunks), err)
		}
		id, err := ix.writer.Write(ctx, chunk, vec, summary.Filename, string(strategy), i)
		if err != nil {
			return summary, fmt.Errorf("store chunk %d of %d (%d stored so far): %w",
				i+1, len(chunks), summary.ChunksStored, err)
		}
		summary.ChunksStored++
		log.Debug().Str("id", id).Int("position", i).Msg("Chunk stored")
	}

	log.Info().Int("count", summary.ChunksStored).Msg("Embeddings generated")
	log.Info().Int("count", summary.ChunksStored).Msg("Chunks stored")
	return summary, nil
}
