package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docindex/internal/chunker"
	"docindex/internal/extractor"
)

type fakeEmbedder struct {
	calls   int
	failAt  int // 1-based call number to fail on, 0 means never
	lastErr error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		f.lastErr = errors.New("provider unavailable")
		return nil, f.lastErr
	}
	return []float32{float32(len(text)), 0, 0}, nil
}

type storedRecord struct {
	ChunkText string
	Filename  string
	Strategy  string
	Position  int
}

type fakeWriter struct {
	records []storedRecord
	failAt  int // 1-based write number to fail on, 0 means never
}

func (f *fakeWriter) Write(_ context.Context, chunkText string, embedding []float32, filename, strategy string, position int) (string, error) {
	if f.failAt > 0 && len(f.records)+1 == f.failAt {
		return "", errors.New("connection reset")
	}
	f.records = append(f.records, storedRecord{
		ChunkText: chunkText,
		Filename:  filename,
		Strategy:  strategy,
		Position:  position,
	})
	return "1", nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newChunker(t *testing.T) *chunker.Chunker {
	t.Helper()
	c, err := chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	return c
}

func TestRun_HappyPath(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "Hello world. This is great! Is it?")
	embedder := &fakeEmbedder{}
	writer := &fakeWriter{}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), path, chunker.StrategySentence)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "doc.txt", summary.Filename)
	assert.Equal(t, chunker.StrategySentence, summary.Strategy)
	assert.Equal(t, 34, summary.Characters)
	assert.Equal(t, 3, summary.ChunksProduced)
	assert.Equal(t, 3, summary.ChunksStored)
	assert.Equal(t, 3, embedder.calls)

	require.Len(t, writer.records, 3)
	assert.Equal(t, "Hello world.", writer.records[0].ChunkText)
	assert.Equal(t, "This is great!", writer.records[1].ChunkText)
	assert.Equal(t, "Is it?", writer.records[2].ChunkText)
	for i, rec := range writer.records {
		assert.Equal(t, i, rec.Position)
		assert.Equal(t, "doc.txt", rec.Filename)
		assert.Equal(t, "sentence", rec.Strategy)
	}
}

// The summary counts characters, not bytes.
func TestRun_CharacterCountIsRunes(t *testing.T) {
	content := "Привет мир. Это тест! Всё хорошо?"
	path := writeTempFile(t, "doc.txt", content)
	embedder := &fakeEmbedder{}
	writer := &fakeWriter{}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), path, chunker.StrategySentence)
	require.NoError(t, err)

	assert.Equal(t, utf8.RuneCountInString(content), summary.Characters)
	assert.Less(t, summary.Characters, len(content))
	assert.Equal(t, 3, summary.ChunksProduced)
	assert.Equal(t, 3, summary.ChunksStored)
}

func TestRun_UnsupportedFileType(t *testing.T) {
	embedder := &fakeEmbedder{}
	writer := &fakeWriter{}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), "/tmp/slides.pptx", chunker.StrategyFixed)
	require.Error(t, err)
	assert.ErrorIs(t, err, extractor.ErrUnsupportedFileType)
	assert.Nil(t, summary)
	assert.Zero(t, embedder.calls)
	assert.Empty(t, writer.records)
}

func TestRun_NoTextExtracted(t *testing.T) {
	path := writeTempFile(t, "empty.txt", "   \n\t ")
	embedder := &fakeEmbedder{}
	writer := &fakeWriter{}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), path, chunker.StrategyFixed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTextExtracted)
	require.NotNil(t, summary)
	assert.Zero(t, summary.ChunksProduced)
	assert.Zero(t, embedder.calls)
	assert.Empty(t, writer.records)
}

func TestRun_InvalidStrategy(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "Some content.")
	embedder := &fakeEmbedder{}
	writer := &fakeWriter{}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), path, chunker.Strategy("random"))
	require.Error(t, err)
	assert.ErrorIs(t, err, chunker.ErrInvalidStrategy)
	require.NotNil(t, summary)
	assert.Zero(t, summary.ChunksProduced)
	assert.Zero(t, summary.ChunksStored)
	assert.Zero(t, embedder.calls)
	assert.Empty(t, writer.records)
}

func TestRun_EmbedFailureAborts(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "One. Two. Three.")
	embedder := &fakeEmbedder{failAt: 2}
	writer := &fakeWriter{}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), path, chunker.StrategySentence)
	require.Error(t, err)
	require.NotNil(t, summary)

	// the first chunk was stored before the failure and stays stored
	assert.Equal(t, 3, summary.ChunksProduced)
	assert.Equal(t, 1, summary.ChunksStored)
	assert.Len(t, writer.records, 1)
	assert.Equal(t, 2, embedder.calls)
}

func TestRun_WriteFailureKeepsPriorWrites(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "One. Two. Three.")
	embedder := &fakeEmbedder{}
	writer := &fakeWriter{failAt: 3}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), path, chunker.StrategySentence)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 stored so far")
	require.NotNil(t, summary)

	assert.Equal(t, 3, summary.ChunksProduced)
	assert.Equal(t, 2, summary.ChunksStored)
	assert.Len(t, writer.records, 2)
}

func TestRun_DryRun(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "Hello world. This is great! Is it?")
	ix := New(newChunker(t), nil, nil, true)

	summary, err := ix.Run(context.Background(), path, chunker.StrategySentence)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 3, summary.ChunksProduced)
	assert.Zero(t, summary.ChunksStored)
}

func TestRun_FixedStrategyEndToEnd(t *testing.T) {
	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	path := writeTempFile(t, "doc.txt", string(content))
	embedder := &fakeEmbedder{}
	writer := &fakeWriter{}
	ix := New(newChunker(t), embedder, writer, false)

	summary, err := ix.Run(context.Background(), path, chunker.StrategyFixed)
	require.NoError(t, err)

	assert.Equal(t, 1000, summary.Characters)
	assert.Equal(t, 3, summary.ChunksProduced)
	assert.Equal(t, 3, summary.ChunksStored)
	require.Len(t, writer.records, 3)
	assert.Equal(t, string(content[0:500]), writer.records[0].ChunkText)
	assert.Equal(t, string(content[450:950]), writer.records[1].ChunkText)
	assert.Equal(t, string(content[900:]), writer.records[2].ChunkText)
}
