package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements(768)
	require.Len(t, stmts, 5)

	joined := strings.Join(stmts, ";\n")
	assert.Contains(t, joined, "CREATE EXTENSION IF NOT EXISTS vector")
	assert.Contains(t, joined, "VECTOR(768)")
	assert.Contains(t, joined, "ON document_chunks (filename)")
	assert.Contains(t, joined, "ON document_chunks (split_strategy)")
	assert.Contains(t, joined, "USING hnsw (embedding vector_cosine_ops)")
}

func TestSchemaStatements_DimensionFromConfig(t *testing.T) {
	joined := strings.Join(schemaStatements(1536), ";\n")
	assert.Contains(t, joined, "VECTOR(1536)")
	assert.NotContains(t, joined, "VECTOR(768)")
}
