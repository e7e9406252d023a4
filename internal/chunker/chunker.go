package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects how text is split into chunks.
type Strategy string

const (
	StrategyFixed     Strategy = "fixed"
	StrategySentence  Strategy = "sentence"
	StrategyParagraph Strategy = "paragraph"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

var ErrInvalidStrategy = errors.New("invalid chunking strategy")

// ParseStrategy validates a strategy name coming from the CLI.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategyFixed, StrategySentence, StrategyParagraph:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q (use fixed, sentence or paragraph)", ErrInvalidStrategy, s)
	}
}

// Chunker splits document text into chunks. The fixed strategy is
// parameterized by size and overlap; sentence and paragraph splitting take
// no parameters.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text according to the strategy. Every returned chunk is
// trimmed and non-empty; empty input yields an empty result. The input is
// never mutated and the same input always produces the same output.
func (c *Chunker) Chunk(text string, strategy Strategy) ([]string, error) {
	switch strategy {
	case StrategyFixed:
		return c.fixedSize(text), nil
	case StrategySentence:
		return splitSentences(text), nil
	case StrategyParagraph:
		return splitParagraphs(text), nil
	default:
		return nil, fmt.Errorf("%w: %q (use fixed, sentence or paragraph)", ErrInvalidStrategy, strategy)
	}
}

// fixedSize emits windows of c.size characters advancing by c.size-c.overlap.
// Size and overlap count characters, not bytes, so multi-byte text is never
// cut mid-rune. The stride is strictly positive (overlap < size), so the
// loop terminates. Windows that trim down to nothing are dropped without
// stopping the walk. Once a window reaches the end of the text the walk
// stops: the next window would be a pure suffix of this one.
func (c *Chunker) fixedSize(text string) []string {
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += c.size - c.overlap {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitSentences cuts after '.', '!' or '?' when whitespace follows. The
// terminator stays attached to its sentence and the whitespace run is
// discarded. A terminator with no following whitespace (mid-word dots,
// end of text) is not a boundary. Text without any terminator comes back
// as a single trimmed chunk.
func splitSentences(text string) []string {
	var (
		chunks []string
		start  int
	)
	flush := func(end int) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			chunks = append(chunks, s)
		}
	}
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		if i+1 >= len(text) || !isSpace(text[i+1]) {
			continue
		}
		flush(i + 1)
		for i+1 < len(text) && isSpace(text[i+1]) {
			i++
		}
		start = i + 1
	}
	flush(len(text))
	return chunks
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// Blank-line boundary: a newline, optional whitespace, another newline.
// Runs of three or more newlines still count as one separator.
var paragraphBoundary = regexp.MustCompile(`\n\s*\n`)

func splitParagraphs(text string) []string {
	var chunks []string
	for _, seg := range paragraphBoundary.Split(text, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			chunks = append(chunks, seg)
		}
	}
	return chunks
}
