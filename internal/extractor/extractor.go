// Package extractor turns a document file into its plain-text content.
// The file type is resolved from the extension; extraction failures are
// reported as errors while files with no extractable text (image-only
// PDFs and the like) come back as an empty string.
package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// Extract reads the file and returns its full text content, trimmed of
// leading and trailing whitespace.
func Extract(filePath string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".pdf":
		return extractPDF(filePath)
	case ".docx":
		return extractDOCX(filePath)
	case ".txt":
		return extractText(filePath)
	case ".md", ".markdown":
		return extractMarkdown(filePath)
	case ".xlsx":
		return extractXLSX(filePath)
	case ".ods":
		return extractODS(filePath)
	default:
		return "", fmt.Errorf("%w: %q (supported: .pdf, .docx, .txt, .md, .xlsx, .ods)", ErrUnsupportedFileType, ext)
	}
}

func extractPDF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat pdf: %w", err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		sb.WriteString(pageText)
	}
	return strings.TrimSpace(sb.String()), nil
}

func extractDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer r.Close()

	return strings.TrimSpace(docxBodyText(r.Editable().GetContent())), nil
}

// docxBodyText pulls the text runs out of a document.xml body. Paragraphs
// become lines, so empty paragraphs in the source document survive as blank
// lines and remain visible to the paragraph chunking strategy.
func docxBodyText(body string) string {
	paragraphs := strings.Split(body, "</w:p>")
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if !strings.Contains(p, "<w:p") {
			// trailing section properties, not a paragraph
			continue
		}
		lines = append(lines, runText(p))
	}
	return strings.Join(lines, "\n")
}

// runText concatenates the contents of every <w:t> element in one paragraph
// fragment. The open tag may carry attributes (xml:space="preserve").
func runText(fragment string) string {
	var sb strings.Builder
	rest := fragment
	for {
		idx := strings.Index(rest, "<w:t")
		if idx < 0 {
			break
		}
		rest = rest[idx+len("<w:t"):]
		// reject <w:tab/>, <w:tc> and friends
		if len(rest) == 0 || (rest[0] != '>' && rest[0] != ' ' && rest[0] != '/') {
			continue
		}
		gt := strings.Index(rest, ">")
		if gt < 0 {
			break
		}
		if strings.HasSuffix(rest[:gt], "/") {
			rest = rest[gt+1:]
			continue
		}
		rest = rest[gt+1:]
		end := strings.Index(rest, "</w:t>")
		if end < 0 {
			break
		}
		sb.WriteString(xmlUnescaper.Replace(rest[:end]))
		rest = rest[end+len("</w:t>"):]
	}
	return sb.String()
}

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func extractText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
