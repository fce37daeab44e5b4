// Package document loads policy documents as raw text.
package document

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"offerletter/internal/domain"
	oerrors "offerletter/internal/errors"
)

// SupportedExtensions lists the policy file types Load understands.
var SupportedExtensions = []string{".txt", ".md", ".markdown", ".pdf"}

// Load reads the policy document at path and tags it with source. Any
// failure, including a document with no extractable text, is an ingestion
// failure.
func Load(path string, source domain.SourceTag) (domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var content string
	switch ext {
	case ".pdf":
		text, err := PDFText(path)
		if err != nil {
			return domain.Document{}, oerrors.NewIngestionFailure(path, err)
		}
		content = text
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Document{}, oerrors.NewIngestionFailure(path, err)
		}
		if !utf8.Valid(data) {
			return domain.Document{}, oerrors.NewIngestionFailure(path, fmt.Errorf("not valid UTF-8 text"))
		}
		if ext == ".txt" {
			content = string(data)
		} else {
			content = MarkdownText(data)
		}
	default:
		return domain.Document{}, oerrors.NewIngestionFailure(path,
			fmt.Errorf("unsupported policy format %q (want one of %s)", filepath.Ext(path), strings.Join(SupportedExtensions, ", ")))
	}
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return domain.Document{}, oerrors.NewIngestionFailure(path, fmt.Errorf("no text extracted"))
	}
	return domain.Document{
		ID:      hashString(path),
		Path:    path,
		Source:  source,
		Content: content,
	}, nil
}

// MarkdownText extracts the readable text of a markdown document: one line
// per paragraph, heading, list item or code line, with markup removed.
func MarkdownText(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					buf.Write(seg.Value(src))
				}
				return ast.WalkSkipChildren, nil
			}
		default:
			if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
					buf.WriteByte('\n')
				}
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// PDFText extracts the plain text of every page of the PDF at path.
// Malformed files are reported as errors, never panics.
func PDFText(path string) (text string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read pdf: %v", rec)
		}
	}()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return buf.String(), nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
