package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offerletter/internal/domain"
	oerrors "offerletter/internal/errors"
)

func TestLoad_Text(t *testing.T) {
	doc, err := Load(filepath.Join("..", "..", "testdata", "Travel_Policy.txt"), domain.SourceTravel)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceTravel, doc.Source)
	assert.NotEmpty(t, doc.ID)
	assert.Contains(t, doc.Content, "L3: Economy on all flights")
	assert.Contains(t, doc.Content, "Rs. 5,000/night")
}

func TestLoad_Markdown(t *testing.T) {
	doc, err := Load(filepath.Join("..", "..", "testdata", "Leave_Policy.md"), domain.SourceLeave)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceLeave, doc.Source)
	assert.Contains(t, doc.Content, "Leave & Work From Office Policy")
	assert.Contains(t, doc.Content, "up to 10 days may be carried forward")
	assert.Contains(t, doc.Content, "Engineering: 3 days/week minimum")
	assert.NotContains(t, doc.Content, "**")
	assert.NotContains(t, doc.Content, "## ")
}

func TestLoad_PDF(t *testing.T) {
	doc, err := Load(filepath.Join("..", "..", "testdata", "Travel_Policy.pdf"), domain.SourceTravel)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceTravel, doc.Source)
	assert.True(t, strings.HasPrefix(doc.Content, "Travel Policy\n"))
	assert.Contains(t, doc.Content, "L3: Economy on all flights.")
	assert.Contains(t, doc.Content, "Rs. 5,000/night")
}

func TestPDFText_Truncated(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", "Travel_Policy.pdf"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cut.pdf")
	require.NoError(t, os.WriteFile(path, src[:len(src)/2], 0o644))

	_, err = PDFText(path)
	assert.Error(t, err)

	_, err = Load(path, domain.SourceTravel)
	assert.True(t, oerrors.Is(err, oerrors.ErrIngestionFailure))
}

func TestLoad_IDIsStablePerPath(t *testing.T) {
	p := filepath.Join("..", "..", "testdata", "Travel_Policy.txt")
	a, err := Load(p, domain.SourceTravel)
	require.NoError(t, err)
	b, err := Load(p, domain.SourceTravel)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func TestLoad_Failures(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n\t\n"), 0o644))
	pdf := filepath.Join(dir, "policy.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4\nnot really a pdf\n"), 0o644))
	docx := filepath.Join(dir, "policy.docx")
	require.NoError(t, os.WriteFile(docx, []byte("PK"), 0o644))
	binary := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0xfd}, 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope.txt")},
		{"empty", empty},
		{"unparseable pdf", pdf},
		{"unsupported", docx},
		{"invalid utf8", binary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, domain.SourceLeave)
			require.Error(t, err)
			assert.True(t, oerrors.Is(err, oerrors.ErrIngestionFailure))
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestMarkdownText(t *testing.T) {
	src := "# Title\n\nSome *bold* text\nwrapped\n\n- item one\n- item two\n\n```\ncode line\n```\n"
	got := MarkdownText([]byte(src))

	assert.Contains(t, got, "Title\n")
	assert.Contains(t, got, "Some bold text\nwrapped\n")
	assert.Contains(t, got, "item one\n")
	assert.Contains(t, got, "item two\n")
	assert.Contains(t, got, "code line")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "```")
}
