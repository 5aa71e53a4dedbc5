package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/innovo-consulting/funding-console/internal/programs/domain"
	"github.com/innovo-consulting/funding-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectGuideline_CountsPages(t *testing.T) {
	g, err := InspectGuideline("dir/rules.pdf", testutil.MinimalPDF(3))
	require.NoError(t, err)
	assert.Equal(t, "rules.pdf", g.Name)
	assert.Equal(t, 3, g.Pages)
}

func TestInspectGuideline_RejectsNonPDF(t *testing.T) {
	cases := map[string][]byte{
		"empty.pdf":  nil,
		"notes.pdf":  []byte("just some text pretending to be a pdf"),
		"image.pdf":  {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0},
		"broken.pdf": []byte("%PDF-1.4\nthis is not really a pdf body\n"),
	}
	for name, content := range cases {
		_, err := InspectGuideline(name, content)
		assert.ErrorIs(t, err, domain.ErrNotPDF, name)
	}
}

func TestReadGuideline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.pdf")
	require.NoError(t, os.WriteFile(path, testutil.MinimalPDF(1), 0o600))

	g, err := ReadGuideline(path)
	require.NoError(t, err)
	assert.Equal(t, "guide.pdf", g.Name)
	assert.Equal(t, 1, g.Pages)

	_, err = ReadGuideline(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
