package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Class 5A roster",
		Headers: []string{"Name", "Class"},
		Rows: []map[string]string{
			{"Name": "Asha", "Class": "5A"},
			{"Name": "Ravi, Jr", "Class": "5A"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Class", lines[0])
	assert.Equal(t, `"Ravi, Jr",5A`, lines[2])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRendererMetadata(t *testing.T) {
	var r Renderer = NewPDFExporter()
	assert.Equal(t, "pdf", r.Extension())
	r = NewCSVExporter()
	assert.Equal(t, "text/csv", r.ContentType())
}
