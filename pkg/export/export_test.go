package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentsDataset() Dataset {
	return Dataset{
		Title:   "Payments",
		Headers: []string{"ID", "Amount", "Status"},
		Rows: []map[string]string{
			{"ID": "pay-1", "Amount": "10.00", "Status": "COMPLETED"},
			{"ID": "pay-2", "Amount": "5,50", "Status": "PENDING"},
		},
		Footer: "generated for tests",
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(paymentsDataset())
	require.NoError(t, err)
	assert.Equal(t, "ID,Amount,Status\npay-1,10.00,COMPLETED\npay-2,\"5,50\",PENDING\n", string(out))
}

func TestCSVExporterEscapesFormulaCells(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Student", "Amount"},
		Rows: []map[string]string{
			{"Student": "=HYPERLINK(\"x\")", "Amount": "-12.50"},
			{"Student": "@admin", "Amount": "+3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Student,Amount\n\"'=HYPERLINK(\"\"x\"\")\",-12.50\n'@admin,+3\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(paymentsDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterPaginatesWideDatasets(t *testing.T) {
	data := Dataset{Headers: []string{"a", "b", "c", "d", "e", "f"}}
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, map[string]string{"a": "x"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}
