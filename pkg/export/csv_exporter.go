// Package export renders the admin payments listing as downloadable CSV or PDF files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// Dataset is a format-independent payments table: one row per payment keyed by
// header, plus the title and generation footer used by the PDF layout.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	Footer  string
}

// CSVExporter writes payment exports for spreadsheet import.
type CSVExporter struct{}

// NewCSVExporter returns the exporter behind format=csv.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType is sent as the download Content-Type.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Render writes the header row followed by one record per payment, in header
// order. Missing cells are empty. Title and footer are PDF-only. Text cells
// that a spreadsheet would evaluate as a formula are prefixed with a quote.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = escapeFormula(row[header])
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			return cell
		}
		return "'" + cell
	}
	return cell
}
