package source

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestReadJSONArrayAndObject(t *testing.T) {
	recs, err := ReadFile(writeFile(t, "data.json", `[{"invoiceNumber": "A-1", "total": 110.50}, {"invoiceNumber": "A-2"}]`))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	first := recs[0].(map[string]any)
	assert.Equal(t, json.Number("110.50"), first["total"])

	recs, err = ReadFile(writeFile(t, "one.json", `{"invoiceNumber": "A-1"}`))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestReadJSONUnparseable(t *testing.T) {
	for _, content := range []string{"", "   ", "{not json", `[{"a":1}] trailing`} {
		_, err := ReadFile(writeFile(t, "bad.json", content))
		require.Error(t, err, content)
		assert.True(t, errors.Is(err, ErrSourceUnparseable), content)
	}
}

func TestUnknownExtensionIsJSON(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("export.dat"))
	assert.Equal(t, FormatYAML, DetectFormat("export.YML"))
	assert.Equal(t, FormatXLSX, DetectFormat("export.xlsx"))
}

func TestReadYAML(t *testing.T) {
	content := strings.Join([]string{
		"- invoiceNumber: Y-1",
		"  invoiceDate: 2024-01-15",
		"  vendor:",
		"    name: Acme Co",
		"  lineItems:",
		"    - description: Widget",
		"      quantity: 2",
		"- invoiceNumber: Y-2",
		"  1: numeric key",
	}, "\n")
	recs, err := ReadFile(writeFile(t, "data.yaml", content))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0].(map[string]any)
	vendor := first["vendor"].(map[string]any)
	assert.Equal(t, "Acme Co", vendor["name"])
	assert.Len(t, first["lineItems"], 1)

	second := recs[1].(map[string]any)
	assert.Equal(t, "numeric key", second["1"])
}

func TestReadYAMLUnparseable(t *testing.T) {
	_, err := ReadFile(writeFile(t, "bad.yml", "a: [unclosed"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnparseable))
}

func TestReadXLSXExpandsDottedHeaders(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"invoiceNumber", "vendor.name", "total", "lineItems.0.description", "lineItems.1.description"},
		{"X-1", "Acme Co", "110", "Widget", "Gadget"},
		{},
		{"X-2", "Globex", "", "Bolt", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0].(map[string]any)
	assert.Equal(t, "X-1", first["invoiceNumber"])
	assert.Equal(t, "Acme Co", first["vendor"].(map[string]any)["name"])
	items := first["lineItems"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Gadget", items[1].(map[string]any)["description"])

	second := recs[1].(map[string]any)
	_, hasTotal := second["total"]
	assert.False(t, hasTotal)
	assert.Len(t, second["lineItems"], 1)
}

func TestReadXLSXKeepsNumericKeysThatAreNotIndexes(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"invoiceNumber", "totals.2024", "totals.2025", "payments.0.amount", "payments.1.amount"},
		{"X-1", "10", "20", "", "5"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "years.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0].(map[string]any)
	assert.Equal(t, map[string]any{"2024": "10", "2025": "20"}, rec["totals"])
	payments := rec["payments"].([]any)
	require.Len(t, payments, 1)
	assert.Equal(t, "5", payments[0].(map[string]any)["amount"])
}

func TestReadXLSXUnparseable(t *testing.T) {
	_, err := ReadFile(writeFile(t, "bad.xlsx", "not a zip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnparseable))
}
