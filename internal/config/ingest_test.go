package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIngestConfigDefaults(t *testing.T) {
	cfg, err := LoadIngestConfig()
	require.NoError(t, err)

	assert.Equal(t, "VND-1", cfg.PlaceholderVendorKey)
	assert.Equal(t, "INV-", cfg.InvoiceNumberPrefix)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, "USA", cfg.DefaultCountry)
	assert.Equal(t, "Net 30", cfg.DefaultPaymentTerms)
	assert.Equal(t, "BANK_TRANSFER", cfg.DefaultPaymentMethod)
	assert.Equal(t, 10, cfg.ProgressEvery)
	assert.NotNil(t, cfg.StatusSynonyms)
}

func TestLoadIngestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.yml")
	body := []byte(`ingest:
  default_currency: EUR
  progress_every: 50
  status_synonyms:
    settled: PAID
    on_hold: DRAFT
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := LoadIngestConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Equal(t, 50, cfg.ProgressEvery)
	assert.Equal(t, "VND-1", cfg.PlaceholderVendorKey)
	assert.Equal(t, "PAID", cfg.StatusSynonyms["settled"])
	assert.Equal(t, "DRAFT", cfg.StatusSynonyms["on_hold"])
}

func TestLoadIngestConfigEnvOverride(t *testing.T) {
	t.Setenv("INVOICELENS_INGEST_PLACEHOLDER_VENDOR_KEY", "UNKNOWN-VENDOR")

	cfg, err := LoadIngestConfig()
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN-VENDOR", cfg.PlaceholderVendorKey)
}

func TestLoadIngestConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadIngestConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadIngestConfigRejectsNegativeProgress(t *testing.T) {
	t.Setenv("INVOICELENS_INGEST_PROGRESS_EVERY", "-1")

	_, err := LoadIngestConfig()
	require.Error(t, err)
}
