package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// IngestConfig tunes the defaults the loader applies to incomplete source records.
type IngestConfig struct {
	PlaceholderVendorKey   string            `mapstructure:"placeholder_vendor_key"`
	InvoiceNumberPrefix    string            `mapstructure:"invoice_number_prefix"`
	DefaultCurrency        string            `mapstructure:"default_currency"`
	DefaultCountry         string            `mapstructure:"default_country"`
	DefaultPaymentTerms    string            `mapstructure:"default_payment_terms"`
	DefaultPaymentMethod   string            `mapstructure:"default_payment_method"`
	DefaultLineDescription string            `mapstructure:"default_line_description"`
	ProgressEvery          int               `mapstructure:"progress_every"`
	StatusSynonyms         map[string]string `mapstructure:"status_synonyms"`
}

func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		PlaceholderVendorKey:   "VND-1",
		InvoiceNumberPrefix:    "INV-",
		DefaultCurrency:        "USD",
		DefaultCountry:         "USA",
		DefaultPaymentTerms:    "Net 30",
		DefaultPaymentMethod:   "BANK_TRANSFER",
		DefaultLineDescription: "Line Item",
		ProgressEvery:          10,
		StatusSynonyms:         map[string]string{},
	}
}

// LoadIngestConfig reads ingest.yml from the standard locations, falling back to defaults.
func LoadIngestConfig() (IngestConfig, error) {
	return LoadIngestConfigFile("")
}

// LoadIngestConfigFile reads the ingest settings from path, or searches the standard
// locations when path is empty. Environment variables prefixed INVOICELENS_ override
// file values (INVOICELENS_INGEST_DEFAULT_CURRENCY=EUR).
func LoadIngestConfigFile(path string) (IngestConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ingest")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/invoicelens")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INVOICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultIngestConfig()
	v.SetDefault("ingest.placeholder_vendor_key", defaults.PlaceholderVendorKey)
	v.SetDefault("ingest.invoice_number_prefix", defaults.InvoiceNumberPrefix)
	v.SetDefault("ingest.default_currency", defaults.DefaultCurrency)
	v.SetDefault("ingest.default_country", defaults.DefaultCountry)
	v.SetDefault("ingest.default_payment_terms", defaults.DefaultPaymentTerms)
	v.SetDefault("ingest.default_payment_method", defaults.DefaultPaymentMethod)
	v.SetDefault("ingest.default_line_description", defaults.DefaultLineDescription)
	v.SetDefault("ingest.progress_every", defaults.ProgressEvery)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return IngestConfig{}, fmt.Errorf("read ingest config: %w", err)
		}
	}

	var wrapper struct {
		Ingest IngestConfig `mapstructure:"ingest"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return IngestConfig{}, fmt.Errorf("decode ingest config: %w", err)
	}
	cfg := wrapper.Ingest
	if cfg.StatusSynonyms == nil {
		cfg.StatusSynonyms = map[string]string{}
	}
	if err := validateIngestConfig(cfg); err != nil {
		return IngestConfig{}, err
	}
	return cfg, nil
}

func validateIngestConfig(cfg IngestConfig) error {
	if strings.TrimSpace(cfg.PlaceholderVendorKey) == "" {
		return errors.New("ingest.placeholder_vendor_key cannot be empty")
	}
	if strings.TrimSpace(cfg.InvoiceNumberPrefix) == "" {
		return errors.New("ingest.invoice_number_prefix cannot be empty")
	}
	if strings.TrimSpace(cfg.DefaultCurrency) == "" {
		return errors.New("ingest.default_currency cannot be empty")
	}
	if cfg.ProgressEvery < 0 {
		return errors.New("ingest.progress_every cannot be negative")
	}
	return nil
}
