package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSettings_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v, DefaultSettings())

	cfg, err := readSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 0.18, cfg.Quotation.TaxRate)
	assert.Equal(t, "INR", cfg.Quotation.Currency)
	assert.Equal(t, "Q{YY}{MM}{DD}-{RAND6}", cfg.Quotation.CodeTemplate)
	assert.Equal(t, "IN", cfg.Outbound.DefaultRegion)
	assert.Equal(t, 1, cfg.Render.Parallelism)
}

func TestReadSettings_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	body := []byte("quotation:\n  taxRate: 0.05\n  currency: USD\noutbound:\n  defaultRegion: us\nrender:\n  parallelism: 4\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quoteflow.yml"), body, 0o600))

	v := viper.New()
	v.SetConfigName("quoteflow")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)
	setDefaults(v, DefaultSettings())
	require.NoError(t, v.ReadInConfig())

	cfg, err := readSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Quotation.TaxRate)
	assert.Equal(t, "USD", cfg.Quotation.Currency)
	assert.Equal(t, "US", cfg.Outbound.DefaultRegion)
	assert.Equal(t, 4, cfg.Render.Parallelism)
	assert.Equal(t, 7, cfg.Quotation.ValidityDays)
}

func TestReadSettings_RejectsInvalidTaxRate(t *testing.T) {
	v := viper.New()
	setDefaults(v, DefaultSettings())
	v.Set("quotation.taxRate", 1.5)

	_, err := readSettings(v)
	assert.Error(t, err)
}

func TestNewStaticSettings_Normalizes(t *testing.T) {
	s := DefaultSettings()
	s.Render.Parallelism = 0
	s.Quotation.CodeAttempts = 0

	holder := NewStaticSettings(s)
	assert.Equal(t, 1, holder.Get().Render.Parallelism)
	assert.Equal(t, 1, holder.Get().Quotation.CodeAttempts)
}
