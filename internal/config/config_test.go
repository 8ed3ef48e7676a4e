package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.False(t, cfg.ContinueOnError)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "windows-1252", cfg.Source.Encoding)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, "columns", cfg.JSON.Orient)
	assert.Equal(t, "epoch", cfg.JSON.DateFormat)
	assert.Equal(t, "root", cfg.XML.RootNodeName)
	assert.Equal(t, "item", cfg.XML.RecordNodeName)
	assert.Equal(t, "Sheet1", cfg.XLSX.SheetName)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
continue_on_error: true
verbose: false
workers: 4
csv:
  delimiter: ";"
json:
  orient: records
  date_format: iso
xml:
  root_node_name: people
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.ContinueOnError)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, "records", cfg.JSON.Orient)
	assert.Equal(t, "iso", cfg.JSON.DateFormat)
	assert.Equal(t, "people", cfg.XML.RootNodeName)
	assert.Equal(t, "item", cfg.XML.RecordNodeName, "unset keys keep their defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SAS7BDAT_CONTINUE_ON_ERROR", "true")
	t.Setenv("SAS7BDAT_XML_RECORD_NODE_NAME", "row")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ContinueOnError)
	assert.Equal(t, "row", cfg.XML.RecordNodeName)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{name: "zero workers", key: "workers", val: 0},
		{name: "bad level", key: "log_level", val: "chatty"},
		{name: "bad format", key: "log_format", val: "xml"},
		{name: "long delimiter", key: "csv.delimiter", val: ",,"},
		{name: "bad orient", key: "json.orient", val: "index"},
		{name: "bad date format", key: "json.date_format", val: "unix"},
		{name: "empty root", key: "xml.root_node_name", val: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)

			_, err := LoadWithViper(v)
			assert.Error(t, err)
		})
	}
}

func TestTabDelimiter(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("csv.delimiter", `\t`)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, "\t", cfg.CSV.Delimiter)
}
