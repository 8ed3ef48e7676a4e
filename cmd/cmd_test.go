package cmd

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sas7bdat-converter/internal/config"
	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
)

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)

	out := buf.String()
	assert.Contains(t, out, "SAS7BDAT Converter")
	assert.Contains(t, out, "Version:    "+Version)
	assert.Contains(t, out, "Parquet:")
}

func TestBatchOptionsFlagsOverrideConfig(t *testing.T) {
	cfg = config.Default()
	cfg.Workers = 2

	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)

	opts := batchOptions(cmd)
	assert.False(t, opts.ContinueOnError)
	assert.True(t, opts.Verbose)
	assert.Equal(t, 2, opts.Workers)

	require.NoError(t, cmd.Flags().Set("continue-on-error", "true"))
	require.NoError(t, cmd.Flags().Set("quiet", "true"))
	require.NoError(t, cmd.Flags().Set("workers", "4"))

	opts = batchOptions(cmd)
	assert.True(t, opts.ContinueOnError)
	assert.False(t, opts.Verbose)
	assert.Equal(t, 4, opts.Workers)
}

func TestBuildSummary(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	outcomes := []converter.Outcome{
		{Index: 0, Source: "a.sas7bdat", Destination: "a.csv"},
		{Index: 1, Source: "b.sas7bdat", Destination: "b.csv", Err: errors.New("corrupt")},
	}

	summary := buildSummary(converter.CSV, outcomes, start, start.Add(time.Second))

	assert.Equal(t, "csv", summary.Format)
	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 1, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	require.Len(t, summary.FailedFilesList, 1)
	assert.Equal(t, "corrupt", summary.FailedFilesList[0].Error)
	assert.Equal(t, "a.csv", summary.ProcessedFiles[0].OutputFile)
	assert.NotEmpty(t, summary.RunID)
}

func TestFinishRunReturnsFailureCount(t *testing.T) {
	cfg = config.Default()
	report = false

	outcomes := []converter.Outcome{
		{Source: "a.sas7bdat", Destination: "a.json"},
		{Source: "b.sas7bdat", Destination: "b.json", Err: errors.New("corrupt")},
	}

	err := finishRun(converter.JSON, outcomes, nil, time.Now())
	require.Error(t, err)
	assert.Equal(t, "1 of 2 file(s) failed to convert", err.Error())

	runErr := errors.New("stopped")
	assert.Equal(t, runErr, finishRun(converter.JSON, outcomes, runErr, time.Now()))

	assert.NoError(t, finishRun(converter.JSON, outcomes[:1], nil, time.Now()))
}
