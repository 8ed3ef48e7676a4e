package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobsList(t *testing.T) {
	data := []byte(`
- sourcePath: a.sas7bdat
  destinationPath: a.csv
- sourcePath: b.sas7bdat
  destinationPath: b.csv
`)
	jobs, err := ParseJobs(data)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a.sas7bdat", jobs[0]["sourcePath"])
	assert.Equal(t, "b.csv", jobs[1]["destinationPath"])
}

func TestParseJobsNested(t *testing.T) {
	data := []byte(`
jobs:
  - sourcePath: a.sas7bdat
    destinationPath: a.xml
    rootNodeName: people
`)
	jobs, err := ParseJobs(data)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "people", jobs[0]["rootNodeName"])
}

func TestParseJobsEmpty(t *testing.T) {
	jobs, err := ParseJobs(nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestParseJobsScalar(t *testing.T) {
	_, err := ParseJobs([]byte("just a string"))
	assert.Error(t, err)
}

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- sourcePath: x.sas7bdat\n  destinationPath: x.json\n"), 0o644))

	jobs, err := LoadJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	_, err = LoadJobs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
