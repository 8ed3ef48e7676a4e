package converter

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
	"github.com/ginjaninja78/sas7bdat-converter/internal/validation"
)

// recordingSink collects the outcomes handed to it.
type recordingSink struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recordingSink) sink(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func requests(dir string, names ...string) []Request {
	reqs := make([]Request, len(names))
	for i, name := range names {
		reqs[i] = Request{
			KeySourcePath:      name + ".sas7bdat",
			KeyDestinationPath: filepath.Join(dir, name+".csv"),
		}
	}
	return reqs
}

func TestBatchAllSucceed(t *testing.T) {
	c, loader := newConverter(t)
	dir := t.TempDir()

	outcomes, err := c.Batch(CSV, requests(dir, "a", "b", "c"), DefaultBatchOptions())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.EqualValues(t, 3, loader.calls.Load())

	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		assert.NoError(t, o.Err)
		assert.FileExists(t, o.Destination)
	}
}

func TestBatchFailFast(t *testing.T) {
	c, _ := newConverter(t)
	dir := t.TempDir()

	outcomes, err := c.Batch(CSV, requests(dir, "a", "bad", "c"), DefaultBatchOptions())
	assert.Equal(t, errCorrupt, err, "the conversion error surfaces unchanged")
	require.Len(t, outcomes, 2)

	assert.FileExists(t, filepath.Join(dir, "a.csv"), "earlier outputs stay on disk")
	assert.NoFileExists(t, filepath.Join(dir, "bad.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "c.csv"))
}

func TestBatchContinueOnErrorVerbose(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c, _ := newConverter(t, WithLogger(zap.New(core).Sugar()))
	dir := t.TempDir()

	opts := BatchOptions{ContinueOnError: true, Verbose: true, Workers: 1}
	outcomes, err := c.Batch(CSV, requests(dir, "a", "bad", "c"), opts)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, errCorrupt, outcomes[1].Err)

	assert.FileExists(t, filepath.Join(dir, "a.csv"))
	assert.FileExists(t, filepath.Join(dir, "c.csv"))

	warnings := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Error converting bad.sas7bdat", warnings[0].Message)
	assert.Equal(t, "bad.sas7bdat", warnings[0].ContextMap()["source"])
}

func TestBatchContinueOnErrorSilent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rec := &recordingSink{}
	c, _ := newConverter(t, WithLogger(zap.New(core).Sugar()), WithFailureSink(rec.sink))
	dir := t.TempDir()

	opts := BatchOptions{ContinueOnError: true, Verbose: false}
	outcomes, err := c.Batch(CSV, requests(dir, "bad", "a"), opts)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Empty(t, rec.outcomes)
	assert.Zero(t, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestBatchVerboseWithoutContinueHasNoDiagnostic(t *testing.T) {
	rec := &recordingSink{}
	c, _ := newConverter(t, WithFailureSink(rec.sink))

	_, err := c.Batch(CSV, requests(t.TempDir(), "bad"), BatchOptions{Verbose: true})
	require.Error(t, err)
	assert.Empty(t, rec.outcomes)
}

func TestBatchInvalidKeysAlwaysRaise(t *testing.T) {
	for _, continueOnError := range []bool{false, true} {
		c, loader := newConverter(t)
		dir := t.TempDir()

		reqs := requests(dir, "a", "b")
		reqs = append(reqs, Request{KeySourcePath: "c.sas7bdat", "exportPath": "c.csv"})
		reqs = append(reqs, requests(dir, "d")...)

		opts := BatchOptions{ContinueOnError: continueOnError, Verbose: true, Workers: 4}
		outcomes, err := c.Batch(CSV, reqs, opts)
		require.Error(t, err)
		assert.True(t, validation.IsInvalidKeySchema(err))
		assert.Equal(t, "Invalid key provided, expected keys are: sourcePath, destinationPath", err.Error())

		assert.Len(t, outcomes, 2)
		assert.EqualValues(t, 2, loader.calls.Load())
		assert.FileExists(t, filepath.Join(dir, "b.csv"))
		assert.NoFileExists(t, filepath.Join(dir, "d.csv"))
	}
}

func TestBatchMarkupKeys(t *testing.T) {
	c, _ := newConverter(t)
	dir := t.TempDir()

	reqs := []Request{
		{KeySourcePath: "a.sas7bdat", KeyDestinationPath: filepath.Join(dir, "a.xml"), KeyRootNodeName: "people"},
		{KeySourcePath: "b.sas7bdat", KeyDestinationPath: filepath.Join(dir, "b.xml"), KeyRecordNodeName: "person"},
		{KeySourcePath: "c.sas7bdat", KeyDestinationPath: filepath.Join(dir, "c.xml")},
	}
	_, err := c.Batch(XML, reqs, DefaultBatchOptions())
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(dir, "a.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(a), "<people>\n  <item>")

	b, err := os.ReadFile(filepath.Join(dir, "b.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "<root>\n  <person>")

	cc, err := os.ReadFile(filepath.Join(dir, "c.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(cc), "<root>\n  <item>")

	// Markup keys are rejected for other formats.
	_, err = c.Batch(CSV, []Request{{KeySourcePath: "a", KeyDestinationPath: "a.csv", KeyRootNodeName: "x"}}, DefaultBatchOptions())
	require.Error(t, err)
	assert.True(t, validation.IsInvalidKeySchema(err))

	// Unknown keys are rejected for markup with the optional keys listed.
	_, err = c.Batch(XML, []Request{{KeySourcePath: "a", KeyDestinationPath: "a.xml", "firstNodeName": "x"}}, DefaultBatchOptions())
	require.Error(t, err)
	assert.Equal(t,
		"Invalid key provided, expected keys are: sourcePath, destinationPath and optional keys are: rootNodeName, recordNodeName",
		err.Error())
}

func TestBatchExtensionErrorFollowsPolicy(t *testing.T) {
	c, _ := newConverter(t)
	dir := t.TempDir()

	reqs := []Request{
		{KeySourcePath: "a.sas7bdat", KeyDestinationPath: filepath.Join(dir, "a.txt")},
		{KeySourcePath: "b.sas7bdat", KeyDestinationPath: filepath.Join(dir, "b.csv")},
	}

	_, err := c.Batch(CSV, reqs, DefaultBatchOptions())
	var extErr *UnsupportedExtensionError
	require.True(t, errors.As(err, &extErr))

	outcomes, err := c.Batch(CSV, reqs, BatchOptions{ContinueOnError: true})
	require.NoError(t, err)
	assert.True(t, errors.As(outcomes[0].Err, &extErr))
	assert.NoError(t, outcomes[1].Err)
}

func TestBatchBadPathValueFollowsPolicy(t *testing.T) {
	c, _ := newConverter(t)
	dir := t.TempDir()

	reqs := []Request{
		{KeySourcePath: 7, KeyDestinationPath: filepath.Join(dir, "a.csv")},
		{KeySourcePath: "b.sas7bdat", KeyDestinationPath: filepath.Join(dir, "b.csv")},
	}

	outcomes, err := c.Batch(CSV, reqs, BatchOptions{ContinueOnError: true})
	require.NoError(t, err)
	assert.Error(t, outcomes[0].Err)
	assert.Equal(t, "7", outcomes[0].Source)
	assert.NoError(t, outcomes[1].Err)
}

func TestBatchParallelMatchesSequential(t *testing.T) {
	names := []string{"a", "bad1", "b", "c", "bad2", "d", "e"}

	run := func(workers int) ([]Outcome, []Outcome, string) {
		rec := &recordingSink{}
		c, _ := newConverter(t, WithFailureSink(rec.sink))
		dir := t.TempDir()

		outcomes, err := c.Batch(CSV, requests(dir, names...), BatchOptions{ContinueOnError: true, Verbose: true, Workers: workers})
		require.NoError(t, err)
		return outcomes, rec.outcomes, dir
	}

	seq, seqFailures, seqDir := run(1)
	par, parFailures, parDir := run(4)

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Index, par[i].Index)
		assert.Equal(t, seq[i].Source, par[i].Source)
		assert.Equal(t, seq[i].Err, par[i].Err)
		assert.Equal(t, filepath.Base(seq[i].Destination), filepath.Base(par[i].Destination))
	}

	require.Len(t, parFailures, 2)
	assert.Equal(t, "bad1.sas7bdat", parFailures[0].Source)
	assert.Equal(t, "bad2.sas7bdat", parFailures[1].Source)
	assert.Len(t, seqFailures, 2)

	for _, name := range names {
		_, seqErr := os.Stat(filepath.Join(seqDir, name+".csv"))
		_, parErr := os.Stat(filepath.Join(parDir, name+".csv"))
		assert.Equal(t, seqErr == nil, parErr == nil, name)
	}
}

func TestBatchSharedDestinationKeepsLastWrite(t *testing.T) {
	// The earlier job is slower, so without ordering it would rename last.
	loader := LoaderFunc(func(path string) (*types.Table, error) {
		if filepath.Base(path) == "slow.sas7bdat" {
			time.Sleep(200 * time.Millisecond)
		}
		return &types.Table{Columns: []types.Column{
			{Name: "src", Type: types.Text, Values: []interface{}{filepath.Base(path)}},
		}}, nil
	})

	for _, workers := range []int{1, 2, 4} {
		c, err := New(WithLoader(loader))
		require.NoError(t, err)
		dir := t.TempDir()
		dst := filepath.Join(dir, "same.xml")

		reqs := []Request{
			{KeySourcePath: "slow.sas7bdat", KeyDestinationPath: dst},
			{KeySourcePath: "fast.sas7bdat", KeyDestinationPath: dst},
			{KeySourcePath: "other.sas7bdat", KeyDestinationPath: filepath.Join(dir, "other.xml")},
		}
		outcomes, err := c.Batch(XML, reqs, BatchOptions{ContinueOnError: true, Workers: workers})
		require.NoError(t, err)
		require.Len(t, outcomes, 3)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<src>fast.sas7bdat</src>", "workers=%d", workers)
		assert.NotContains(t, string(data), "slow.sas7bdat", "workers=%d", workers)
	}
}

func TestDestinationChains(t *testing.T) {
	jobs := []job{
		{destination: "out/a.csv"},
		{destination: "out/b.csv"},
		{destination: "out/./a.csv"},
		{destination: "out/c.csv"},
		{destination: "out/b.csv"},
	}

	assert.Equal(t, [][]int{{0, 2}, {1, 4}, {3}}, destinationChains(jobs))
}

func TestBatchEmpty(t *testing.T) {
	c, _ := newConverter(t)
	outcomes, err := c.Batch(JSON, nil, DefaultBatchOptions())
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}
