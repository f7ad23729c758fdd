package aggregate

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/danielpatrickdp/runsummary/internal/rawfile/rawfiletest"
	"github.com/danielpatrickdp/runsummary/internal/record"
	"github.com/danielpatrickdp/runsummary/internal/schema"
)

// sliceSource replays fixed rows.
type sliceSource struct {
	cols []string
	rows []map[string]string
}

func (s *sliceSource) Columns() []string { return s.cols }

func (s *sliceSource) Next() (map[string]string, error) {
	if len(s.rows) == 0 {
		return nil, io.EOF
	}
	r := s.rows[0]
	s.rows = s.rows[1:]
	return r, nil
}

func TestAddFileFoldsRunsAndYears(t *testing.T) {
	dir := t.TempDir()
	path := rawfiletest.Write(t, dir, "a.dat", "exp", []rawfiletest.Row{
		{RunNumber: 1, Year: 0, Cows: 20, Woodland: 100},
		{RunNumber: 1, Year: 1, Cows: 21, Woodland: 99},
		{RunNumber: 2, Year: 0, Cows: 18, Woodland: 80, GrainYears: 3},
	})

	agg := New(nil, zaptest.NewLogger(t))
	b, err := agg.AddFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Rows)
	assert.Equal(t, []string{"exp-000001", "exp-000002"}, b.SortedIDs())

	run := b.Runs["exp-000001"]
	assert.Equal(t, int64(1), run.Record.RunNumber)
	assert.Equal(t, []int64{0, 1}, run.SortedYears())
	assert.Equal(t, int64(21), run.Years[1].CowCount)
	assert.Equal(t, record.String(path), run.Record.Provenance.SourceFile)

	grain, ok := b.Runs["exp-000002"].Record.Params.Get(record.FieldGrainStorageDuration)
	require.True(t, ok)
	assert.Equal(t, record.Int(3), grain)

	_, ok = run.Record.Params.Get(record.FieldRunNumber)
	assert.False(t, ok, "run number is not a parameter")
}

func TestFoldValidatesHeaderWithoutRows(t *testing.T) {
	src := &sliceSource{cols: schema.Declared()[1:]}
	_, err := Fold("empty.dat", record.Provenance{}, src)
	var mm *schema.MismatchError
	require.True(t, errors.As(err, &mm))
	assert.Equal(t, []string{schema.RunNumberMarker}, mm.Missing)
}

func TestFoldLaterYearRowWins(t *testing.T) {
	dir := t.TempDir()
	path := rawfiletest.Write(t, dir, "dup.dat", "exp", []rawfiletest.Row{
		{RunNumber: 1, Year: 3, Cows: 10},
		{RunNumber: 1, Year: 3, Cows: 12},
	})
	b, err := New(nil, nil).AddFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(12), b.Runs["exp-000001"].Years[3].CowCount)
}

func TestMergeLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	first := rawfiletest.Write(t, dir, "a.dat", "exp", []rawfiletest.Row{
		{RunNumber: 1, Year: 0, Cows: 5},
		{RunNumber: 1, Year: 1, Cows: 6},
	})
	second := rawfiletest.Write(t, dir, "b.dat", "exp", []rawfiletest.Row{
		{RunNumber: 1, Year: 0, Cows: 9},
	})

	agg := New(LastWriteWins, nil)
	_, err := agg.AddFile(first)
	require.NoError(t, err)
	later, err := agg.AddFile(second)
	require.NoError(t, err)

	got := agg.Batch()
	assert.Equal(t, 3, got.Rows)
	if diff := cmp.Diff(later.Runs["exp-000001"], got.Runs["exp-000001"]); diff != "" {
		t.Fatalf("merged run should be the later source's (-want +got):\n%s", diff)
	}
}

func TestMergeRejectOnCollision(t *testing.T) {
	dir := t.TempDir()
	rows := []rawfiletest.Row{{RunNumber: 4, Year: 0, Cows: 5}}
	first := rawfiletest.Write(t, dir, "a.dat", "exp", rows)
	second := rawfiletest.Write(t, dir, "b.dat", "exp", rows)

	agg := New(RejectOnCollision, nil)
	_, err := agg.AddFile(first)
	require.NoError(t, err)
	_, err = agg.AddFile(second)

	var coll *RunCollisionError
	require.True(t, errors.As(err, &coll))
	assert.Equal(t, "exp-000004", coll.RunID)
	assert.Equal(t, first, coll.First)
	assert.Equal(t, second, coll.Second)
}

func TestMergeDistinctGroupsCoexist(t *testing.T) {
	dir := t.TempDir()
	rows := []rawfiletest.Row{{RunNumber: 1, Year: 0}}
	agg := New(RejectOnCollision, nil)
	_, err := agg.AddFile(rawfiletest.Write(t, dir, "a.dat", "alpha", rows))
	require.NoError(t, err)
	_, err = agg.AddFile(rawfiletest.Write(t, dir, "b.dat", "beta", rows))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha-000001", "beta-000001"}, agg.Batch().SortedIDs())
}

func TestPolicyByName(t *testing.T) {
	for _, name := range []string{"", "last-write-wins", "reject"} {
		p, err := PolicyByName(name)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err := PolicyByName("first-wins")
	assert.Error(t, err)
}
