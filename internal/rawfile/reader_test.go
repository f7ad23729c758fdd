package rawfile

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/runsummary/internal/record"
	"github.com/danielpatrickdp/runsummary/internal/schema"
)

const sample = `"BehaviorSpace results (NetLogo 6.0.4)"
"/models/cows.nlogo"
"experiment-a"
"05/12/2019 10:11:12:123 +0200"
"min-pxcor","max-pxcor"
"0","49"
"[run number]","[step]","count cows"
"1","0","25"
"1","16","24"
`

func TestReaderProvenanceAndRows(t *testing.T) {
	r, err := newReader("/cluster/a.dat", strings.NewReader(sample))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, record.String("/models/cows.nlogo"), r.Provenance.ModelFile)
	assert.Equal(t, record.String("experiment-a"), r.Provenance.BehaviorspaceName)
	assert.Equal(t, record.String("05/12/2019 10:11:12:123 +0200"), r.Provenance.RunTimestamp)
	assert.Equal(t, record.String("/cluster/a.dat"), r.Provenance.SourceFile)
	assert.Equal(t, []string{schema.RunNumberMarker, schema.StepMarker, "count cows"}, r.Columns())

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"[run number]": "1", "[step]": "0", "count cows": "25"}, row)

	_, err = r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReaderShortHeader(t *testing.T) {
	_, err := newReader("short.dat", strings.NewReader("\"only\"\n\"two\"\n"))
	assert.ErrorContains(t, err, "header line 3")
}

func TestReaderRaggedRow(t *testing.T) {
	r, err := newReader("bad.dat", strings.NewReader(sample+"\"1\",\"32\"\n"))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = r.Next()
		require.NoError(t, err)
	}
	_, err = r.Next()
	assert.ErrorContains(t, err, "bad.dat")
}
