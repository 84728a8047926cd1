package sources

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-langrank/internal/ports"
)

const pyplFixture = `<html><body>
<!-- begin section All-->
<script type="text/javascript">
var table = "\
" + table + "\
<tr><td align=center>1</td><td><img src=\"py.png\"></td><td>Python</td><td>30.41 %</td><td>-0.5 %</td></tr>\
<tr><td align=center>2</td><td></td><td>Java</td><td>15.23 %</td><td>+0.8 %</td></tr>\
\
<tr><td>scaffolding</td></tr>\
";
</script>
<!-- end section All-->
</body></html>`

func TestPyplSource_Fetch(t *testing.T) {
	fetcher := newStubFetcher().serve(DefaultPyplURL, pyplFixture)
	source, err := NewPyplSource(DefaultPyplConfig(), fetcher)
	require.NoError(t, err)

	samples, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)

	python := samples[0]
	assert.Equal(t, "Python", python.Label)
	require.NotNil(t, python.Rank)
	assert.Equal(t, 1, *python.Rank)
	assert.InDelta(t, 30.41, python.Share, 1e-9)
	require.NotNil(t, python.Trend)
	assert.InDelta(t, -0.5, *python.Trend, 1e-9)

	java := samples[1]
	assert.Equal(t, "Java", java.Label)
	require.NotNil(t, java.Rank)
	assert.Equal(t, 2, *java.Rank)
	assert.InDelta(t, 15.23, java.Share, 1e-9)
	require.NotNil(t, java.Trend)
	assert.InDelta(t, 0.8, *java.Trend, 1e-9)
}

func TestPyplSource_MissingMarkers(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr string
	}{
		{
			name:    "start marker absent",
			page:    "<html><body>rankings<!-- end section All--></body></html>",
			wantErr: "start marker not found",
		},
		{
			name:    "end marker absent",
			page:    "<html><body><!-- begin section All-->rankings</body></html>",
			wantErr: "end marker not found",
		},
		{
			name:    "markers reversed",
			page:    "<html><body><!-- end section All-->rankings<!-- begin section All--></body></html>",
			wantErr: "unexpected order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newStubFetcher().serve(DefaultPyplURL, tt.page)
			source, err := NewPyplSource(DefaultPyplConfig(), fetcher)
			require.NoError(t, err)

			_, err = source.Fetch(context.Background())
			require.Error(t, err)

			var srcErr *ports.SourceError
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, "pypl", srcErr.Source)
			assert.Equal(t, "parse", srcErr.Operation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPyplSource_FetchError(t *testing.T) {
	fetcher := newStubFetcher().fail(DefaultPyplURL, ports.ErrTimeout)
	source, err := NewPyplSource(DefaultPyplConfig(), fetcher)
	require.NoError(t, err)

	_, err = source.Fetch(context.Background())
	require.Error(t, err)

	var srcErr *ports.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "fetch", srcErr.Operation)
	assert.True(t, srcErr.IsRetryable())
}

func TestPyplRowCells_Scaffolding(t *testing.T) {
	for _, line := range []string{"", "   ", `\`, `" + table + "`} {
		_, ok := pyplRowCells(line)
		assert.False(t, ok, "line %q must be skipped", line)
	}

	cells, ok := pyplRowCells(`<td>1</td><td></td><td>Go</td><td>2.1 %</td><td>+0.1 %</td>` + `\`)
	require.True(t, ok, "bare cells gain a row wrapper")
	require.Len(t, cells, 5)
	assert.Equal(t, "Go", cells[2])
	assert.False(t, strings.HasSuffix(cells[4], `\`), "continuation backslash must be stripped")
}
