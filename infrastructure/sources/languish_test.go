package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-langrank/internal/ports"
)

const languishPage = `<html><head>
<script src="/static/js/runtime-main.8742b3.js"></script>
<script src="/static/js/2.1a9f3c.chunk.js"></script>
<script src="/static/js/main.3f6ab17c.chunk.js"></script>
</head><body><div id="root"></div></body></html>`

const languishBundleURL = "https://tjpalmer.github.io/static/js/main.3f6ab17c.chunk.js"

// The bundle embeds the dataset as a JSON.parse literal; C++ arrives as
// hex escapes and Fortran only has a row from before the epoch.
const languishBundle = `(this.webpackJsonplanguish=this.webpackJsonplanguish||[]).push([[0],{42:function(e,t,a){e.exports=JSON.parse('{"items":{"keys":["name","date","issues","pulls","soQuestions","stars"],"rows":[["Python","2024Q2",40,40,40,40],["Python","2024Q1",30,30,30,30],["Go","2024Q2",20,20,20,20],["Go","2024Q1",10,10,10,10],["Rust","2024Q2",10,0,10,10],["C\x2b\x2b","2024Q2",4,4,4,4],["Fortran","2011Q4",99,99,99,99]]},"sums":{"keys":["date","issues","pulls","soQuestions","stars"],"rows":[["2024Q1",100,100,100,100],["2024Q2",100,100,100,100]]}}')}}])`

func TestLanguishSource_Fetch(t *testing.T) {
	fetcher := newStubFetcher().
		serve(DefaultLanguishPageURL, languishPage).
		serve(languishBundleURL, languishBundle)
	source, err := NewLanguishSource(DefaultLanguishConfig(), fetcher)
	require.NoError(t, err)

	samples, err := source.Fetch(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{DefaultLanguishPageURL, languishBundleURL}, fetcher.calls)
	require.Len(t, samples, 4, "pre-epoch languages are dropped")

	python := samples[0]
	assert.Equal(t, "Python", python.Label)
	require.NotNil(t, python.Rank)
	assert.Equal(t, 1, *python.Rank)
	assert.InDelta(t, 40.0, python.Share, 1e-9)
	require.NotNil(t, python.Trend)
	assert.InDelta(t, 10.0, *python.Trend, 1e-9)

	goLang := samples[1]
	assert.Equal(t, "Go", goLang.Label)
	assert.Equal(t, 2, *goLang.Rank)
	assert.InDelta(t, 20.0, goLang.Share, 1e-9)

	rust := samples[2]
	assert.Equal(t, "Rust", rust.Label)
	assert.Equal(t, 3, *rust.Rank)
	assert.InDelta(t, 7.5, rust.Share, 1e-9, "zero metric contributes nothing")
	require.NotNil(t, rust.Trend)
	assert.InDelta(t, 7.5, *rust.Trend, 1e-9, "absent previous quarter means zero baseline")

	cpp := samples[3]
	assert.Equal(t, "C++", cpp.Label, "hex escapes decode before the dataset parse")
	assert.Equal(t, 4, *cpp.Rank)
	assert.InDelta(t, 4.0, cpp.Share, 1e-9)
}

func TestLanguishSource_AbsoluteBundleURL(t *testing.T) {
	page := `<html><head><script src="https://cdn.example.com/static/js/main.abc.chunk.js"></script></head></html>`
	fetcher := newStubFetcher().
		serve(DefaultLanguishPageURL, page).
		serve("https://cdn.example.com/static/js/main.abc.chunk.js", languishBundle)
	source, err := NewLanguishSource(DefaultLanguishConfig(), fetcher)
	require.NoError(t, err)

	_, err = source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/static/js/main.abc.chunk.js", fetcher.calls[1])
}

func TestLanguishSource_MissingScript(t *testing.T) {
	fetcher := newStubFetcher().serve(DefaultLanguishPageURL, "<html><head></head><body></body></html>")
	source, err := NewLanguishSource(DefaultLanguishConfig(), fetcher)
	require.NoError(t, err)

	_, err = source.Fetch(context.Background())
	require.Error(t, err)

	var srcErr *ports.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "languish", srcErr.Source)
	assert.Equal(t, "parse", srcErr.Operation)
	assert.Contains(t, err.Error(), "main chunk script not found")
}

func TestLanguishSource_MissingPayload(t *testing.T) {
	fetcher := newStubFetcher().
		serve(DefaultLanguishPageURL, languishPage).
		serve(languishBundleURL, "var app = function() { return 42; };")
	source, err := NewLanguishSource(DefaultLanguishConfig(), fetcher)
	require.NoError(t, err)

	_, err = source.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedded JSON payload not found")
}

func TestExtractJSONParsePayload(t *testing.T) {
	tests := []struct {
		name string
		js   string
		want string
		ok   bool
	}{
		{
			name: "plain payload",
			js:   `x=JSON.parse('{"a":1}')`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "escaped quote inside payload",
			js:   `x=JSON.parse('{"a":"it\'s"}')`,
			want: `{"a":"it\'s"}`,
			ok:   true,
		},
		{
			name: "quote without closing paren is not terminal",
			js:   `x=JSON.parse('{"a":"'+y)`,
			ok:   false,
		},
		{
			name: "no call at all",
			js:   `var x = 1;`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONParsePayload(tt.js)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeJSStringLiteral(t *testing.T) {
	decoded, err := decodeJSStringLiteral(`{"name":"it\'s \x43\x2b\x2b"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"it's C++"}`, decoded)

	decoded, err = decodeJSStringLiteral(`plain text`)
	require.NoError(t, err)
	assert.Equal(t, "plain text", decoded)

	_, err = decodeJSStringLiteral("raw\ncontrol")
	assert.Error(t, err, "raw control characters cannot appear in a JS string literal")
}
