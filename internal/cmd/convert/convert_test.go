package convert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-wikidom/token"
)

const paragraphJSON = `[{"type":"tag","name":"p"},{"type":"text","data":"x"},{"type":"endtag","name":"p"},{"type":"eof"}]`

func TestRunConvert(t *testing.T) {
	t.Run("json to xml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runConvert("page.json", strings.NewReader(paragraphJSON), &out, &convertOptions{}))
		assert.Contains(t, out.String(), "<tokens>")
		assert.Contains(t, out.String(), `<tag name="p"/>`)
		assert.Contains(t, out.String(), "<text>x</text>")
		assert.Contains(t, out.String(), "<eof/>")
	})

	t.Run("xml to json", func(t *testing.T) {
		var out bytes.Buffer
		in := `<tokens><tag name="p"/><text>x</text><endtag name="p"/><eof/></tokens>`
		require.NoError(t, runConvert("fixture.xml", strings.NewReader(in), &out, &convertOptions{}))

		got, err := token.Unmarshal(out.Bytes())
		require.NoError(t, err)
		want, err := token.Unmarshal([]byte(paragraphJSON))
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("round trip keeps meta", func(t *testing.T) {
		in := `[{"type":"tag","name":"td","attrs":[{"k":"a","v":"1"}],"meta":{"tsr":[0,4]}},{"type":"endtag","name":"td","meta":{"autoInsertedEnd":true}},{"type":"eof"}]`
		want, err := token.Unmarshal([]byte(in))
		require.NoError(t, err)

		var xml, back bytes.Buffer
		require.NoError(t, runConvert("", strings.NewReader(in), &xml, &convertOptions{}))
		require.NoError(t, runConvert("", &xml, &back, &convertOptions{format: "xml", to: "json"}))

		got, err := token.Unmarshal(back.Bytes())
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit target", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runConvert("page.json", strings.NewReader(paragraphJSON), &out, &convertOptions{to: "json"}))
		assert.True(t, strings.HasPrefix(out.String(), "["))
	})
}

func TestRunConvert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		input   string
		opts    convertOptions
		wantErr string
	}{
		{name: "unknown input format", file: "page.yaml", input: paragraphJSON, wantErr: `unknown format "yaml"`},
		{name: "unknown output format", input: paragraphJSON, opts: convertOptions{to: "csv"}, wantErr: `unknown output format "csv"`},
		{name: "bad json", input: `[{"type":"x"}]`, wantErr: "decode tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runConvert(tt.file, strings.NewReader(tt.input), &out, &tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
