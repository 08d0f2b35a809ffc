package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/rgonek/md4go/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfig(t *testing.T) {
	t.Run("flags only", func(t *testing.T) {
		cfg, err := resolveConfig("", OptionFlags{
			Dialect:       "GitHub",
			Flag:          []string{"underline", "no-html"},
			ParserFlags:   0x1,
			RendererFlag:  []string{"xhtml"},
			RendererFlags: 0x2,
		})
		require.NoError(t, err)

		popts, err := cfg.ParserOptions()
		require.NoError(t, err)
		assert.Equal(t, options.DialectGitHub|options.Underline|options.NoHTML|options.CollapseWhitespace, popts.Mask())

		ropts, err := cfg.RendererOptions()
		require.NoError(t, err)
		assert.Equal(t, options.XHTML|options.VerbatimEntities, ropts.Mask())
	})

	t.Run("file and flags are merged", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "md4go.yaml")
		content := "parser:\n  flags: [tables]\nrenderer:\n  flags: [debug]\nmax_output_size: 100\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := resolveConfig(path, OptionFlags{Flag: []string{"strikethrough"}})
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.MaxOutputSize)

		popts, err := cfg.ParserOptions()
		require.NoError(t, err)
		assert.Equal(t, options.Tables|options.Strikethrough, popts.Mask())
	})

	t.Run("dialect flag overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "md4go.yaml")
		require.NoError(t, os.WriteFile(path, []byte("parser:\n  dialect: github\n"), 0o600))

		cfg, err := resolveConfig(path, OptionFlags{Dialect: "commonmark"})
		require.NoError(t, err)
		popts, err := cfg.ParserOptions()
		require.NoError(t, err)
		assert.Equal(t, options.DialectCommonMark, popts.Mask())
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := resolveConfig("", OptionFlags{Flag: []string{"smartypants"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smartypants")
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, err := resolveConfig("", OptionFlags{Dialect: "pandoc"})
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := resolveConfig(filepath.Join(t.TempDir(), "missing.yaml"), OptionFlags{})
		require.Error(t, err)
	})
}

func TestNewRendererOutputLimit(t *testing.T) {
	cfg := &options.Config{MaxOutputSize: 1 << 20}

	r, err := newRenderer(cfg, 8, nil, nil)
	require.NoError(t, err)
	_, err = r.RenderString("# a long enough heading\n")
	require.Error(t, err)

	r, err = newRenderer(cfg, 0, nil, nil)
	require.NoError(t, err)
	out, err := r.RenderString("# a long enough heading\n")
	require.NoError(t, err)
	assert.Equal(t, "<h1>a long enough heading</h1>\n", out)
}

func TestCommandLineParsing(t *testing.T) {
	var cli CLI
	k, err := kong.New(&cli, kong.Name("md4go"), kong.Vars{"version": "test"})
	require.NoError(t, err)

	_, err = k.Parse([]string{
		"render", "--flag", "tables", "-f", "underline", "--dialect", "github",
		"--renderer-flag", "xhtml", "--max-output", "64", "-o", "out.html", "doc.md",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tables", "underline"}, cli.Render.Flag)
	assert.Equal(t, "github", cli.Render.Dialect)
	assert.Equal(t, []string{"xhtml"}, cli.Render.RendererFlag)
	assert.Equal(t, 64, cli.Render.MaxOutput)
	assert.Equal(t, "out.html", cli.Render.Output)
	assert.Equal(t, []string{"doc.md"}, cli.Render.Files)

	_, err = k.Parse([]string{"events", "--format", "json", "--stop-after", "3"})
	require.NoError(t, err)
	assert.Equal(t, formatJSON, cli.Events.Format)
	assert.Equal(t, 3, cli.Events.StopAfter)

	_, err = k.Parse([]string{"events", "--format", "xml"})
	require.Error(t, err)
}

func TestEnvFileFeedsConfig(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("MD4GO_CLI_TEST_FLAG=wikilinks\n"), 0o600))
	cfgPath := filepath.Join(dir, "md4go.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("parser:\n  flags: [${MD4GO_CLI_TEST_FLAG}]\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("MD4GO_CLI_TEST_FLAG") })

	cli := CLI{EnvFile: envPath}
	require.NoError(t, cli.AfterApply())

	cfg, err := resolveConfig(cfgPath, OptionFlags{})
	require.NoError(t, err)
	popts, err := cfg.ParserOptions()
	require.NoError(t, err)
	assert.Equal(t, options.WikiLinks, popts.Mask())
}

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"utf-16le", []byte("\xff\xfeH\x00i\x00"), []byte("Hi")},
		{"utf-16be", []byte("\xfe\xff\x00H\x00i"), []byte("Hi")},
		{"utf-8 bom kept", []byte("\xef\xbb\xbfHi"), []byte("\xef\xbb\xbfHi")},
		{"invalid utf-8 kept", []byte("a\xffb"), []byte("a\xffb")},
		{"empty", []byte{}, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeInput(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadInput(t *testing.T) {
	got, err := readInput(stdinName, strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(got))

	_, err = readInput(filepath.Join(t.TempDir(), "nope.md"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.md")
}

func TestRenderInputs(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(first, []byte("# A\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("*b*\n"), 0o600))

	r, err := newRenderer(&options.Config{}, 0, nil, nil)
	require.NoError(t, err)

	for _, useBytes := range []bool{false, true} {
		var out bytes.Buffer
		require.NoError(t, renderInputs(r, []string{first, second}, useBytes, nil, &out))
		assert.Equal(t, "<h1>A</h1>\n<p><em>b</em></p>\n", out.String())
	}

	var out bytes.Buffer
	require.NoError(t, renderInputs(r, nil, false, strings.NewReader("text\n"), &out))
	assert.Equal(t, "<p>text</p>\n", out.String())
}

func TestRenderOnceWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.md")
	output := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(input, []byte("Hello\n"), 0o600))
	require.NoError(t, os.WriteFile(output, []byte("stale content that is longer"), 0o600))

	r, err := newRenderer(&options.Config{}, 0, nil, nil)
	require.NoError(t, err)

	cmd := &RenderCmd{Files: []string{input}, Output: output}
	require.NoError(t, cmd.renderOnce(r, nil))

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>\n", string(got))
}

func TestRenderOnceReportsLimit(t *testing.T) {
	r, err := newRenderer(&options.Config{}, 4, nil, nil)
	require.NoError(t, err)

	cmd := &RenderCmd{}
	err = cmd.renderOnce(r, strings.NewReader("Hello\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render stdin")
}
