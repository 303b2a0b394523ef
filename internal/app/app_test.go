package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/config/loader"
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/watcher"
)

const yamlScript = `
document:
  paragraphs:
    - inlines: [{text: "Hello"}]
steps:
  - select: [5, 5]
  - input: insertText
    data: " world"
expect: "Hello world"
`

const tomlScript = `
expect = "Hello world"

[[document.paragraphs]]
inlines = [{text = "Hello"}]

[[steps]]
select = [5, 5]

[[steps]]
input = "insertText"
data = " world"
`

func parse(t *testing.T, src string, f loader.Format) *Script {
	t.Helper()
	s, err := ParseScript([]byte(src), f)
	require.NoError(t, err)
	return s
}

// ============================================================================
// Scripts
// ============================================================================

func TestStepKind(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		want    string
		wantErr bool
	}{
		{"input", Step{Input: "insertText", Data: "x"}, KindInput, false},
		{"select", Step{Select: []int{0, 1}}, KindSelect, false},
		{"select all", Step{SelectAll: true}, KindSelectAll, false},
		{"styles", Step{Styles: style.Map{style.FontWeight: "700"}}, KindStyles, false},
		{"focus", Step{Focus: true}, KindFocus, false},
		{"blur", Step{Blur: true}, KindBlur, false},
		{"empty", Step{}, "", true},
		{"two actions", Step{Focus: true, Blur: true}, "", true},
		{"payload without input", Step{Focus: true, Data: "x"}, "", true},
		{"short select", Step{Select: []int{1}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.step.Kind()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStep)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScriptFormatsAgree(t *testing.T) {
	y := parse(t, yamlScript, loader.FormatYAML)
	tm := parse(t, tomlScript, loader.FormatTOML)
	if diff := cmp.Diff(y, tm); diff != "" {
		t.Errorf("YAML and TOML scripts differ (-yaml +toml):\n%s", diff)
	}
	require.NotNil(t, y.Document)
	assert.Equal(t, "Hello", y.Document.Text())
}

func TestParseScriptRejectsUnknownField(t *testing.T) {
	_, err := ParseScript([]byte("steps:\n  - typo: true\n"), loader.FormatYAML)
	assert.Error(t, err)

	_, err = ParseScript([]byte("[[steps]]\ntypo = true\n"), loader.FormatTOML)
	assert.Error(t, err)
}

func TestParseScriptRejectsInvalidStep(t *testing.T) {
	_, err := ParseScript([]byte("steps:\n  - focus: true\n    blur: true\n"), loader.FormatYAML)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlScript), 0o644))

	s, err := LoadScript(loader.DefaultFS(), path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 2)

	_, err = LoadScript(loader.DefaultFS(), filepath.Join(dir, "script.json"))
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, loader.ErrUnsupportedFormat)
}

// ============================================================================
// Replay
// ============================================================================

func TestReplay(t *testing.T) {
	a := New()
	report, err := a.Replay(parse(t, yamlScript, loader.FormatYAML))
	require.NoError(t, err)

	assert.Equal(t, "Hello world", report.Text)
	assert.True(t, report.Matched)
	assert.False(t, report.Failed())
	assert.NotEmpty(t, report.Session)
	assert.GreaterOrEqual(t, report.Changes, int64(1))
	assert.GreaterOrEqual(t, report.Layouts, int64(1))

	want := []StepResult{
		{Index: 0, Kind: KindSelect},
		{Index: 1, Kind: KindInput, Input: "insertText", Prevented: true},
	}
	if diff := cmp.Diff(want, report.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayRecordsFailedStep(t *testing.T) {
	doc := content.NewDocument("abc")
	s := &Script{
		Document: &doc,
		Steps: []Step{
			{Select: []int{0, 99}},
			{SelectAll: true},
			{Input: "deleteByCut"},
		},
	}
	report, err := New().Replay(s)
	require.NoError(t, err)

	require.Len(t, report.Steps, 3)
	assert.NotEmpty(t, report.Steps[0].Error)
	assert.Empty(t, report.Steps[1].Error)
	assert.True(t, report.Failed())
	assert.Equal(t, "", report.Text)
}

func TestReplayExpectationMismatch(t *testing.T) {
	want := "nope"
	doc := content.NewDocument("abc")
	report, err := New().Replay(&Script{Document: &doc, Expect: &want})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.True(t, report.Failed())
}

func TestReplayStylesCountsStyleChange(t *testing.T) {
	doc := content.NewDocument("abc")
	s := &Script{
		Document: &doc,
		Steps: []Step{
			{Select: []int{0, 3}},
			{Styles: style.Map{style.FontWeight: "700"}},
		},
	}
	report, err := New().Replay(s)
	require.NoError(t, err)
	assert.Equal(t, "700", report.Document.Paragraphs[0].Inlines[0].Style[style.FontWeight])
	assert.GreaterOrEqual(t, report.StyleChanges, int64(1))
	assert.Equal(t, "700", report.Style[style.FontWeight])
}

func TestReplayUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Guard.MaxSteps = 1
	a := New(WithConfig(cfg))

	doc := content.NewDocument("one", "two", "three")
	report, err := a.Replay(&Script{
		Document: &doc,
		Steps:    []Step{{SelectAll: true}, {Input: "deleteByCut"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, report.Steps[1].Error, "guard should abort the cut")
	assert.Equal(t, "one\ntwo\nthree", report.Text)
}

// ============================================================================
// Rendering
// ============================================================================

func sampleReport() *Report {
	return &Report{
		Document: content.Document{
			Paragraphs: []content.Paragraph{
				{
					Style: style.Map{style.TextAlign: "center"},
					Inlines: []content.Inline{
						{Text: "ab", Style: style.Map{style.FontWeight: "700"}},
					},
				},
				{Inlines: []content.Inline{{Text: "shout", Style: style.Map{style.TextTransform: "uppercase"}}}},
			},
		},
		Text: "ab\nshout",
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleReport(), FormatText, config.PreviewConfig{Width: 10, NoColor: true})
	require.NoError(t, err)
	assert.Equal(t, "    ab\nSHOUT\n", buf.String())
}

func TestRenderTree(t *testing.T) {
	r := sampleReport()
	want := "nope"
	r.Expected = &want

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, FormatTree, config.PreviewConfig{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"root",
		"  paragraph 0 [text-align=center]",
		`    "ab" [font-weight=700]`,
		"  paragraph 1",
		`    "shout" [text-transform=uppercase]`,
		`! expected "nope", got "ab\nshout"`,
	}, lines)
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatJSON, config.PreviewConfig{}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ab\nshout", got["text"])
}

// ============================================================================
// Watch
// ============================================================================

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchReplaysOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	script := "document:\n  paragraphs:\n    - inlines: [{text: %q}]\n"
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(script, "%q", `"first"`, 1)), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- New().Watch(ctx, out, path, FormatText, watcher.WithDebounce(10*time.Millisecond))
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "first")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(script, "%q", `"second"`, 1)), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "second")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchNeedsScript(t *testing.T) {
	err := New().Watch(context.Background(), &bytes.Buffer{}, "", FormatText)
	assert.ErrorIs(t, err, ErrNoScript)
}

func TestQuery(t *testing.T) {
	r := sampleReport()

	got, err := Query(r, "document.paragraphs.1.inlines.0.text")
	require.NoError(t, err)
	assert.Equal(t, "shout", got)

	got, err = Query(r, "document.paragraphs.#")
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	_, err = Query(r, "document.missing")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestTerminalColor(t *testing.T) {
	c, ok := terminalColor("#f00")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", string(c))

	_, ok = terminalColor("#000000")
	assert.False(t, ok)
	_, ok = terminalColor("red")
	assert.False(t, ok)
}
