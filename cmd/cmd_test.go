package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/render"
)

func resetFlags() {
	cfgFile, logLevel = "", ""
	renderKind, renderIn, renderOut, renderTitle, renderOverlays = "line", "", "chart.svg", "", ""
	renderWidth, renderHeight = 0, 0
	configInitOutput, configValidatePath = "tickchart.yaml", ""
	exportKind, exportFormat, exportOut = "line", "csv", ""
	exportFrom, exportTo, exportInterval = "", "", ""
}

// execute resets the package flags to their defaults and runs the root command with args.
// Cobra only assigns flags present on the command line, so values from an earlier call would leak.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(resetFlags)
	err := rootCmd.Execute()
	return out.String(), err
}

const lineJSON = `[{"date":"2024-01-01","value":10},{"date":"2024-01-02","value":12},{"date":"2024-01-03","value":11}]`

const candleJSON = `{"symbol":"AAPL","points":[
  {"date":"2024-01-01","open":10,"high":12,"low":9,"close":11,"volume":100},
  {"date":"2024-01-02","open":11,"high":13,"low":10,"close":10}
]}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRender_LineSVG(t *testing.T) {
	in := writeFile(t, "line.json", lineJSON)
	out := filepath.Join(t.TempDir(), "line.svg")

	stdout, err := execute(t, "render", "--in", in, "--out", out, "--width", "640", "--overlays", "sma:2")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "wrote "+out)

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<svg")
	assert.Contains(t, string(body), `viewBox="0 0 640 `)
}

func TestRender_CandlestickHTML(t *testing.T) {
	in := writeFile(t, "candles.json", candleJSON)
	out := filepath.Join(t.TempDir(), "candles.html")

	_, err := execute(t, "render", "--kind", "candlestick", "--in", in, "--out", out, "--title", "AAPL")
	require.NoError(t, err)
	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "echarts")
	assert.Contains(t, string(body), "AAPL")
}

func TestRender_EmptyInputDrawsPlaceholder(t *testing.T) {
	in := writeFile(t, "empty.json", `[]`)
	out := filepath.Join(t.TempDir(), "empty.svg")

	_, err := execute(t, "render", "--in", in, "--out", out)
	require.NoError(t, err)
	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), render.PlaceholderText)
}

func TestRender_Errors(t *testing.T) {
	in := writeFile(t, "line.json", lineJSON)
	dir := t.TempDir()

	_, err := execute(t, "render", "--in", in, "--out", filepath.Join(dir, "x.gif"))
	assert.ErrorContains(t, err, "unsupported output extension")

	_, err = execute(t, "render", "--kind", "pie", "--in", in, "--out", filepath.Join(dir, "x.svg"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `{"points": 3}`)
	_, err = execute(t, "render", "--in", bad, "--out", filepath.Join(dir, "x.svg"))
	assert.ErrorContains(t, err, "decode input")
}

func TestRender_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	in := writeFile(t, "line.json", lineJSON)
	dir := t.TempDir()

	_, err := execute(t, "render", "--kind", "pie", "--in", in, "--out", filepath.Join(dir, "x.svg"))
	require.Error(t, err)

	out := filepath.Join(dir, "y.svg")
	stdout, err := execute(t, "render", "--in", in, "--out", out)
	require.NoError(t, err, stdout)

	_, err = execute(t, "render", "--out", filepath.Join(dir, "z.svg"))
	assert.Error(t, err)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickchart.yaml")

	stdout, err := execute(t, "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	stdout, err = execute(t, "config", "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "configuration valid")

	bad := writeFile(t, "bad.yaml", "server:\n  addr: \":1\"\n  ws_addr: \":1\"\n")
	_, err = execute(t, "config", "validate", "--file", bad)
	assert.ErrorContains(t, err, "must differ")
}
