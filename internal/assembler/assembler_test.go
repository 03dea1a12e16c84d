package assembler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFragment(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestAssembleOrdersFragmentsByNumericStem(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "10.json", `[{"type":"goto","url":"https://ten"}]`)
	writeFragment(t, dir, "2.json", `[{"type":"goto","url":"https://two"}]`)
	writeFragment(t, dir, "1.json", `[{"type":"goto","url":"https://one"}]`)
	writeFragment(t, dir, "notes.txt", `ignored, does not match the fragment pattern`)

	res, err := Assemble(dir, "")
	require.NoError(t, err)
	require.False(t, res.PartialFailure)
	require.Len(t, res.Output, 3)

	var urls []string
	for _, raw := range res.Output {
		m := raw.(map[string]any)
		urls = append(urls, m["url"].(string))
	}
	require.Equal(t, []string{"https://one", "https://two", "https://ten"}, urls, "fragments merge in ascending numeric order, not lexical")
}

func TestAssembleWrapsInGroupExcelWhenSpreadsheetGiven(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "1.json", `[{"type":"click","tag":"button"}]`)

	res, err := Assemble(dir, "roster.xlsx")
	require.NoError(t, err)
	require.Len(t, res.Output, 1)

	wrapper := res.Output[0].(map[string]any)
	require.Equal(t, "group_excel", wrapper["type"])
	require.Equal(t, "roster.xlsx", wrapper["file"])
	actions := wrapper["actions"].([]any)
	require.Len(t, actions, 1)
}

func TestAssembleSplicesGroupExcelHeaderFragment(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "1.json", `[{"type":"group_excel","file":"roster.xlsx","actions":[{"type":"write","value":"hi"}]}]`)
	writeFragment(t, dir, "2.json", `[{"type":"click","tag":"button"}]`)

	res, err := Assemble(dir, "")
	require.NoError(t, err)
	require.Len(t, res.Output, 2, "the header fragment's actions splice in directly, followed by fragment 2's step")

	first := res.Output[0].(map[string]any)
	require.Equal(t, "write", first["type"])
	second := res.Output[1].(map[string]any)
	require.Equal(t, "click", second["type"])
}

func TestAssembleSkipsUnparseableFragmentWithoutFailingTheRun(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "1.json", `not a json array`)
	writeFragment(t, dir, "2.json", `[{"type":"click"}]`)

	res, err := Assemble(dir, "")
	require.NoError(t, err)
	require.True(t, res.PartialFailure)
	require.NotEmpty(t, res.Logs)
	require.Len(t, res.Output, 1, "the parseable fragment still contributes")
}

func TestProcessWritesPrettyPrintedOutputPreservingNonASCII(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "1.json", `[{"type":"write","value":"héllo wörld"}]`)
	outPath := filepath.Join(t.TempDir(), "out.json")

	success, logs := Process(dir, outPath, "")
	require.True(t, success)
	require.Empty(t, logs)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "héllo wörld", "non-ASCII must not be escaped")
	require.Contains(t, string(data), "  \"type\"", "output is indented two spaces")

	var roundTrip []any
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	require.Len(t, roundTrip, 1)
}

func TestProcessReportsErrorForMissingDirectory(t *testing.T) {
	success, logs := Process(filepath.Join(t.TempDir(), "does-not-exist"), filepath.Join(t.TempDir(), "out.json"), "")
	require.False(t, success)
	require.NotEmpty(t, logs)
}
