// Package assembler merges numbered workflow fragment files from a
// directory into a single workflow document, optionally wrapping the
// result in a spreadsheet-driven group_excel header. It is grounded on
// build_exam_file.py's merge_logic/process_exam: assembler failures
// are folded into a result value rather than raised outward.
package assembler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fragmentPattern = regexp.MustCompile(`^(\d+)\.json$`)

// Result carries the outcome of an assembly run. It is always
// returned — Assemble never signals a partial failure through the
// error return, matching process_exam's "always returns, never
// raises" contract; error is reserved for caller misuse (missing
// directory).
type Result struct {
	Output         []any
	Logs           []string
	PartialFailure bool
}

// Assemble enumerates files matching ^\d+\.json$ in dir, sorts by the
// integer value of the numeric stem, concatenates their JSON-array
// contents, splices group_excel-header fragments, and — if
// spreadsheetPath is non-empty — wraps the merged list in a single
// group_excel step.
func Assemble(dir, spreadsheetPath string) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, fmt.Errorf("read fragment dir: %w", err)
	}

	type fragment struct {
		num  int
		name string
	}
	var frags []fragment
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fragmentPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		frags = append(frags, fragment{num: n, name: e.Name()})
	}
	sort.Slice(frags, func(i, j int) bool { return frags[i].num < frags[j].num })

	res := Result{}
	var merged []any
	for _, f := range frags {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			res.Logs = append(res.Logs, fmt.Sprintf("skip %s: %v", f.name, err))
			res.PartialFailure = true
			continue
		}
		var arr []any
		if err := json.Unmarshal(data, &arr); err != nil {
			res.Logs = append(res.Logs, fmt.Sprintf("skip %s: not a JSON array: %v", f.name, err))
			res.PartialFailure = true
			continue
		}

		if header, rest, ok := splitGroupExcelHeader(arr); ok {
			merged = append(merged, header...)
			if len(rest) > 0 {
				res.Logs = append(res.Logs, fmt.Sprintf("%s: extra elements after group_excel header ignored", f.name))
			}
			continue
		}

		merged = append(merged, arr...)
	}

	if strings.TrimSpace(spreadsheetPath) != "" {
		res.Output = []any{map[string]any{
			"type":      "group_excel",
			"file":      spreadsheetPath,
			"start_row": 2,
			"actions":   merged,
		}}
	} else {
		res.Output = merged
	}
	return res, nil
}

// splitGroupExcelHeader implements the special case: if the fragment's
// sole or leading element has type == "group_excel", its actions array
// is spliced in directly; any elements after that header produce a
// warning (the caller is notified via the returned logs, not here).
func splitGroupExcelHeader(arr []any) (header, rest []any, ok bool) {
	if len(arr) == 0 {
		return nil, nil, false
	}
	first, isMap := arr[0].(map[string]any)
	if !isMap {
		return nil, nil, false
	}
	typ, _ := first["type"].(string)
	if !strings.EqualFold(typ, "group_excel") {
		return nil, nil, false
	}
	actions, _ := first["actions"].([]any)
	return actions, arr[1:], true
}

// Write pretty-prints res.Output to outPath, 2-space indent, UTF-8,
// preserving non-ASCII characters literally.
func Write(outPath string, output []any) error {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encode assembled workflow: %w", err)
	}
	return os.WriteFile(outPath, []byte(buf.String()), 0o644)
}

// Process mirrors process_exam: run Assemble and Write, collecting
// every diagnostic into a single log buffer and never returning an
// error; the caller-misuse case (bad directory) also comes back as
// success=false with the error text in logs.
func Process(fragmentDir, outPath, spreadsheetPath string) (success bool, logs string) {
	res, err := Assemble(fragmentDir, spreadsheetPath)
	if err != nil {
		return false, err.Error()
	}
	if err := Write(outPath, res.Output); err != nil {
		res.Logs = append(res.Logs, err.Error())
		return false, strings.Join(res.Logs, "\n")
	}
	return !res.PartialFailure, strings.Join(res.Logs, "\n")
}
