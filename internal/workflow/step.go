package workflow

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Step is a single node in a workflow. Field names are accepted
// case-insensitively with the documented aliases (attr/arrt/attribute,
// write/value/text, url/value for goto); unknown fields are ignored.
// Kind-specific fields stay in Raw for executors to pull via the
// coercion helpers below, mirroring the tolerant get_key/to_int_or_none
// field access of the original implementation rather than a strict
// schema unmarshal.
type Step struct {
	Type  string
	Title string

	Tag            string
	Class          string
	Attr           string
	Value          string
	Text           string
	ArraySelectOne *int

	Ignore  bool
	Sleep   float64
	Timeout int // milliseconds; zero means "use default"

	Raw map[string]any
}

const defaultTimeoutMS = 30000

// UnmarshalJSON lower-cases every key before decoding so downstream
// lookups never have to special-case "Title" vs "title".
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	norm := make(map[string]any, len(raw))
	for k, v := range raw {
		norm[strings.ToLower(k)] = v
	}

	s.Raw = norm
	s.Type = strings.ToLower(optionalString(norm, "type"))
	s.Title = optionalString(norm, "title")
	s.Tag = optionalString(norm, "tag")
	s.Class = optionalString(norm, "class")
	s.Attr = optionalString(norm, "attr", "arrt", "attribute")
	s.Value = optionalString(norm, "value")
	s.Text = optionalString(norm, "text")
	if idx, ok := optionalIntPtr(norm, "array_select_one"); ok {
		s.ArraySelectOne = idx
	}
	s.Ignore = optionalBool(norm, "ignore")
	s.Sleep = optionalFloat(norm, "sleep")
	if t := optionalInt(norm, "timeout"); t > 0 {
		s.Timeout = t
	} else {
		s.Timeout = defaultTimeoutMS
	}
	return nil
}

// WritePayload returns the write/value/text payload per spec's alias
// rule for the write step.
func (s *Step) WritePayload() string {
	return firstNonEmpty(
		optionalString(s.Raw, "write"),
		optionalString(s.Raw, "value"),
		optionalString(s.Raw, "text"),
	)
}

// GotoURL returns the url/value payload used by the goto step.
func (s *Step) GotoURL() string {
	return firstNonEmpty(optionalString(s.Raw, "url"), optionalString(s.Raw, "value"))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// --- tolerant field-coercion helpers, ported from the toolbox
// pattern: string and numeric lookups accept json.Number, float64 and
// string values, bool lookups accept bool and "true"/"false" strings,
// and none of them panics on absence. ---

func optionalString(input map[string]any, keys ...string) string {
	for _, key := range keys {
		val, ok := input[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func requiredString(input map[string]any, key string) (string, error) {
	v := optionalString(input, key)
	if v == "" {
		return "", newConfigErr(optionalString(input, "type"), key)
	}
	return v, nil
}

func optionalBool(input map[string]any, keys ...string) bool {
	return optionalBoolDefault(input, false, keys...)
}

func optionalBoolDefault(input map[string]any, def bool, keys ...string) bool {
	for _, key := range keys {
		val, ok := input[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case bool:
			return v
		case string:
			return strings.EqualFold(v, "true")
		}
	}
	return def
}

func optionalFloat(input map[string]any, keys ...string) float64 {
	for _, key := range keys {
		val, ok := input[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case float64:
			return v
		case json.Number:
			f, err := v.Float64()
			if err == nil {
				return f
			}
		case string:
			// best-effort: workflows sometimes carry numeric strings
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func optionalInt(input map[string]any, keys ...string) int {
	return int(optionalFloat(input, keys...))
}

func optionalIntPtr(input map[string]any, keys ...string) (*int, bool) {
	for _, key := range keys {
		if _, ok := input[key]; ok {
			i := optionalInt(input, key)
			return &i, true
		}
	}
	return nil, false
}

// lowercaseKeys returns a copy of m with every key lower-cased, for
// normalizing nested objects (e.g. an "if" block) that did not pass
// through Step.UnmarshalJSON.
func lowercaseKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// decodeStepsFromAny re-marshals a decoded interface{} (typically a
// nested "actions" or "click" array already present in a Step's Raw
// map) back into JSON and decodes it as []Step, so nested step lists
// go through the same alias/case handling as top-level ones.
func decodeStepsFromAny(v any) ([]Step, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, wrapIOErr("encode nested steps", err)
	}
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, wrapIOErr("decode nested steps", err)
	}
	return steps, nil
}

