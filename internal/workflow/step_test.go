package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepUnmarshalJSONCaseAndAliases(t *testing.T) {
	raw := `{
		"Type": "Click",
		"TITLE": "submit form",
		"Tag": "button",
		"attribute": "data-test",
		"Value": "submit",
		"Array_Select_One": 2,
		"Ignore": true,
		"sleep": 1.5
	}`

	var s Step
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	require.Equal(t, "click", s.Type, "type is lower-cased")
	require.Equal(t, "submit form", s.Title)
	require.Equal(t, "button", s.Tag)
	require.Equal(t, "data-test", s.Attr, "attribute alias resolves to Attr")
	require.Equal(t, "submit", s.Value)
	require.NotNil(t, s.ArraySelectOne)
	require.Equal(t, 2, *s.ArraySelectOne)
	require.True(t, s.Ignore)
	require.Equal(t, 1.5, s.Sleep)
}

func TestStepUnmarshalJSONAttrAliases(t *testing.T) {
	for _, key := range []string{"attr", "arrt", "attribute"} {
		var s Step
		raw, err := json.Marshal(map[string]any{"type": "write", key: "data-x"})
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &s))
		require.Equal(t, "data-x", s.Attr, "alias %q should populate Attr", key)
	}
}

func TestStepDefaultTimeout(t *testing.T) {
	var s Step
	require.NoError(t, json.Unmarshal([]byte(`{"type":"click"}`), &s))
	require.Equal(t, defaultTimeoutMS, s.Timeout)

	var withTimeout Step
	require.NoError(t, json.Unmarshal([]byte(`{"type":"click","timeout":5000}`), &withTimeout))
	require.Equal(t, 5000, withTimeout.Timeout)
}

func TestWritePayloadAliasPriority(t *testing.T) {
	var s Step
	require.NoError(t, json.Unmarshal([]byte(`{"type":"write","value":"fallback","text":"last"}`), &s))
	require.Equal(t, "fallback", s.WritePayload(), "write/value/text resolve in that priority order")

	var withWrite Step
	require.NoError(t, json.Unmarshal([]byte(`{"type":"write","write":"primary","value":"fallback"}`), &withWrite))
	require.Equal(t, "primary", withWrite.WritePayload())
}

func TestGotoURLAlias(t *testing.T) {
	var s Step
	require.NoError(t, json.Unmarshal([]byte(`{"type":"goto","value":"https://example.com"}`), &s))
	require.Equal(t, "https://example.com", s.GotoURL())
}

func TestOptionalFloatAcceptsNumericString(t *testing.T) {
	input := map[string]any{"sleep": "2.5"}
	require.Equal(t, 2.5, optionalFloat(input, "sleep"))
}

func TestOptionalIntPtrAbsentKey(t *testing.T) {
	idx, ok := optionalIntPtr(map[string]any{}, "array_select_one")
	require.False(t, ok)
	require.Nil(t, idx)
}

func TestDecodeStepsFromAnyNestedActions(t *testing.T) {
	var outer Step
	raw := `{"type":"array","tag":"li","click":[{"Type":"Click","Tag":"span"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &outer))

	nested, err := decodeStepsFromAny(outer.Raw["click"])
	require.NoError(t, err)
	require.Len(t, nested, 1)
	require.Equal(t, "click", nested[0].Type)
	require.Equal(t, "span", nested[0].Tag)
}
