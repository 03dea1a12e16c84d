package workflow

import "strings"

// buildSelector translates a step's structural fields into a CSS
// selector string, per the documented rules: missing tag becomes "*",
// the class string splits on whitespace into chained class selectors,
// and attr/value becomes [attr="value"] or [attr] alone. No escaping
// of attribute values is performed — callers must not embed `"`.
func buildSelector(tag, class, attr, value string) string {
	var b strings.Builder

	if tag = strings.TrimSpace(tag); tag != "" {
		b.WriteString(tag)
	} else {
		b.WriteString("*")
	}

	for _, tok := range strings.Fields(class) {
		if strings.HasPrefix(tok, ".") {
			b.WriteString(tok)
		} else {
			b.WriteString(".")
			b.WriteString(tok)
		}
	}

	if attr = strings.TrimSpace(attr); attr != "" {
		if value != "" {
			b.WriteString("[")
			b.WriteString(attr)
			b.WriteString(`="`)
			b.WriteString(value)
			b.WriteString(`"]`)
		} else {
			b.WriteString("[")
			b.WriteString(attr)
			b.WriteString("]")
		}
	}

	return b.String()
}
