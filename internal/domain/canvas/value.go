package canvas

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is a box answer: free text or a list of checked options. It encodes
// as a JSON string or a JSON array respectively.
type Value struct {
	text   string
	items  []string
	isList bool
}

// Text builds a free-text value.
func Text(s string) Value { return Value{text: s} }

// List builds a multi-select value.
func List(items ...string) Value {
	return Value{items: append([]string{}, items...), isList: true}
}

// IsList reports whether v is a multi-select value.
func (v Value) IsList() bool { return v.isList }

// Items returns the checked options of a list value.
func (v Value) Items() []string { return append([]string(nil), v.items...) }

// String renders the value as display text, one option per line for lists.
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.items, "\n")
	}
	return v.text
}

// Empty reports whether the value counts as unfilled.
func (v Value) Empty() bool {
	if v.isList {
		return len(v.items) == 0
	}
	return strings.TrimSpace(v.text) == ""
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON implements json.Unmarshaler. Anything that is neither a
// string nor a list of strings decodes as empty text.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []string
		if err := json.Unmarshal(b, &items); err == nil {
			*v = List(items...)
			return nil
		}
		*v = Value{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*v = Value{}
		return nil
	}
	*v = Text(s)
	return nil
}
