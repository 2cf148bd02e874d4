package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// AnswerKind discriminates the shapes an answer value can take.
type AnswerKind uint8

const (
	AnswerNone AnswerKind = iota
	AnswerText
	AnswerBool
	AnswerList
)

// AnswerValue is a submitted or expected answer: a string, a boolean or an
// ordered list of strings. The zero value holds nothing.
type AnswerValue struct {
	kind AnswerKind
	text string
	flag bool
	list []string
}

func TextAnswer(s string) AnswerValue { return AnswerValue{kind: AnswerText, text: s} }

func BoolAnswer(b bool) AnswerValue { return AnswerValue{kind: AnswerBool, flag: b} }

func ListAnswer(items ...string) AnswerValue {
	list := make([]string, len(items))
	copy(list, items)
	return AnswerValue{kind: AnswerList, list: list}
}

func (a AnswerValue) Kind() AnswerKind { return a.kind }

// Text returns the string form and whether the value is a string.
func (a AnswerValue) Text() (string, bool) { return a.text, a.kind == AnswerText }

// Bool returns the boolean form and whether the value is a boolean.
func (a AnswerValue) Bool() (bool, bool) { return a.flag, a.kind == AnswerBool }

// List returns a copy of the list form and whether the value is a list.
func (a AnswerValue) List() ([]string, bool) {
	if a.kind != AnswerList {
		return nil, false
	}
	out := make([]string, len(a.list))
	copy(out, a.list)
	return out, true
}

// Equal reports strict equality: same kind and same content, list order included.
func (a AnswerValue) Equal(b AnswerValue) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case AnswerText:
		return a.text == b.text
	case AnswerBool:
		return a.flag == b.flag
	case AnswerList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if a.list[i] != b.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (a AnswerValue) String() string {
	switch a.kind {
	case AnswerText:
		return a.text
	case AnswerBool:
		return fmt.Sprintf("%t", a.flag)
	case AnswerList:
		return fmt.Sprintf("%v", a.list)
	default:
		return "<none>"
	}
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerText:
		return json.Marshal(a.text)
	case AnswerBool:
		return json.Marshal(a.flag)
	case AnswerList:
		if a.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.list)
	default:
		return []byte("null"), nil
	}
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = AnswerValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = BoolAnswer(b)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("answer list: %w", err)
		}
		*a = AnswerValue{kind: AnswerList, list: list}
	default:
		return fmt.Errorf("unsupported answer value %s", data)
	}
	return nil
}

// UnmarshalYAML lets content banks write correct answers as plain scalars or sequences.
func (a *AnswerValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!bool" {
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*a = BoolAnswer(b)
			return nil
		}
		*a = TextAnswer(node.Value)
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("answer list: %w", err)
		}
		*a = AnswerValue{kind: AnswerList, list: list}
	default:
		return fmt.Errorf("unsupported answer node at line %d", node.Line)
	}
	return nil
}
