// Package widget defines the static registry of node kinds.
package widget

import (
	"fmt"
	"strings"
)

// Kind identifies a widget type. It is persisted as the node's `type`.
type Kind string

const (
	// Text nodes keep their content in value and leave name empty.
	Text      Kind = "text"
	Folder    Kind = "folder"
	Link      Kind = "link"
	Checkbox  Kind = "checkbox"
	Audio     Kind = "audio"
	Counter   Kind = "counter"
	Countdown Kind = "countdown"
	Todo      Kind = "todo"
)

// Widget is the display metadata and creation defaults for a Kind.
type Widget struct {
	Index        Kind   `json:"index"`
	Label        string `json:"label"`
	Icon         string `json:"icon"`
	Symbol       string `json:"symbol"`
	IndexValue   bool   `json:"indexValue"`
	DefaultValue any    `json:"defaultValue,omitempty"`
}

// IsText reports whether w stores its content in value rather than name.
func (w Widget) IsText() bool {
	return w.Index == Text
}

func (w Widget) String() string {
	return string(w.Index)
}

var registry = []Widget{
	{Index: Text, Label: "Text", Icon: "fa-solid fa-align-left", Symbol: "¶", IndexValue: true},
	{Index: Folder, Label: "Folder", Icon: "fa-solid fa-folder", Symbol: "▸"},
	{Index: Link, Label: "Link", Icon: "fa-solid fa-link", Symbol: "↗", IndexValue: true},
	{Index: Checkbox, Label: "Checkbox", Icon: "fa-solid fa-square-check", Symbol: "☐", DefaultValue: false},
	{Index: Audio, Label: "Audio", Icon: "fa-solid fa-microphone", Symbol: "♪"},
	{Index: Counter, Label: "Counter", Icon: "fa-solid fa-plus-minus", Symbol: "±"},
	{Index: Countdown, Label: "Countdown", Icon: "fa-solid fa-hourglass-half", Symbol: "⧗"},
	{Index: Todo, Label: "To-do", Icon: "fa-solid fa-square-check", Symbol: "●"},
}

// List returns every registered widget in declaration order.
func List() []Widget {
	out := make([]Widget, len(registry))
	copy(out, registry)
	return out
}

// AllKinds returns the list of supported kinds.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for _, w := range registry {
		kinds = append(kinds, w.Index)
	}
	return kinds
}

// Lookup returns the widget registered for kind.
func Lookup(kind Kind) (Widget, bool) {
	for _, w := range registry {
		if w.Index == kind {
			return w, true
		}
	}
	return Widget{}, false
}

// MustLookup is Lookup that panics on unknown kinds. Intended for tests/config.
func MustLookup(kind Kind) Widget {
	w, ok := Lookup(kind)
	if !ok {
		panic(fmt.Sprintf("widget: unknown kind %q", kind))
	}
	return w
}

// ParseKind converts a kind id or label to a Widget, ignoring case.
func ParseKind(raw string) (Widget, error) {
	k := strings.ToLower(strings.TrimSpace(raw))
	for _, w := range registry {
		if string(w.Index) == k || strings.ToLower(w.Label) == k {
			return w, nil
		}
	}
	return Widget{}, fmt.Errorf("widget: unknown kind %q", raw)
}
