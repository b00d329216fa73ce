package node

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rejonpardenilla/minderal/pkg/widget"
)

// Content is implemented by one variant per widget kind.
type Content interface {
	Kind() widget.Kind
	// Label is the persisted name.
	Label() string

	sealed()
}

// Text is a block of body text. Text nodes have no name.
type Text struct {
	Body string
}

// Folder groups child nodes.
type Folder struct {
	Name string
}

// Link points at a URL.
type Link struct {
	Name string
	URL  string
}

// Checkbox is a named boolean.
type Checkbox struct {
	Name    string
	Checked bool
}

// Audio references a recording.
type Audio struct {
	Name   string
	Source string
}

// Counter is a named number.
type Counter struct {
	Name  string
	Count float64
}

// Countdown counts towards Target, an RFC 3339 timestamp or a duration.
type Countdown struct {
	Name   string
	Target string
}

// Todo is a named task.
type Todo struct {
	Name string
	Done bool
}

func (Text) Kind() widget.Kind      { return widget.Text }
func (Folder) Kind() widget.Kind    { return widget.Folder }
func (Link) Kind() widget.Kind      { return widget.Link }
func (Checkbox) Kind() widget.Kind  { return widget.Checkbox }
func (Audio) Kind() widget.Kind     { return widget.Audio }
func (Counter) Kind() widget.Kind   { return widget.Counter }
func (Countdown) Kind() widget.Kind { return widget.Countdown }
func (Todo) Kind() widget.Kind      { return widget.Todo }

func (Text) Label() string        { return "" }
func (c Folder) Label() string    { return c.Name }
func (c Link) Label() string      { return c.Name }
func (c Checkbox) Label() string  { return c.Name }
func (c Audio) Label() string     { return c.Name }
func (c Counter) Label() string   { return c.Name }
func (c Countdown) Label() string { return c.Name }
func (c Todo) Label() string      { return c.Name }

func (Text) sealed()      {}
func (Folder) sealed()    {}
func (Link) sealed()      {}
func (Checkbox) sealed()  {}
func (Audio) sealed()     {}
func (Counter) sealed()   {}
func (Countdown) sealed() {}
func (Todo) sealed()      {}

func decodeContent(kind widget.Kind, name string, raw json.RawMessage) (Content, error) {
	switch kind {
	case widget.Text:
		c := Text{}
		err := optional(kind, raw, &c.Body)
		return c, err
	case widget.Folder:
		// Folders carry no value of their own; whatever is stored is kept
		// as-is on the node.
		return Folder{Name: name}, nil
	case widget.Link:
		c := Link{Name: name}
		err := optional(kind, raw, &c.URL)
		return c, err
	case widget.Checkbox:
		c := Checkbox{Name: name}
		err := optional(kind, raw, &c.Checked)
		return c, err
	case widget.Audio:
		c := Audio{Name: name}
		err := optional(kind, raw, &c.Source)
		return c, err
	case widget.Counter:
		c := Counter{Name: name}
		err := optional(kind, raw, &c.Count)
		return c, err
	case widget.Countdown:
		c := Countdown{Name: name}
		err := optional(kind, raw, &c.Target)
		return c, err
	case widget.Todo:
		c := Todo{Name: name}
		err := optional(kind, raw, &c.Done)
		return c, err
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// optional decodes raw into dst, leaving dst at its zero value for null.
func optional(kind widget.Kind, raw json.RawMessage, dst any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s value %s", ErrValueMismatch, kind, raw)
	}
	return nil
}
