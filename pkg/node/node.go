// Package node models the typed widget nodes of the document tree and
// converts them to and from the flat records kept in the store.
package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rejonpardenilla/minderal/pkg/store"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

var (
	// ErrUnknownKind is returned for records whose type is not registered.
	ErrUnknownKind = errors.New("node: unknown kind")
	// ErrValueMismatch is returned when a value does not fit the node's kind.
	ErrValueMismatch = errors.New("node: value does not match kind")
)

// Record is the flat shape persisted for every node.
type Record struct {
	ID         string          `json:"_id,omitempty"`
	Name       string          `json:"name"`
	Value      json.RawMessage `json:"value"`
	Type       widget.Kind     `json:"type"`
	IndexValue bool            `json:"index_value"`
	ParentID   Parent          `json:"parent_id"`
	Order      float64         `json:"order"`
}

// Doc converts the record to a store document.
func (r Record) Doc() (store.Doc, error) {
	if len(r.Value) == 0 {
		r.Value = json.RawMessage("null")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("node: encode record: %w", err)
	}
	doc := store.Doc{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("node: encode record: %w", err)
	}
	return doc, nil
}

// RecordFromDoc decodes a store document into a Record.
func RecordFromDoc(doc store.Doc) (Record, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Record{}, fmt.Errorf("node: decode %s: %w", doc.ID(), err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("node: decode %s: %w", doc.ID(), err)
	}
	return r, nil
}

// Node is a tree element. Its value is kept exactly as stored; Content is
// the typed view of it for the node's kind.
type Node struct {
	ID         string
	Parent     Parent
	Order      float64
	IndexValue bool

	content Content
	value   json.RawMessage
	// extra holds stored fields outside Record so writes keep them.
	extra store.Doc
}

// New builds an unsaved node from user input. For text widgets input becomes
// the value and the name stays empty; for every other kind input is the name
// and the value is the widget's default.
func New(input string, w widget.Widget, parent Parent, order float64) (Node, error) {
	r := Record{
		Type:       w.Index,
		IndexValue: w.IndexValue,
		ParentID:   parent,
		Order:      order,
	}
	var value any = w.DefaultValue
	if w.IsText() {
		value = input
	} else {
		r.Name = input
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return Node{}, fmt.Errorf("node: encode default value: %w", err)
	}
	r.Value = raw
	return FromRecord(r)
}

// FromRecord converts a persisted record into a typed node.
func FromRecord(r Record) (Node, error) {
	if _, ok := widget.Lookup(r.Type); !ok {
		return Node{}, fmt.Errorf("%w %q (node %s)", ErrUnknownKind, r.Type, r.ID)
	}
	value := normalizeRaw(r.Value)
	content, err := decodeContent(r.Type, r.Name, value)
	if err != nil {
		return Node{}, fmt.Errorf("node %s: %w", r.ID, err)
	}
	return Node{
		ID:         r.ID,
		Parent:     r.ParentID,
		Order:      r.Order,
		IndexValue: r.IndexValue,
		content:    content,
		value:      value,
	}, nil
}

// recordFields are the document keys owned by Record.
var recordFields = map[string]bool{
	store.IDField: true,
	"name":        true,
	"value":       true,
	"type":        true,
	"index_value": true,
	"parent_id":   true,
	"order":       true,
}

// FromDoc decodes a store document into a typed node. Fields the node does
// not model are kept and written back by Doc.
func FromDoc(doc store.Doc) (Node, error) {
	r, err := RecordFromDoc(doc)
	if err != nil {
		return Node{}, err
	}
	n, err := FromRecord(r)
	if err != nil {
		return Node{}, err
	}
	for k, v := range doc {
		if recordFields[k] {
			continue
		}
		if n.extra == nil {
			n.extra = store.Doc{}
		}
		n.extra[k] = v
	}
	return n, nil
}

// Record returns the flat persisted form of n.
func (n Node) Record() Record {
	return Record{
		ID:         n.ID,
		Name:       n.Name(),
		Value:      append(json.RawMessage(nil), n.Value()...),
		Type:       n.Kind(),
		IndexValue: n.IndexValue,
		ParentID:   n.Parent,
		Order:      n.Order,
	}
}

// Doc returns the store document for n, including any fields it was read
// with that Record does not cover.
func (n Node) Doc() (store.Doc, error) {
	doc, err := n.Record().Doc()
	if err != nil {
		return nil, err
	}
	for k, v := range n.extra.Clone() {
		if _, ok := doc[k]; !ok {
			doc[k] = v
		}
	}
	return doc, nil
}

// Content is the typed view of the node's name and value.
func (n Node) Content() Content {
	return n.content
}

// Kind returns the node's widget kind.
func (n Node) Kind() widget.Kind {
	if n.content == nil {
		return ""
	}
	return n.content.Kind()
}

// Name is the stored label; always empty for text nodes.
func (n Node) Name() string {
	if n.content == nil {
		return ""
	}
	return n.content.Label()
}

// Value returns the raw stored value.
func (n Node) Value() json.RawMessage {
	if len(n.value) == 0 {
		return json.RawMessage("null")
	}
	return n.value
}

// Display is the human readable text of the node: the body for text nodes
// and the name for everything else.
func (n Node) Display() string {
	if t, ok := n.content.(Text); ok {
		return t.Body
	}
	return n.Name()
}

// SetValue replaces the node's value. The node is left unchanged when v
// cannot be represented by the node's kind.
func (n *Node) SetValue(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValueMismatch, err)
	}
	raw = normalizeRaw(raw)
	content, err := decodeContent(n.Kind(), n.Name(), raw)
	if err != nil {
		return err
	}
	n.content = content
	n.value = raw
	return nil
}

func normalizeRaw(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return append(json.RawMessage(nil), raw...)
}
