package node

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parent is a node's parent_id: either the root sentinel (persisted as
// false) or the id of another node.
type Parent struct {
	id string
}

// Root is the parent of root-level nodes.
var Root = Parent{}

// RootValues are the stored parent_id values that decode as Root. Root is
// always written as false.
var RootValues = []any{false, "", nil}

// Ref returns a Parent pointing at id. An empty id is Root.
func Ref(id string) Parent {
	return Parent{id: id}
}

// IsRoot reports whether p is the root sentinel.
func (p Parent) IsRoot() bool {
	return p.id == ""
}

// ID returns the parent id, "" for Root.
func (p Parent) ID() string {
	return p.id
}

// Value is the stored representation used in documents and selectors.
func (p Parent) Value() any {
	if p.IsRoot() {
		return false
	}
	return p.id
}

func (p Parent) String() string {
	if p.IsRoot() {
		return "<root>"
	}
	return p.id
}

func (p Parent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value())
}

// UnmarshalJSON accepts false, null and "" as Root and any other string as
// a reference.
func (p *Parent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "false", "null", `""`:
		*p = Root
		return nil
	}
	var id string
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("node: parent_id must be false or a string: %s", b)
	}
	*p = Ref(id)
	return nil
}
