package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidTemplate is returned when a palette template carries a missing or
// malformed type tag. No node is created in that case.
var ErrInvalidTemplate = errors.New("invalid template")

var typeTagRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// Template is what the palette hands to the editor when a drag starts.
type Template struct {
	TypeTag  string `json:"type" yaml:"type"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Content  string `json:"content,omitempty" yaml:"content,omitempty"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// ValidTypeTag reports whether tag is an identifier-like element type.
func ValidTypeTag(tag string) bool {
	return typeTagRe.MatchString(tag)
}

// Validate checks the template's type tag.
func (t Template) Validate() error {
	if strings.TrimSpace(t.TypeTag) == "" {
		return fmt.Errorf("%w: missing type tag", ErrInvalidTemplate)
	}
	if !ValidTypeTag(t.TypeTag) {
		return fmt.Errorf("%w: type tag %q", ErrInvalidTemplate, t.TypeTag)
	}
	return nil
}

// DisplayLabel follows the palette convention: label, then content, then type.
func (t Template) DisplayLabel() string {
	if s := strings.TrimSpace(t.Label); s != "" {
		return s
	}
	if s := strings.TrimSpace(t.Content); s != "" {
		return s
	}
	return t.TypeTag
}

// SnapshotNode is the wire form of one node: the unit of serialization used by
// history snapshots and change notifications. Child order is significant.
type SnapshotNode struct {
	ID       string         `json:"id" yaml:"id"`
	TypeTag  string         `json:"type" yaml:"type"`
	Label    string         `json:"label" yaml:"label"`
	Content  string         `json:"content" yaml:"content"`
	Children []SnapshotNode `json:"children" yaml:"children"`
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n SnapshotNode) Count() int {
	c := 1
	for _, ch := range n.Children {
		c += ch.Count()
	}
	return c
}
