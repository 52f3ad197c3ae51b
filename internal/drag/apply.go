package drag

import (
	"fmt"

	"arbor/internal/tree"
)

// Apply commits the session's payload at the place h describes. Template
// payloads are validated before a node is created; existing nodes keep their
// id. The cycle check runs before any mutation. Apply does not reset s.
func (s *Session) Apply(t *tree.Tree, h Hover) (*tree.Node, error) {
	if s.state != Dragging {
		return nil, fmt.Errorf("apply: no active drag")
	}
	refID, pos := h.Placement()
	var ref *tree.Node
	if refID != "" {
		n, ok := t.FindByID(refID)
		if !ok {
			return nil, fmt.Errorf("apply: %w: %s", tree.ErrNotFound, refID)
		}
		ref = n
	}

	n := s.node
	if s.source == SourceTemplate {
		if err := s.template.Validate(); err != nil {
			return nil, err
		}
		n = tree.NewNode(s.template)
	} else if n == nil || !t.Attached(n) {
		return nil, fmt.Errorf("apply: %w: dragged node", tree.ErrNotFound)
	}

	if err := t.CheckMove(n, ref, pos); err != nil {
		return nil, err
	}
	if err := t.InsertRelative(n, ref, pos); err != nil {
		return nil, err
	}
	return n, nil
}
