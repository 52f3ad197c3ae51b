package drag

import (
	"arbor/internal/model"
	"arbor/internal/tree"
)

// State of the drag state machine: Idle -> Dragging -> Idle.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// SourceKind says whether the drag carries a palette template or an
// existing node.
type SourceKind int

const (
	SourceTemplate SourceKind = iota
	SourceExisting
)

func (k SourceKind) String() string {
	if k == SourceExisting {
		return "existing"
	}
	return "template"
}

// Hover is the latest drag-over evaluation.
type Hover struct {
	View string
	// Container is the id of the drop zone whose children were resolved; ""
	// is the root.
	Container string
	Result    Result
}

// Session is the transient drag state. Exactly one exists per engine and it
// is passed explicitly, never read from globals.
type Session struct {
	state    State
	source   SourceKind
	template model.Template
	node     *tree.Node
	origin   string
	hover    Hover
	hovering bool
}

func (s *Session) State() State             { return s.state }
func (s *Session) Active() bool             { return s.state == Dragging }
func (s *Session) Source() SourceKind       { return s.source }
func (s *Session) Origin() string           { return s.origin }
func (s *Session) Node() *tree.Node         { return s.node }
func (s *Session) Template() model.Template { return s.template }

// Hover returns the last hover and whether one was recorded.
func (s *Session) Hover() (Hover, bool) { return s.hover, s.hovering }

// DraggedID is the id of the dragged node, "" for template drags.
func (s *Session) DraggedID() string {
	if s.node == nil {
		return ""
	}
	return s.node.ID()
}

// StartTemplate begins a palette drag. Leftover state from an improperly
// terminated drag is cleared first; the return value reports that.
func (s *Session) StartTemplate(origin string, t model.Template) (hadLeftover bool) {
	hadLeftover = s.Reset()
	s.state = Dragging
	s.source = SourceTemplate
	s.template = t
	s.origin = origin
	return hadLeftover
}

// StartNode begins dragging an existing node.
func (s *Session) StartNode(origin string, n *tree.Node) (hadLeftover bool) {
	hadLeftover = s.Reset()
	s.state = Dragging
	s.source = SourceExisting
	s.node = n
	s.template = model.Template{TypeTag: n.TypeTag, Label: n.Label, Content: n.Content}
	s.origin = origin
	return hadLeftover
}

// Over records a drag-over evaluation. It is ignored while idle.
func (s *Session) Over(h Hover) bool {
	if s.state != Dragging {
		return false
	}
	s.hover = h
	s.hovering = true
	return true
}

// ClearHover drops the hover (pointer left every drop zone).
func (s *Session) ClearHover() {
	s.hover = Hover{}
	s.hovering = false
}

// Reset returns to Idle. It is idempotent; it reports whether anything changed.
func (s *Session) Reset() bool {
	if s.state == Idle && !s.hovering && s.node == nil && s.template == (model.Template{}) {
		return false
	}
	*s = Session{}
	return true
}
