// Package script replays synthetic pointer and key events against an editor.
//
// A script is YAML:
//
//	steps:
//	  - drag: {template: div, label: Row}
//	    from: palette
//	  - over: {view: canvas, x: 3, y: 4}
//	  - drop: {view: canvas, x: 3, y: 4}
//	  - undo: true
//	  - select: node-1
//	  - move: -1
//	  - delete: node-1
//	    expect: not-found
//
// Engine failures are local: a step that fails is recorded and the replay
// continues, unless the step names the failure it expects and a different
// outcome happens.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"

	"arbor/internal/canvas"
	"arbor/internal/drag"
	"arbor/internal/editor"
	"arbor/internal/history"
	"arbor/internal/model"
	"arbor/internal/outline"
	"arbor/internal/palette"
	"arbor/internal/tree"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrExpectation is returned when a step's outcome differs from its expect.
var ErrExpectation = errors.New("unexpected step outcome")

type Script struct {
	Canvas  *Size  `yaml:"canvas,omitempty"`
	Outline *Size  `yaml:"outline,omitempty"`
	Steps   []Step `yaml:"steps"`
}

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Step struct {
	Drag     *DragSpec `yaml:"drag,omitempty"`
	From     string    `yaml:"from,omitempty"`
	Over     *PointAt  `yaml:"over,omitempty"`
	Drop     *PointAt  `yaml:"drop,omitempty"`
	End      bool      `yaml:"end,omitempty"`
	Undo     bool      `yaml:"undo,omitempty"`
	Redo     bool      `yaml:"redo,omitempty"`
	Select   *string   `yaml:"select,omitempty"`
	Move     int       `yaml:"move,omitempty"`
	Delete   string    `yaml:"delete,omitempty"`
	Collapse string    `yaml:"collapse,omitempty"`
	Borders  bool      `yaml:"borders,omitempty"`
	Padding  bool      `yaml:"padding,omitempty"`

	// Expect names the failure this step must produce; empty accepts any.
	Expect string `yaml:"expect,omitempty"`
}

type DragSpec struct {
	Template string `yaml:"template,omitempty"`
	Label    string `yaml:"label,omitempty"`
	Content  string `yaml:"content,omitempty"`
	Node     string `yaml:"node,omitempty"`
}

type PointAt struct {
	View string  `yaml:"view"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// action returns the step's verb, or "" when it names none or several.
func (s Step) action() string {
	var verbs []string
	add := func(ok bool, v string) {
		if ok {
			verbs = append(verbs, v)
		}
	}
	add(s.Drag != nil, "drag")
	add(s.Over != nil, "over")
	add(s.Drop != nil, "drop")
	add(s.End, "end")
	add(s.Undo, "undo")
	add(s.Redo, "redo")
	add(s.Select != nil, "select")
	add(s.Move != 0, "move")
	add(s.Delete != "", "delete")
	add(s.Collapse != "", "collapse")
	add(s.Borders, "borders")
	add(s.Padding, "padding")
	if len(verbs) != 1 {
		return ""
	}
	return verbs[0]
}

var expectations = map[string]error{
	"invalid-move":        tree.ErrInvalidMove,
	"invalid-template":    model.ErrInvalidTemplate,
	"missing-drop-target": editor.ErrMissingDropTarget,
	"no-drag":             editor.ErrNoDrag,
	"not-found":           tree.ErrNotFound,
	"underflow":           history.ErrUnderflow,
	"overflow":            history.ErrOverflow,
	"no-selection":        outline.ErrNoSelection,
}

func validView(v string) bool {
	return v == canvas.ViewName || v == outline.ViewName
}

// Validate checks that every step names exactly one action with usable
// arguments. All problems are reported together.
func (sc *Script) Validate() error {
	var errs error
	for i, s := range sc.Steps {
		act := s.action()
		if act == "" {
			errs = multierr.Append(errs, fmt.Errorf("step %d: exactly one action is required", i+1))
			continue
		}
		if s.Expect != "" && s.Expect != "ok" {
			if _, ok := expectations[s.Expect]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("step %d: unknown expect %q", i+1, s.Expect))
			}
		}
		switch act {
		case "drag":
			if (s.Drag.Template == "") == (s.Drag.Node == "") {
				errs = multierr.Append(errs, fmt.Errorf("step %d: drag needs exactly one of template or node", i+1))
			}
		case "over", "drop":
			p := s.Over
			if p == nil {
				p = s.Drop
			}
			if !validView(p.View) {
				errs = multierr.Append(errs, fmt.Errorf("step %d: unknown view %q", i+1, p.View))
			}
		}
	}
	return errs
}

// Decode parses and validates a script.
func Decode(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Script
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return &sc, nil
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// StepResult is the outcome of one replayed step.
type StepResult struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
	Node   string `json:"node,omitempty"`
	Zone   string `json:"zone,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Player drives an editor from a script.
type Player struct {
	ed      *editor.Editor
	catalog *palette.Catalog
	log     *zap.Logger
}

// NewPlayer returns a player for ed. Template drags look up catalog first so
// scripts get the catalog's labels and content; a nil catalog uses raw tags.
func NewPlayer(ed *editor.Editor, catalog *palette.Catalog, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{ed: ed, catalog: catalog, log: log.Named("script")}
}

// Run replays every step in order.
func (p *Player) Run(sc *Script) ([]StepResult, error) {
	if sc.Canvas != nil || sc.Outline != nil {
		co := p.ed.Canvas().Options()
		oo := p.ed.Outline().Options()
		if sc.Canvas != nil {
			co.Width, co.Height = sc.Canvas.Width, sc.Canvas.Height
		}
		if sc.Outline != nil {
			oo.Width, oo.Height = sc.Outline.Width, sc.Outline.Height
		}
		p.ed.Resize(co.Width, co.Height, oo.Width, oo.Height)
	}

	results := make([]StepResult, 0, len(sc.Steps))
	for i, s := range sc.Steps {
		res, err := p.step(s)
		res.Index = i + 1
		if err != nil {
			res.Error = err.Error()
			p.log.Debug("step failed", zap.Int("step", i+1), zap.String("action", res.Action), zap.Error(err))
		}
		results = append(results, res)
		if err := check(s.Expect, err); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, res.Action, err)
		}
	}
	return results, nil
}

func check(expect string, err error) error {
	switch expect {
	case "":
		return nil
	case "ok":
		if err != nil {
			return fmt.Errorf("%w: want success, got %v", ErrExpectation, err)
		}
		return nil
	}
	want := expectations[expect]
	if !errors.Is(err, want) {
		return fmt.Errorf("%w: want %s, got %v", ErrExpectation, expect, err)
	}
	return nil
}

func (p *Player) template(d *DragSpec) model.Template {
	t := model.Template{TypeTag: d.Template}
	if p.catalog != nil {
		if found, ok := p.catalog.Find(d.Template); ok {
			t = found
		}
	}
	if d.Label != "" {
		t.Label = d.Label
	}
	if d.Content != "" {
		t.Content = d.Content
	}
	return t
}

func (p *Player) step(s Step) (StepResult, error) {
	act := s.action()
	res := StepResult{Action: act}
	e := p.ed
	switch act {
	case "drag":
		from := s.From
		if from == "" {
			from = "palette"
		}
		if s.Drag.Node != "" {
			res.Node = s.Drag.Node
			return res, e.BeginNodeDrag(from, s.Drag.Node)
		}
		e.BeginTemplateDrag(from, p.template(s.Drag))
		return res, nil
	case "over":
		h, err := e.DragOver(s.Over.View, drag.Point{X: s.Over.X, Y: s.Over.Y})
		if err == nil {
			res.Node, res.Zone = h.Result.Target, h.Result.Zone.String()
		}
		return res, err
	case "drop":
		n, err := e.Drop(s.Drop.View, drag.Point{X: s.Drop.X, Y: s.Drop.Y})
		if n != nil {
			res.Node = n.ID()
		}
		return res, err
	case "end":
		e.EndDrag()
		return res, nil
	case "undo":
		return res, e.Undo()
	case "redo":
		return res, e.Redo()
	case "select":
		res.Node = *s.Select
		return res, e.Select(*s.Select)
	case "move":
		res.Node = e.Selected()
		_, err := e.MoveSelected(s.Move)
		return res, err
	case "delete":
		res.Node = s.Delete
		if err := e.Select(s.Delete); err != nil {
			return res, err
		}
		removed, err := e.RequestDelete()
		if err != nil || removed {
			return res, err
		}
		return res, e.ConfirmDelete()
	case "collapse":
		res.Node = s.Collapse
		if _, ok := e.Tree().FindByID(s.Collapse); !ok {
			return res, fmt.Errorf("collapse: %w: %s", tree.ErrNotFound, s.Collapse)
		}
		e.ToggleCollapsed(s.Collapse)
		return res, nil
	case "borders":
		e.ToggleBorders()
		return res, nil
	case "padding":
		e.TogglePadding()
		return res, nil
	}
	return res, fmt.Errorf("unknown action")
}
