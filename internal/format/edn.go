package format

import (
	"io"
	"strconv"
	"strings"
)

// WriteEDN writes v as EDN: objects become maps with keyword keys, arrays
// become vectors.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := decode(v)
	if err != nil {
		return err
	}
	var sb strings.Builder
	e := ednWriter{sb: &sb, pretty: pretty}
	e.write(x, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

type ednWriter struct {
	sb     *strings.Builder
	pretty bool
}

func (e ednWriter) sep(level int, last bool) {
	switch {
	case last:
	case e.pretty:
		e.sb.WriteByte('\n')
		e.sb.WriteString(strings.Repeat("  ", level))
	default:
		e.sb.WriteByte(' ')
	}
}

func (e ednWriter) write(x value, level int) {
	switch x.kind {
	case 'z':
		e.sb.WriteString("nil")
	case 'b':
		e.sb.WriteString(strconv.FormatBool(x.b))
	case 's':
		e.sb.WriteString(strconv.Quote(x.str))
	case 'n':
		e.sb.WriteString(x.num.String())
	case 'a':
		e.sb.WriteByte('[')
		for i, el := range x.elems {
			e.write(el, level+1)
			e.sep(level+1, i == len(x.elems)-1)
		}
		e.sb.WriteByte(']')
	case 'o':
		e.sb.WriteByte('{')
		for i, k := range x.keys {
			e.sb.WriteByte(':')
			e.sb.WriteString(keyword(k))
			e.sb.WriteByte(' ')
			e.write(x.elems[i], level+1)
			e.sep(level+1, i == len(x.keys)-1)
		}
		e.sb.WriteByte('}')
	}
}

func keyword(s string) string {
	return strings.Join(strings.Fields(s), "-")
}
