package envelope

import (
	"strings"
)

// Format renders a human-readable tree for debugging. The output is not
// canonical and not parseable.
func (e *Envelope) Format() string {
	var sb strings.Builder
	e.format(&sb, 0)
	return sb.String()
}

func (e *Envelope) format(sb *strings.Builder, depth int) {
	indent := strings.Repeat("    ", depth)
	switch e.kind {
	case caseLeaf:
		sb.WriteString(indent)
		sb.WriteString(e.diagShort())
		sb.WriteString("\n")
	case caseNode:
		e.subject.format(sb, depth)
		sb.WriteString(indent)
		sb.WriteString("[\n")
		for _, a := range e.assertions {
			if a.IsElided() {
				sb.WriteString(indent)
				sb.WriteString("    ELIDED(")
				sb.WriteString(a.digest.Short())
				sb.WriteString(")\n")
				continue
			}
			sb.WriteString(indent)
			sb.WriteString("    ")
			sb.WriteString(a.pred.diagShort())
			sb.WriteString(": ")
			if a.obj.kind == caseLeaf {
				sb.WriteString(a.obj.diagShort())
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n")
				a.obj.format(sb, depth+2)
			}
		}
		sb.WriteString(indent)
		sb.WriteString("]\n")
	case caseWrapped:
		sb.WriteString(indent)
		sb.WriteString("{\n")
		e.inner.format(sb, depth+1)
		sb.WriteString(indent)
		sb.WriteString("}\n")
	case caseElided:
		sb.WriteString(indent)
		sb.WriteString("ELIDED(")
		sb.WriteString(e.digest.Short())
		sb.WriteString(")\n")
	case caseCompressed:
		sb.WriteString(indent)
		sb.WriteString("COMPRESSED(")
		sb.WriteString(e.digest.Short())
		sb.WriteString(")\n")
	}
}
