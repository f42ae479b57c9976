package javasrc

import "github.com/Sumatoshi-tech/annorewrite/pkg/annotation"

// Reprint queues on ed the replacements that turn old, an annotation parsed
// from f, into updated. Only the innermost nodes that actually changed are
// rendered again; all other text keeps its original bytes. It reports false
// when old was not parsed from f.
func (f *File) Reprint(ed *Edits, old, updated *annotation.Annotation) bool {
	if old == updated {
		return true
	}

	loc, ok := f.Nodes[old]
	if !ok {
		return false
	}

	edits, ok := f.diffNode(old, updated)
	if !ok {
		edits = []edit{{start: loc.Span.Start, end: loc.Span.End, text: updated.Render()}}
	}

	for _, e := range edits {
		ed.Replace(e.start, e.end, e.text)
	}

	return true
}

// diffNode returns edits for the differences between old and updated when
// they can be localised below old's own span.
func (f *File) diffNode(old, updated *annotation.Annotation) ([]edit, bool) {
	if old == updated {
		return nil, true
	}

	loc, ok := f.Nodes[old]
	if !ok || old.Marker != updated.Marker || len(old.Args) != len(updated.Args) {
		return nil, false
	}

	for i := range old.Args {
		o, u := old.Args[i], updated.Args[i]
		if o.Name != u.Name || o.Implicit != u.Implicit {
			return nil, false
		}
	}

	var edits []edit

	if old.Name != updated.Name {
		edits = append(edits, edit{start: loc.Name.Start, end: loc.Name.End, text: updated.Name})
	}

	for i := range old.Args {
		sub, ok := f.diffValue(old.Args[i].Value, updated.Args[i].Value)
		if !ok {
			return nil, false
		}

		edits = append(edits, sub...)
	}

	return edits, true
}

func (f *File) diffValue(old, updated annotation.Value) ([]edit, bool) {
	switch o := old.(type) {
	case *annotation.Annotation:
		u, ok := updated.(*annotation.Annotation)
		if !ok {
			return nil, false
		}

		if edits, ok := f.diffNode(o, u); ok {
			return edits, true
		}

		loc, known := f.Nodes[o]
		if !known {
			return nil, false
		}

		return []edit{{start: loc.Span.Start, end: loc.Span.End, text: u.Render()}}, true
	case annotation.Array:
		u, ok := updated.(annotation.Array)
		if !ok || len(o.Elems) != len(u.Elems) {
			return nil, false
		}

		var edits []edit

		for i := range o.Elems {
			sub, ok := f.diffValue(o.Elems[i], u.Elems[i])
			if !ok {
				return nil, false
			}

			edits = append(edits, sub...)
		}

		return edits, true
	default:
		return nil, old.Render() == updated.Render()
	}
}
