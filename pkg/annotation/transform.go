package annotation

// Transform rebuilds the tree rooted at root bottom-up: nested annotations are
// transformed first, then fn is applied to the (possibly rebuilt) node.
// Subtrees for which nothing changed are returned pointer-identical, so a
// caller can detect a no-op with ==.
func Transform(root *Annotation, fn func(*Annotation) *Annotation) *Annotation {
	if root == nil {
		return nil
	}

	node := root

	args, changed := transformArgs(root.Args, fn)
	if changed {
		node = root.WithArguments(args)
	}

	return fn(node)
}

func transformArgs(args []Argument, fn func(*Annotation) *Annotation) ([]Argument, bool) {
	var out []Argument

	for i, arg := range args {
		value, changed := transformValue(arg.Value, fn)
		if !changed {
			if out != nil {
				out[i] = arg
			}

			continue
		}

		if out == nil {
			out = make([]Argument, len(args))
			copy(out, args[:i])
		}

		arg.Value = value
		out[i] = arg
	}

	if out == nil {
		return args, false
	}

	return out, true
}

func transformValue(value Value, fn func(*Annotation) *Annotation) (Value, bool) {
	switch v := value.(type) {
	case *Annotation:
		next := Transform(v, fn)

		return next, next != v
	case Array:
		var elems []Value

		for i, elem := range v.Elems {
			next, changed := transformValue(elem, fn)
			if !changed {
				if elems != nil {
					elems[i] = elem
				}

				continue
			}

			if elems == nil {
				elems = make([]Value, len(v.Elems))
				copy(elems, v.Elems[:i])
			}

			elems[i] = next
		}

		if elems == nil {
			return value, false
		}

		return Array{Elems: elems}, true
	default:
		return value, false
	}
}

// Inspect calls visit for root and every nested annotation in pre-order.
// Returning false from visit skips the node's children.
func Inspect(root *Annotation, visit func(*Annotation) bool) {
	if root == nil || !visit(root) {
		return
	}

	for _, arg := range root.Args {
		inspectValue(arg.Value, visit)
	}
}

func inspectValue(value Value, visit func(*Annotation) bool) {
	switch v := value.(type) {
	case *Annotation:
		Inspect(v, visit)
	case Array:
		for _, elem := range v.Elems {
			inspectValue(elem, visit)
		}
	}
}

// TypeReferences returns the fully-qualified type names referenced by value:
// annotation types and resolved class literals, in pre-order, deduplicated.
func TypeReferences(value Value) []string {
	var refs []string

	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}

		seen[name] = true
		refs = append(refs, name)
	}

	var walk func(Value)

	walk = func(v Value) {
		switch val := v.(type) {
		case *Annotation:
			add(val.TypeName())

			for _, arg := range val.Args {
				walk(arg.Value)
			}
		case Array:
			for _, elem := range val.Elems {
				walk(elem)
			}
		case ClassLiteral:
			add(val.Resolved)
		}
	}

	walk(value)

	return refs
}

// RenameTypes returns value with every annotation type and resolved class
// literal written under the name rename returns for its fully-qualified name.
// The fully-qualified Type and Resolved fields are kept. Unchanged subtrees
// are shared with the input.
func RenameTypes(value Value, rename func(fqn string) string) Value {
	out, _ := renameValue(value, rename)

	return out
}

func renameValue(value Value, rename func(string) string) (Value, bool) {
	switch v := value.(type) {
	case *Annotation:
		return renameAnnotation(v, rename)
	case Array:
		var elems []Value

		for i, elem := range v.Elems {
			next, changed := renameValue(elem, rename)
			if !changed {
				if elems != nil {
					elems[i] = elem
				}

				continue
			}

			if elems == nil {
				elems = make([]Value, len(v.Elems))
				copy(elems, v.Elems[:i])
			}

			elems[i] = next
		}

		if elems == nil {
			return v, false
		}

		return Array{Elems: elems}, true
	case ClassLiteral:
		if v.Resolved == "" {
			return v, false
		}

		name := rename(v.Resolved)
		if name == v.Type {
			return v, false
		}

		return ClassLiteral{Type: name, Resolved: v.Resolved}, true
	default:
		return value, false
	}
}

func renameAnnotation(a *Annotation, rename func(string) string) (*Annotation, bool) {
	var args []Argument

	for i, arg := range a.Args {
		next, changed := renameValue(arg.Value, rename)
		if !changed {
			if args != nil {
				args[i] = arg
			}

			continue
		}

		if args == nil {
			args = make([]Argument, len(a.Args))
			copy(args, a.Args[:i])
		}

		arg.Value = next
		args[i] = arg
	}

	out := a
	if args != nil {
		out = a.WithArguments(args)
	}

	if name := rename(a.TypeName()); name != a.Name {
		out = out.WithName(name)
	}

	return out, out != a
}
