package domain

// InputDeclaration is the set of inputs an agent accepts, mapping each input
// name to its declared default value. A nil default marks the input required.
type InputDeclaration map[string]*string

// Required returns the names of inputs that have no declared default.
func (d InputDeclaration) Required() []string {
	var names []string
	for name, def := range d {
		if def == nil {
			names = append(names, name)
		}
	}
	return names
}

// InputState is a fully resolved per-request input mapping. It contains
// exactly the declared input names, every value concrete.
type InputState map[string]string

// OutputState is the result of one agent run. It always carries the
// designated "output" key alongside run metadata.
type OutputState map[string]any

// Output returns the value under the designated output key.
func (s OutputState) Output() any { return s["output"] }
