package usecase

import (
	"agentgate/internal/domain"
)

// ResolveInputs merges the caller-supplied values over the agent's declared
// defaults. The result contains exactly the declared input names; supplied
// keys outside the declaration are ignored. A declared input with neither a
// supplied value nor a default fails with MissingInputError.
//
// This function is pure: it never mutates its arguments.
func ResolveInputs(declared domain.InputDeclaration, supplied map[string]string) (domain.InputState, error) {
	state := make(domain.InputState, len(declared))
	for name, def := range declared {
		if value, ok := supplied[name]; ok {
			state[name] = value
			continue
		}
		if def == nil {
			return nil, &domain.MissingInputError{Name: name}
		}
		state[name] = *def
	}
	return state, nil
}
