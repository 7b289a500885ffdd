package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/chainplay/arenabot/src/domain/command"
)

// Handler is the unit of logic bound to one command name. Implementations own
// converting business errors into user-facing reply text; an error return
// means the handler could not produce a reply at all.
type Handler interface {
	Name() string
	Description() string
	Usage() string
	Spec() command.ArgSpec
	Handle(ctx context.Context, cmd command.Command) (string, error)
}

// Registry is the name-keyed table of handlers. It is populated exactly once
// at startup from per-feature handler groups and never mutated afterwards.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry from feature groups. Two handlers claiming the
// same name, or a handler with an impossible argument contract, are
// configuration errors and fail startup instead of silently winning by
// registration order.
func NewRegistry(groups ...[]Handler) (*Registry, error) {
	handlers := make(map[string]Handler)
	for _, group := range groups {
		for _, h := range group {
			if h.Name() == "" {
				return nil, fmt.Errorf("handler with empty name (usage %q)", h.Usage())
			}
			if _, taken := handlers[h.Name()]; taken {
				return nil, fmt.Errorf("duplicate handler registration for %q", h.Name())
			}
			if err := h.Spec().Validate(); err != nil {
				return nil, fmt.Errorf("handler %q: %w", h.Name(), err)
			}
			handlers[h.Name()] = h
		}
	}
	return &Registry{handlers: handlers}, nil
}

// Get returns the handler bound to a command name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// All returns every handler sorted by name, for help listings.
func (r *Registry) All() []Handler {
	out := make([]Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
