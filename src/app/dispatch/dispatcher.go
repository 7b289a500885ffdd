package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chainplay/arenabot/src/domain/command"
)

// OutcomeKind classifies what the dispatcher did with a command.
type OutcomeKind string

const (
	// OutcomeReply means the handler ran and produced reply text.
	OutcomeReply OutcomeKind = "reply"
	// OutcomeUnknown means no handler is bound to the command name.
	OutcomeUnknown OutcomeKind = "unknown_command"
	// OutcomeInvalidArgs means the argument-count contract was not met.
	OutcomeInvalidArgs OutcomeKind = "invalid_args"
	// OutcomeFailed means the handler returned an error it could not render.
	OutcomeFailed OutcomeKind = "failed"
	// OutcomeInternal means the handler panicked; the panic was contained.
	OutcomeInternal OutcomeKind = "internal_error"
)

// Outcome is the structured result of dispatching one command. Reply always
// holds text suitable for the originating channel.
type Outcome struct {
	Kind  OutcomeKind
	Reply string
	Err   error
}

// Dispatcher resolves a parsed command to exactly one handler. It never
// retries, never times out, and never lets a failing handler take down the
// dispatch loop; timeout and cancellation policy belong to the caller.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over an immutable registry.
func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch routes one command. A miss is a structured outcome, not an error,
// and a panicking handler is logged and converted to an internal-error
// outcome so other in-flight commands are unaffected.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd command.Command) (out Outcome) {
	h, ok := d.registry.Get(cmd.Name)
	if !ok {
		return Outcome{
			Kind:  OutcomeUnknown,
			Reply: fmt.Sprintf("Unknown command %q. Try !help.", cmd.Name),
		}
	}

	if err := h.Spec().Check(cmd); err != nil {
		return Outcome{
			Kind:  OutcomeInvalidArgs,
			Reply: fmt.Sprintf("%s. Usage: %s", err, h.Usage()),
			Err:   err,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler %q panicked: %v", cmd.Name, r)
			d.logger.Error("command handler panic",
				zap.String("command", cmd.Name),
				zap.String("sender", string(cmd.Sender)),
				zap.Any("panic", r),
			)
			out = Outcome{
				Kind:  OutcomeInternal,
				Reply: "Something went wrong processing that command.",
				Err:   err,
			}
		}
	}()

	reply, err := h.Handle(ctx, cmd)
	if err != nil {
		d.logger.Warn("command handler failed",
			zap.String("command", cmd.Name),
			zap.String("sender", string(cmd.Sender)),
			zap.Error(err),
		)
		return Outcome{Kind: OutcomeFailed, Reply: err.Error(), Err: err}
	}
	return Outcome{Kind: OutcomeReply, Reply: reply}
}
