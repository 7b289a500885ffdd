// Package handlers defines the per-feature command handler groups the
// registry is built from, plus the collaborator boundaries those handlers
// call. Handlers render business failures as user-facing text; an error return
// is reserved for collaborator failures they cannot explain to the user.
package handlers

import (
	"context"

	"github.com/chainplay/arenabot/src/domain/command"
)

// Wallet looks up on-chain balances.
type Wallet interface {
	Balance(ctx context.Context, address string) (float64, error)
}

// PriceFeed returns spot prices in USD.
type PriceFeed interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// SwapQuoter estimates token swap output amounts.
type SwapQuoter interface {
	Quote(ctx context.Context, fromToken, toToken string, amount float64) (float64, error)
}

// NameResolver maps human-readable names to addresses.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// descriptor is the concrete command shape: a name, a description, a usage
// string, an argument contract, and the action itself.
type descriptor struct {
	name        string
	description string
	usage       string
	spec        command.ArgSpec
	run         func(ctx context.Context, cmd command.Command) (string, error)
}

func (d *descriptor) Name() string          { return d.name }
func (d *descriptor) Description() string   { return d.description }
func (d *descriptor) Usage() string         { return d.usage }
func (d *descriptor) Spec() command.ArgSpec { return d.spec }

func (d *descriptor) Handle(ctx context.Context, cmd command.Command) (string, error) {
	return d.run(ctx, cmd)
}
