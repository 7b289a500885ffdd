package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chainplay/arenabot/src/app/dispatch"
	"github.com/chainplay/arenabot/src/domain/command"
)

// AgentGroup binds the data-source commands to their external collaborators.
func AgentGroup(wallet Wallet, feed PriceFeed, quoter SwapQuoter, resolver NameResolver) []dispatch.Handler {
	return []dispatch.Handler{
		&descriptor{
			name:        "balance",
			description: "Show a wallet balance",
			usage:       "!balance [address]",
			spec:        command.Between(0, 1),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				address := string(cmd.Sender)
				if len(cmd.Args) == 1 {
					address = cmd.Args[0]
				}
				balance, err := wallet.Balance(ctx, address)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("💰 Balance of %s: %.4f ETH", address, balance), nil
			},
		},
		&descriptor{
			name:        "price",
			description: "Show a token's spot price",
			usage:       "!price <symbol>",
			spec:        command.Exactly(1),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				price, err := feed.Price(ctx, cmd.Args[0])
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("📈 %s: $%.2f", cmd.Args[0], price), nil
			},
		},
		&descriptor{
			name:        "quote",
			description: "Estimate a token swap",
			usage:       "!quote <fromToken> <toToken> <amount>",
			spec:        command.Exactly(3),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				amount, err := strconv.ParseFloat(cmd.Args[2], 64)
				if err != nil {
					return fmt.Sprintf("⚠️ %q is not a valid amount.", cmd.Args[2]), nil
				}
				out, err := quoter.Quote(ctx, cmd.Args[0], cmd.Args[1], amount)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("🔄 %s %s ≈ %.6f %s", cmd.Args[2], cmd.Args[0], out, cmd.Args[1]), nil
			},
		},
		&descriptor{
			name:        "resolve",
			description: "Resolve a name to an address",
			usage:       "!resolve <name>",
			spec:        command.Exactly(1),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				address, err := resolver.Resolve(ctx, cmd.Args[0])
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("🔗 %s → %s", cmd.Args[0], address), nil
			},
		},
	}
}

// HelpGroup builds the help command. The handler list is resolved lazily so
// help can describe the registry it is itself part of.
func HelpGroup(all func() []dispatch.Handler) []dispatch.Handler {
	return []dispatch.Handler{
		&descriptor{
			name:        "help",
			description: "List available commands",
			usage:       "!help",
			spec:        command.Exactly(0),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				reply := "🤖 Commands:"
				for _, h := range all() {
					reply += fmt.Sprintf("\n%s — %s", h.Usage(), h.Description())
				}
				return reply, nil
			},
		},
	}
}
