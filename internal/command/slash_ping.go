package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Aliases() []string   { return []string{} }
func (c *PingCommand) RequireAdmin() bool  { return false }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}
	latency := slash.Session.HeartbeatLatency().Milliseconds()
	return Respond(slash.Session, slash.Event, fmt.Sprintf("🏓 Pong! %dms", latency))
}

func init() {
	Register(ApplyMiddlewares(
		&PingCommand{},
		WithCommandLogger(),
	))
}
