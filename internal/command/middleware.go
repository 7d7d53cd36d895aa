package command

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/tt-P607/biometric-sleep-bot/internal/storage"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) Message(ctx *MessageContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if mh, ok := w.Command.(MessageHandler); ok {
		return mh.Message(ctx)
	}
	return nil
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// ApplyMiddlewares wraps cmd in the given middlewares, innermost first.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly drops executions outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
					return RespondEphemeral(v.Session, v.Event, "This command only works on a server.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithAccessControl enforces admin-only access when the command requires it.
func WithAccessControl() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				v, ok := ctx.(*SlashContext)
				if !ok {
					return cmd.Run(ctx)
				}
				if cmd.RequireAdmin() {
					member := v.Event.Member
					if member == nil {
						return RespondEphemeral(v.Session, v.Event, "Cannot determine your admin status here.")
					}
					if member.Permissions&discordgo.PermissionAdministrator == 0 {
						return RespondEphemeral(v.Session, v.Event, "You must be an admin to use this command.")
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger logs the execution and appends it to the command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.Member != nil {
					rec := storage.CommandHistoryRecord{
						GuildID:  v.Event.GuildID,
						UserID:   v.Event.Member.User.ID,
						Username: v.Event.Member.User.Username,
						Command:  cmd.Name(),
						Param:    subcommandName(v.Event),
						Datetime: time.Now(),
					}
					if err := v.Storage.AppendCommandToHistory(rec); err != nil {
						log.Warn().Err(err).Str("command", cmd.Name()).Msg("command: history append failed")
					}
					log.Info().
						Str("command", cmd.Name()).
						Str("param", rec.Param).
						Str("user", rec.Username).
						Str("guild", rec.GuildID).
						Msg("command: executed")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

func subcommandName(i *discordgo.InteractionCreate) string {
	opts := i.ApplicationCommandData().Options
	if len(opts) > 0 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return opts[0].Name
	}
	return ""
}
