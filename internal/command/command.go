package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/tt-P607/biometric-sleep-bot/internal/config"
	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
	"github.com/tt-P607/biometric-sleep-bot/internal/storage"
)

// Command is anything the bot can execute from a Discord event.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	RequireAdmin() bool
	Run(ctx interface{}) error
}

// SlashProvider is implemented by commands that register a slash definition.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// MessageHandler is implemented by commands that react to plain messages
// (the mention-chat path).
type MessageHandler interface {
	Message(ctx *MessageContext) error
}

// SlashContext is passed to slash command executions.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	Engine  *sleep.Engine
	Config  *config.Config
}

// MessageContext is passed to message command executions. State is the sleep
// state the interception decision saw for this message, used for mood prompt
// injection.
type MessageContext struct {
	Session    *discordgo.Session
	Event      *discordgo.MessageCreate
	Storage    *storage.Storage
	Engine     *sleep.Engine
	Config     *config.Config
	SessionKey string
	State      sleep.State
}

// --- interaction response helpers ---

func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func RespondEmbedEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}
