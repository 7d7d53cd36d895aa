package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tt-P607/biometric-sleep-bot/internal/ai"
	"github.com/tt-P607/biometric-sleep-bot/pkg/retrylimit"
)

// ChatCommand answers direct messages and mentions through the AI provider.
// The mood prompt for the session's current sleep state is prepended to the
// persona, so a drowsy or just-woken agent actually sounds like one.
type ChatCommand struct {
	Provider ai.Provider
	Limiter  *retrylimit.AdaptiveLimiter
}

func (c *ChatCommand) Name() string        { return "chat" }
func (c *ChatCommand) Description() string { return "Mention the bot or DM it to chat" }
func (c *ChatCommand) Aliases() []string   { return []string{} }
func (c *ChatCommand) RequireAdmin() bool  { return false }

func (c *ChatCommand) Run(ctx interface{}) error {
	if mctx, ok := ctx.(*MessageContext); ok {
		return c.Message(mctx)
	}
	return nil
}

func (c *ChatCommand) Message(mctx *MessageContext) error {
	event := mctx.Event
	session := mctx.Session

	content := strings.TrimSpace(stripBotMention(event.Content, session.State.User.ID))
	display := event.Author.Username
	if event.Member != nil && event.Member.Nick != "" {
		display = event.Member.Nick
	}

	if content == "" {
		_, err := session.ChannelMessageSend(event.ChannelID,
			fmt.Sprintf("%s, you called?", display))
		return err
	}

	_ = session.ChannelTyping(event.ChannelID)

	system := mctx.Config.Persona
	if mood := mctx.Config.MoodPrompt(mctx.State); mood != "" {
		system = mood + "\n\n" + system
	}
	messages := []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf("%s: %s", display, content)},
	}

	var reply string
	callCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	err := retrylimit.WithRetryMax(callCtx, func() error {
		var genErr error
		reply, genErr = c.Provider.Generate(messages)
		return genErr
	}, c.Limiter, 3)
	if err != nil {
		log.Error().Err(err).Str("session", mctx.SessionKey).Msg("chat: generation failed")
		_, sendErr := session.ChannelMessageSend(event.ChannelID,
			fmt.Sprintf("%s, my head is too foggy to answer right now.", display))
		return sendErr
	}

	log.Debug().
		Str("session", mctx.SessionKey).
		Str("mood", mctx.State.Mood()).
		Int("reply_len", len(reply)).
		Msg("chat: reply sent")

	_, err = session.ChannelMessageSendReply(event.ChannelID, reply, event.Reference())
	return err
}

// stripBotMention removes a leading mention of the bot so the provider sees
// clean text.
func stripBotMention(content, botID string) string {
	for _, form := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		content = strings.ReplaceAll(content, form, "")
	}
	return content
}
