package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
)

func testSession(botID string) *discordgo.Session {
	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: botID}
	return s
}

func msg(guildID string, authorID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID: guildID,
		Author:  &discordgo.User{ID: authorID},
	}}
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "group_100", sessionKey(msg("100", "7")))
	assert.Equal(t, "private_7", sessionKey(msg("", "7")))
}

func TestClassifyMessage(t *testing.T) {
	s := testSession("bot")

	assert.Equal(t, sleep.KindPrivate, classifyMessage(s, msg("", "7")))
	assert.Equal(t, sleep.KindBroadcast, classifyMessage(s, msg("100", "7")))

	mention := msg("100", "7")
	mention.Mentions = []*discordgo.User{{ID: "bot"}}
	assert.Equal(t, sleep.KindMention, classifyMessage(s, mention))

	// A mention of someone else stays broadcast.
	other := msg("100", "7")
	other.Mentions = []*discordgo.User{{ID: "someone"}}
	assert.Equal(t, sleep.KindBroadcast, classifyMessage(s, other))

	reply := msg("100", "7")
	reply.ReferencedMessage = &discordgo.Message{Author: &discordgo.User{ID: "bot"}}
	assert.Equal(t, sleep.KindMention, classifyMessage(s, reply))
}
