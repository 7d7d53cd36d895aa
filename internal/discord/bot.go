package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/tt-P607/biometric-sleep-bot/internal/command"
	"github.com/tt-P607/biometric-sleep-bot/internal/config"
	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
	"github.com/tt-P607/biometric-sleep-bot/internal/storage"
	"github.com/tt-P607/biometric-sleep-bot/internal/version"
)

// Bot is the Discord host runtime. It owns the gateway session and routes
// every inbound message through the sleep interception decision before any
// command or chat handling runs.
type Bot struct {
	dg     *discordgo.Session
	cfg    *config.Config
	store  *storage.Storage
	engine *sleep.Engine
}

// StartBot connects to Discord and blocks until ctx is done.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, engine *sleep.Engine) error {
	b := &Bot{cfg: cfg, store: store, engine: engine}
	return b.run(ctx)
}

func (b *Bot) run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info().Msg("discord: shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msgf("discord: %s connected", version.AppName)

	if err := s.UpdateGameStatus(0, version.AppName); err != nil {
		log.Warn().Err(err).Msg("discord: presence update failed")
	}
	if err := b.registerCommands(); err != nil {
		log.Error().Err(err).Msg("discord: slash command registration failed")
	}
}

func (b *Bot) registerCommands() error {
	var defs []*discordgo.ApplicationCommand
	for _, cmd := range command.All() {
		if sp, ok := cmd.(command.SlashProvider); ok {
			if def := sp.SlashDefinition(); def != nil {
				defs = append(defs, def)
			}
		}
	}
	_, err := b.dg.ApplicationCommandBulkOverwrite(b.dg.State.User.ID, "", defs)
	if err == nil {
		log.Info().Int("commands", len(defs)).Msg("discord: slash commands registered")
	}
	return err
}

// onMessageCreate is the interception point: every message is classified and
// run through the sleep decision. Suppressed messages are still recorded so
// the agent can see them after waking up; they just never reach the chat path.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	key := sessionKey(m)
	kind := classifyMessage(s, m)
	state := sleep.StateAwake

	if b.cfg.Sleep.Enabled {
		now := time.Now()
		d := b.engine.Decide(key, now, kind)
		state = d.State

		if d.Verdict == sleep.VerdictSuppress {
			rec := storage.SuppressedMessage{
				SessionKey: key,
				ChannelID:  m.ChannelID,
				UserID:     m.Author.ID,
				Username:   m.Author.Username,
				Content:    m.Content,
				Kind:       kind.String(),
				Mood:       d.Mood,
				Datetime:   now,
			}
			if err := b.store.AppendSuppressed(rec); err != nil {
				log.Warn().Err(err).Str("session", key).Msg("discord: suppressed history append failed")
			}
			log.Debug().
				Str("session", key).
				Stringer("kind", kind).
				Str("mood", d.Mood).
				Msg("discord: message suppressed")
			return
		}
	}

	// The agent only talks back when addressed directly.
	if !kind.Qualifying() {
		return
	}

	ctx := &command.MessageContext{
		Session:    s,
		Event:      m,
		Storage:    b.store,
		Engine:     b.engine,
		Config:     b.cfg,
		SessionKey: key,
		State:      state,
	}
	for _, cmd := range command.All() {
		mh, ok := cmd.(command.MessageHandler)
		if !ok {
			continue
		}
		if err := mh.Message(ctx); err != nil {
			log.Error().Err(err).Str("command", cmd.Name()).Msg("discord: message command failed")
		}
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	cmd, ok := command.Get(name)
	if !ok {
		log.Warn().Str("command", name).Msg("discord: unknown command")
		return
	}
	ctx := &command.SlashContext{
		Session: s,
		Event:   i,
		Storage: b.store,
		Engine:  b.engine,
		Config:  b.cfg,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Error().Err(err).Str("command", name).Msg("discord: slash command failed")
		_ = command.RespondEphemeral(s, i, fmt.Sprintf("Error running command: %v", err))
	}
}

// sessionKey derives the stable conversation key: one per guild, one per DM
// partner.
func sessionKey(m *discordgo.MessageCreate) string {
	if m.GuildID == "" {
		return "private_" + m.Author.ID
	}
	return "group_" + m.GuildID
}

// classifyMessage distinguishes direct messages, real mentions (an @ of the
// bot or a reply to one of its messages) and ordinary broadcast traffic.
// Merely containing the bot's name does not count as a mention.
func classifyMessage(s *discordgo.Session, m *discordgo.MessageCreate) sleep.MessageKind {
	if m.GuildID == "" {
		return sleep.KindPrivate
	}
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			return sleep.KindMention
		}
	}
	if m.ReferencedMessage != nil && m.ReferencedMessage.Author != nil &&
		m.ReferencedMessage.Author.ID == s.State.User.ID {
		return sleep.KindMention
	}
	return sleep.KindBroadcast
}
