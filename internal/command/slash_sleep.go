package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
)

// SleepCommand is the admin surface of the sleep system:
// /sleep status | set | wake | reset | missed
type SleepCommand struct{}

func (c *SleepCommand) Name() string        { return "sleep" }
func (c *SleepCommand) Description() string { return "Inspect and control the sleep system" }
func (c *SleepCommand) Aliases() []string   { return []string{} }
func (c *SleepCommand) RequireAdmin() bool  { return true }

func (c *SleepCommand) SlashDefinition() *discordgo.ApplicationCommand {
	sessionOpt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "session",
		Description: "Session key (defaults to this server's session)",
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Show sleep state and awakening score of all sessions",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Force a session into a state",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "state",
						Description: "awake, drowsy, sleeping or woken_up",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "awake", Value: "awake"},
							{Name: "drowsy", Value: "drowsy"},
							{Name: "sleeping", Value: "sleeping"},
							{Name: "woken_up", Value: "woken_up"},
						},
					},
					sessionOpt,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "wake",
				Description: "Wake a sleeping session",
				Options:     []*discordgo.ApplicationCommandOption{sessionOpt},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reset",
				Description: "Reset all sessions to awake with fresh schedules",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "missed",
				Description: "Show messages suppressed while sleeping",
				Options:     []*discordgo.ApplicationCommandOption{sessionOpt},
			},
		},
	}
}

func (c *SleepCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	data := slash.Event.ApplicationCommandData()
	if len(data.Options) == 0 {
		return RespondEphemeral(slash.Session, slash.Event, "Missing subcommand.")
	}
	sub := data.Options[0]

	switch sub.Name {
	case "status":
		return c.status(slash)
	case "set":
		return c.set(slash, sub)
	case "wake":
		return c.wake(slash, sub)
	case "reset":
		slash.Engine.Reset()
		return RespondEphemeral(slash.Session, slash.Event, "Sleep system reset. Everyone is awake.")
	case "missed":
		return c.missed(slash, sub)
	}
	return RespondEphemeral(slash.Session, slash.Event, "Unknown subcommand.")
}

func (c *SleepCommand) status(slash *SlashContext) error {
	snaps := slash.Engine.Snapshots(time.Now())
	if len(snaps) == 0 {
		return RespondEphemeral(slash.Session, slash.Event, "No sessions yet. Everyone is awake.")
	}

	var b strings.Builder
	for _, s := range snaps {
		fmt.Fprintf(&b, "`%s` — **%s** (score %.1f", s.Key, s.StateName, s.Score)
		if !s.Anchor.IsZero() {
			fmt.Fprintf(&b, ", tonight %s → %s",
				s.Anchor.Start.Format("15:04"), s.Anchor.End.Format("15:04"))
		}
		b.WriteString(")\n")
	}
	return RespondEmbedEphemeral(slash.Session, slash.Event, &discordgo.MessageEmbed{
		Title:       "Sleep status",
		Description: b.String(),
	})
}

func (c *SleepCommand) set(slash *SlashContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var stateName string
	key := c.defaultSessionKey(slash)
	for _, opt := range sub.Options {
		switch opt.Name {
		case "state":
			stateName = opt.StringValue()
		case "session":
			key = opt.StringValue()
		}
	}

	st, err := sleep.ParseState(stateName)
	if err != nil {
		// Reported to the caller, state unchanged.
		return RespondEphemeral(slash.Session, slash.Event,
			fmt.Sprintf("Invalid state %q — use awake, drowsy, sleeping or woken_up.", stateName))
	}
	slash.Engine.ForceState(key, st)
	return RespondEphemeral(slash.Session, slash.Event,
		fmt.Sprintf("Session `%s` forced to **%s**.", key, st))
}

func (c *SleepCommand) wake(slash *SlashContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	key := c.defaultSessionKey(slash)
	for _, opt := range sub.Options {
		if opt.Name == "session" {
			key = opt.StringValue()
		}
	}
	slash.Engine.Wake(key)
	snap := slash.Engine.Status(key, time.Now())
	return RespondEphemeral(slash.Session, slash.Event,
		fmt.Sprintf("Session `%s` is now **%s** (score %.1f).", key, snap.StateName, snap.Score))
}

func (c *SleepCommand) missed(slash *SlashContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	key := c.defaultSessionKey(slash)
	for _, opt := range sub.Options {
		if opt.Name == "session" {
			key = opt.StringValue()
		}
	}

	msgs, err := slash.Storage.FetchSuppressed(key)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return RespondEphemeral(slash.Session, slash.Event, "Nothing was suppressed for this session.")
	}

	var b strings.Builder
	for _, m := range msgs {
		content := m.Content
		if len(content) > 80 {
			content = content[:80] + "..."
		}
		fmt.Fprintf(&b, "%s **%s**: %s\n", m.Datetime.Format("Jan 2 15:04"), m.Username, content)
	}
	return RespondEmbedEphemeral(slash.Session, slash.Event, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Suppressed while sleeping — %s", key),
		Description: b.String(),
	})
}

func (c *SleepCommand) defaultSessionKey(slash *SlashContext) string {
	return "group_" + slash.Event.GuildID
}

func init() {
	Register(ApplyMiddlewares(
		&SleepCommand{},
		WithGuildOnly(),
		WithAccessControl(),
		WithCommandLogger(),
	))
}
