package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
)

// Config is the full process configuration, read from the environment
// (a .env file is loaded first when present). All validation happens here:
// the sleep engine never sees a malformed value at runtime.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"data/datastore.json"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	AIProvider string `env:"AI_PROVIDER" envDefault:"pollinations"`
	Persona    string `env:"PERSONA_PROMPT" envDefault:"You are a friendly companion bot. Keep replies short and conversational."`

	Sleep SleepSettings `envPrefix:"SLEEP_"`
}

// SleepSettings is the sleep engine's configuration surface.
type SleepSettings struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`

	StartTime         string `env:"START_TIME" envDefault:"23:30"`
	EndTime           string `env:"END_TIME" envDefault:"07:30"`
	RandomOffsetMin   int    `env:"RANDOM_OFFSET_MIN" envDefault:"30"`
	DrowsyDurationMin int    `env:"DROWSY_DURATION_MIN" envDefault:"30"`

	WakeThreshold  float64 `env:"WAKE_THRESHOLD" envDefault:"50"`
	WakeIncrement  float64 `env:"WAKE_INCREMENT" envDefault:"20"`
	WakeMax        float64 `env:"WAKE_MAX" envDefault:"80"`
	DecayPerMinute float64 `env:"DECAY_PER_MINUTE" envDefault:"5"`

	Whitelist []string `env:"WHITELIST" envSeparator:","`
	Blacklist []string `env:"BLACKLIST" envSeparator:","`

	InjectPrompts  bool   `env:"INJECT_PROMPTS" envDefault:"true"`
	DrowsyPrompt   string `env:"DROWSY_PROMPT" envDefault:"You are very drowsy and getting ready to sleep. Reply with a tired, yawning tone."`
	SleepingPrompt string `env:"SLEEPING_PROMPT" envDefault:"You are asleep right now. Speak lazily and half-coherently, as if talking in your sleep."`
	WokenPrompt    string `env:"WOKEN_PROMPT" envDefault:"You were just rudely woken up. You are groggy and a little grumpy about it."`
}

// New loads and validates configuration. A missing .env file is fine; a
// malformed sleep schedule is fatal.
func New() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if _, err := cfg.SleepParams(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SleepParams converts the raw settings into validated engine params.
func (c *Config) SleepParams() (sleep.Params, error) {
	start, err := sleep.ParseClockTime(c.Sleep.StartTime)
	if err != nil {
		return sleep.Params{}, fmt.Errorf("SLEEP_START_TIME: %w", err)
	}
	end, err := sleep.ParseClockTime(c.Sleep.EndTime)
	if err != nil {
		return sleep.Params{}, fmt.Errorf("SLEEP_END_TIME: %w", err)
	}
	p := sleep.Params{
		StartTime:      start,
		EndTime:        end,
		RandomOffset:   time.Duration(c.Sleep.RandomOffsetMin) * time.Minute,
		DrowsyDuration: time.Duration(c.Sleep.DrowsyDurationMin) * time.Minute,
		WakeThreshold:  c.Sleep.WakeThreshold,
		WakeIncrement:  c.Sleep.WakeIncrement,
		WakeMax:        c.Sleep.WakeMax,
		DecayPerMinute: c.Sleep.DecayPerMinute,
		Whitelist:      c.Sleep.Whitelist,
		Blacklist:      c.Sleep.Blacklist,
	}
	if err := p.Validate(); err != nil {
		return sleep.Params{}, fmt.Errorf("sleep configuration: %w", err)
	}
	return p, nil
}

// MoodPrompt returns the prompt text to inject for a state, or "" when
// nothing should be injected (AWAKE, or injection disabled).
func (c *Config) MoodPrompt(st sleep.State) string {
	if !c.Sleep.InjectPrompts {
		return ""
	}
	switch st {
	case sleep.StateDrowsy:
		return c.Sleep.DrowsyPrompt
	case sleep.StateSleeping:
		return c.Sleep.SleepingPrompt
	case sleep.StateWoken:
		return c.Sleep.WokenPrompt
	}
	return ""
}
