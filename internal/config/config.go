// Package config loads environment-driven configuration for the Pom Wars bot.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
// Values come from the environment; an optional .env file may supply them
// during local development.
type Config struct {
	// Chat platform credentials.
	BotToken Secret `env:"POMWARS_BOT_TOKEN"`

	// Command surface.
	CommandPrefix string `env:"POMWARS_PREFIX" envDefault:"!"`

	// Channels. JoinChannel is where the scoreboard lives and join
	// reactions are watched; PomChannels is the allowlist for pom
	// commands (empty means any channel).
	JoinChannel  string   `env:"POMWARS_JOIN_CHANNEL" envDefault:"join-the-war"`
	PomChannels  []string `env:"POMWARS_POM_CHANNELS" envSeparator:","`
	ErrorChannel string   `env:"POMWARS_ERROR_CHANNEL"`

	// Roles.
	AdminRoles     []string `env:"POMWARS_ADMIN_ROLES" envSeparator:","`
	KnightRoleName string   `env:"POMWARS_KNIGHT_ROLE" envDefault:"Knights"`
	VikingRoleName string   `env:"POMWARS_VIKING_ROLE" envDefault:"Vikings"`

	// Guilds whose members are forced onto one team.
	KnightOnlyGuilds []int64 `env:"POMWARS_KNIGHT_ONLY_GUILDS" envSeparator:","`
	VikingOnlyGuilds []int64 `env:"POMWARS_VIKING_ONLY_GUILDS" envSeparator:","`

	// War tuning.
	BaseDamageNormal float64 `env:"POMWARS_BASE_DAMAGE_NORMAL" envDefault:"10"`
	BaseDamageHeavy  float64 `env:"POMWARS_BASE_DAMAGE_HEAVY" envDefault:"25"`
	JoinEmoji        string  `env:"POMWARS_JOIN_EMOJI" envDefault:"⚔️"`

	// Storage and content.
	DatabasePath string `env:"POMWARS_DB_PATH" envDefault:"pomwars.sqlite"`
	ContentDir   string `env:"POMWARS_CONTENT_DIR" envDefault:"content"`

	// Command throttle (token bucket per user).
	ThrottleRate  float64 `env:"POMWARS_THROTTLE_RATE" envDefault:"2"`
	ThrottleBurst int     `env:"POMWARS_THROTTLE_BURST" envDefault:"5"`

	// Debug toggles.
	RespondToDM      bool `env:"POMWARS_RESPOND_TO_DM" envDefault:"false"`
	DropRowsOnStart  bool `env:"POMWARS_DROP_ROWS_ON_START" envDefault:"false"`
	PublicPomReplies bool `env:"POMWARS_PUBLIC_POM_REPLIES" envDefault:"false"`
	AllowMultiline   bool `env:"POMWARS_ALLOW_MULTILINE" envDefault:"false"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; a missing file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
