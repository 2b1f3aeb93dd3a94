package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/draftnight/draft-backend/internal/engine"
)

type Config struct {
	// Address the HTTP server binds to
	Addr string `envconfig:"DRAFT_ADDR" default:":8080"`

	// Snapshot store backend: "bolt" or "postgres"
	StoreDriver string `envconfig:"DRAFT_STORE_DRIVER" default:"bolt"`

	// Path of the bolt snapshot file
	BoltPath string `envconfig:"DRAFT_BOLT_PATH" default:"draft.db"`

	// Connection string for the postgres backend
	PostgresDSN string `envconfig:"DRAFT_POSTGRES_DSN"`

	// Draft defaults used until a manager updates the configuration
	NumberOfTeams int    `envconfig:"DRAFT_TEAMS" default:"4"`
	PicksPerTeam  int    `envconfig:"DRAFT_PICKS_PER_TEAM" default:"5"`
	DraftType     string `envconfig:"DRAFT_TYPE" default:"traditional"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("processing env config: %w", err)
	}
	if c.NumberOfTeams < 1 {
		return Config{}, fmt.Errorf("DRAFT_TEAMS must be at least 1, got %d", c.NumberOfTeams)
	}
	switch engine.DraftType(c.DraftType) {
	case engine.DraftTraditional, engine.DraftSerpentine:
	default:
		return Config{}, fmt.Errorf("DRAFT_TYPE must be traditional or serpentine, got %q", c.DraftType)
	}
	return c, nil
}

// DraftConfig projects the env defaults onto a draft configuration, keeping
// the stock team names for however many teams were asked for.
func (c Config) DraftConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.NumberOfTeams = c.NumberOfTeams
	cfg.PicksPerTeam = c.PicksPerTeam
	if c.DraftType != "" {
		cfg.DraftType = engine.DraftType(c.DraftType)
	}
	cfg.TeamNames = make([]string, c.NumberOfTeams)
	for i := range cfg.TeamNames {
		cfg.TeamNames[i] = fmt.Sprintf("Team %d", i+1)
	}
	return cfg
}
