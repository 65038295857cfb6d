// FILE: internal/core/player.go
package core

import (
	"github.com/google/uuid"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

// DefaultSearchDepth is the computer's search depth when none is configured
const DefaultSearchDepth = 3

// Search depth bounds accepted for computer players
const (
	MinSearchDepth = 1
	MaxSearchDepth = 5
)

// Player is the complete game entity with all state
type Player struct {
	ID    string     `json:"id"`
	Color Color      `json:"color"`
	Type  PlayerType `json:"type"`
	Depth int        `json:"depth,omitempty"` // Only for computer
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Type  PlayerType `json:"type" validate:"required,oneof=1 2"`
	Depth int        `json:"depth,omitempty" validate:"omitempty,min=1,max=5"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates a Player from PlayerConfig
func NewPlayer(config PlayerConfig, color Color) *Player {
	player := &Player{
		ID:    uuid.New().String(),
		Color: color,
		Type:  config.Type,
	}

	if config.Type == PlayerComputer {
		player.Depth = config.Depth
		if player.Depth == 0 {
			player.Depth = DefaultSearchDepth
		}
	}

	return player
}
