package httpapi

import (
	"github.com/DoyleJ11/reds-and-greens/internal/engine"
	"github.com/DoyleJ11/reds-and-greens/pkg/types"
)

func toGameState(s engine.State) *types.GameState {
	players := make([]types.PlayerState, 0, len(s.Players))
	for _, p := range s.Players {
		var accusing *string
		if p.Accusing != "" {
			name := p.Accusing
			accusing = &name
		}
		accusers := p.Accusers
		if accusers == nil {
			accusers = []string{}
		}
		players = append(players, types.PlayerState{
			PlayerName: p.Name,
			Accusers:   accusers,
			Accusing:   accusing,
			Alive:      p.Alive,
			Ready:      p.Ready,
			Color:      toColor(p.Allegiance),
		})
	}

	return &types.GameState{
		Players:                  players,
		GameStarted:              s.GameStarted,
		AllPlayersEnteredTheGame: s.AllPlayersJoined,
		GameOver:                 s.GameOver,
		Winners:                  toColor(s.Winner),
	}
}

func toColor(a engine.Allegiance) types.Color {
	switch a {
	case engine.AllegianceRed:
		return types.ColorRed
	case engine.AllegianceGreen:
		return types.ColorGreen
	default:
		return types.ColorWhite
	}
}
