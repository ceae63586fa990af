package engine

import (
	"errors"
	"fmt"
)

// Rejections a player can cause. Each one maps to an error tag on the wire.
var ErrPlayerAlreadyExists = errors.New("player already exists")
var ErrGameFull = errors.New("game is full")
var ErrNotEnoughPlayersJoined = errors.New("not enough players joined")
var ErrPlayerDoesNotExist = errors.New("player does not exist")
var ErrGameOver = errors.New("game is over")
var ErrGameNotStarted = errors.New("game has not started")

// Setup and dispatch errors. These never reach a player.
var ErrInvalidCapacity = errors.New("invalid capacity")
var ErrUnsupportedCommand = errors.New("unsupported command")

// InvariantError reports broken bookkeeping inside the engine. It is raised
// with panic, never returned, and callers must treat the game as unusable.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine invariant violated in %s: %s", e.Op, e.Detail)
}

func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

type Allegiance string

const (
	AllegianceUnassigned Allegiance = "white"
	AllegianceRed        Allegiance = "red"   // minority
	AllegianceGreen      Allegiance = "green" // majority
)

type CommandType string

const (
	CmdJoinGame        CommandType = "JoinGame"
	CmdRevealColor     CommandType = "RevealColor"
	CmdAccuse          CommandType = "Accuse"
	CmdClearAccusation CommandType = "ClearAccusation"
	CmdGetState        CommandType = "GetState"
)

type Command struct {
	Type        CommandType
	PlayerName  string
	AccusedName string // CmdAccuse only
}

type EventType string

const (
	EvtPlayerJoined        EventType = "PlayerJoined"
	EvtAllegiancesAssigned EventType = "AllegiancesAssigned"
	EvtPlayerReady         EventType = "PlayerReady"
	EvtGameStarted         EventType = "GameStarted"
	EvtPlayerAccused       EventType = "PlayerAccused"
	EvtAccusationCleared   EventType = "AccusationCleared"
	EvtPlayerDeposed       EventType = "PlayerDeposed"
	EvtRoundStarted        EventType = "RoundStarted"
	EvtGameOver            EventType = "GameOver"
)

// Event describes one state change. Events never carry hidden allegiances:
// Allegiance is only set for deposed players and the winning side.
type Event struct {
	Type       EventType
	PlayerName string
	Target     string
	Allegiance Allegiance
	Count      int
}

// PlayerView is one player as seen by a particular viewer.
type PlayerView struct {
	Name       string
	Accusers   []string
	Accusing   string // empty when not accusing anyone
	Alive      bool
	Ready      bool
	Allegiance Allegiance
}

// State is the viewer-scoped snapshot returned by every successful operation.
type State struct {
	Players          []PlayerView
	GameStarted      bool
	AllPlayersJoined bool
	GameOver         bool
	Winner           Allegiance
}

// Apply dispatches cmd to the matching Game operation and returns the events
// it produced along with the snapshot for cmd.PlayerName.
func (g *Game) Apply(cmd Command) ([]Event, State, error) {
	var (
		state State
		err   error
	)

	switch cmd.Type {
	case CmdJoinGame:
		state, err = g.Join(cmd.PlayerName)
	case CmdRevealColor:
		state, err = g.RevealColor(cmd.PlayerName)
	case CmdAccuse:
		state, err = g.Accuse(cmd.PlayerName, cmd.AccusedName)
	case CmdClearAccusation:
		state, err = g.ClearAccusation(cmd.PlayerName)
	case CmdGetState:
		state, err = g.State(cmd.PlayerName)
	default:
		err = ErrUnsupportedCommand
	}

	events := g.pending
	g.pending = nil
	if err != nil {
		return events, State{}, err
	}
	return events, state, nil
}
