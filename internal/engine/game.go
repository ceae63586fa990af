package engine

import (
	"fmt"
	"math/rand/v2"
)

// Game is one session of the accusation game. It is not safe for concurrent
// use; the lobby serializes every call.
type Game struct {
	roster            *Roster
	undecidedVoters   int
	nominatedMinority int
	allPlayersJoined  bool
	gameStarted       bool
	gameOver          bool
	winner            Allegiance
	pending           []Event
}

type options struct {
	rng *rand.Rand
}

type Option func(*options)

// WithRand sets the source used to pick the red players.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func New(capacity, minorityHint int, opts ...Option) (*Game, error) {
	if capacity < MinPlayers {
		return nil, fmt.Errorf("%w: need at least %d players, got %d", ErrInvalidCapacity, MinPlayers, capacity)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = newRand()
	}

	return &Game{
		roster:            NewRoster(capacity, o.rng),
		undecidedVoters:   capacity,
		nominatedMinority: NominatedMinority(capacity, minorityHint),
		winner:            AllegianceUnassigned,
	}, nil
}

func (g *Game) NominatedMinority() int { return g.nominatedMinority }
func (g *Game) UndecidedVoters() int   { return g.undecidedVoters }
func (g *Game) AliveMinority() int     { return g.roster.MinorityCount() }
func (g *Game) AliveCount() int        { return g.roster.AliveCount() }
func (g *Game) Over() bool             { return g.gameOver }
func (g *Game) Winner() Allegiance     { return g.winner }

func (g *Game) emit(e Event) {
	g.pending = append(g.pending, e)
}

func (g *Game) Join(name string) (State, error) {
	if g.gameOver {
		return State{}, ErrGameOver
	}
	if g.roster.Has(name) {
		return State{}, ErrPlayerAlreadyExists
	}
	if !g.roster.Add(name) {
		return State{}, ErrGameFull
	}
	g.emit(Event{Type: EvtPlayerJoined, PlayerName: name, Count: g.roster.Size()})

	if g.roster.Full() {
		g.allPlayersJoined = true
		g.roster.AssignAllegiance(g.nominatedMinority)
		g.emit(Event{Type: EvtAllegiancesAssigned, Count: g.nominatedMinority})
	}
	return g.snapshot(name), nil
}

// RevealColor marks the player ready. Revealing twice is a no-op.
func (g *Game) RevealColor(name string) (State, error) {
	if g.gameOver {
		return State{}, ErrGameOver
	}
	if !g.roster.Has(name) {
		return State{}, ErrPlayerDoesNotExist
	}
	if !g.roster.Full() && !g.allPlayersJoined {
		return State{}, ErrNotEnoughPlayersJoined
	}

	if g.roster.MarkReady(name) {
		g.emit(Event{Type: EvtPlayerReady, PlayerName: name, Count: g.roster.ReadyCount()})
	}
	if !g.gameStarted && g.roster.ReadyCount() == g.roster.AliveCount() {
		g.gameStarted = true
		g.emit(Event{Type: EvtGameStarted, Count: g.roster.AliveCount()})
	}
	return g.snapshot(name), nil
}

func (g *Game) Accuse(accuserName, targetName string) (State, error) {
	if g.gameOver {
		return State{}, ErrGameOver
	}
	accuser, ok := g.roster.Get(accuserName)
	if !ok || !g.roster.Has(targetName) {
		return State{}, ErrPlayerDoesNotExist
	}
	if !g.gameStarted {
		return State{}, ErrGameNotStarted
	}
	// Repeating the current accusation records nothing new, but the
	// deposition check still runs: a cleared accusation may have left a
	// decisive lead behind.
	if previous, had := accuser.Accusing(); !had || previous != targetName {
		g.recordAccusation(accuser, targetName)
	}

	g.checkDeposition()

	// Casting a vote shrinks the undecided margin, so the accuser can be
	// the one deposed. They still get a snapshot of the game they left.
	if !g.roster.Has(accuserName) {
		return g.snapshotFor(accuser), nil
	}
	return g.snapshot(accuserName), nil
}

func (g *Game) recordAccusation(accuser *Player, targetName string) {
	if !accuser.voted {
		accuser.voted = true
		g.undecidedVoters--
		if g.undecidedVoters < 0 {
			invariant("accuse", "undecided voters dropped to %d", g.undecidedVoters)
		}
	}
	if previous, had := accuser.Accusing(); had && !g.roster.ClearAccusation(accuser.name) {
		invariant("accuse", "could not clear %q -> %q", accuser.name, previous)
	}
	if !g.roster.Accuse(accuser.name, targetName) {
		invariant("accuse", "could not record %q -> %q", accuser.name, targetName)
	}
	g.emit(Event{Type: EvtPlayerAccused, PlayerName: accuser.name, Target: targetName})
}

// ClearAccusation withdraws the player's current accusation, if any. It
// never triggers a deposition.
func (g *Game) ClearAccusation(name string) (State, error) {
	if g.gameOver {
		return State{}, ErrGameOver
	}
	p, ok := g.roster.Get(name)
	if !ok {
		return State{}, ErrPlayerDoesNotExist
	}
	if target, had := p.Accusing(); had && g.roster.ClearAccusation(name) {
		g.emit(Event{Type: EvtAccusationCleared, PlayerName: name, Target: target})
	}
	return g.snapshot(name), nil
}

// State is the read-only view for viewer.
func (g *Game) State(viewer string) (State, error) {
	if !g.roster.Has(viewer) {
		return State{}, ErrPlayerDoesNotExist
	}
	return g.snapshot(viewer), nil
}

func (g *Game) snapshot(viewer string) State {
	p, _ := g.roster.Get(viewer)
	return g.snapshotFor(p)
}

func (g *Game) snapshotFor(viewer *Player) State {
	name, red := "", false
	if viewer != nil {
		name, red = viewer.name, viewer.allegiance == AllegianceRed
	}
	return State{
		Players:          g.roster.VisibleSnapshot(name, red),
		GameStarted:      g.gameStarted,
		AllPlayersJoined: g.allPlayersJoined,
		GameOver:         g.gameOver,
		Winner:           g.winner,
	}
}
