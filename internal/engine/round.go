package engine

// checkDeposition deposes the most accused player once the lead over the
// runner-up can no longer be closed by the players who have not voted yet.
// At most one player is deposed per call.
func (g *Game) checkDeposition() bool {
	ranked := g.roster.RankedByAccuserCount()
	if len(ranked) == 0 {
		return false
	}

	top := ranked[0].AccuserCount()
	second := 0
	if len(ranked) > 1 {
		second = ranked[1].AccuserCount()
	}
	if top <= second+g.undecidedVoters {
		return false
	}

	deposed := ranked[0]
	if !g.roster.Eliminate(deposed.name) {
		invariant("checkDeposition", "could not eliminate %q", deposed.name)
	}
	g.emit(Event{Type: EvtPlayerDeposed, PlayerName: deposed.name, Allegiance: deposed.allegiance, Count: top})

	g.startNewRound()
	return true
}

func (g *Game) startNewRound() {
	g.roster.ClearAllAccusations()
	g.roster.resetVotes()
	g.undecidedVoters = g.roster.AliveCount()
	g.emit(Event{Type: EvtRoundStarted, Count: g.undecidedVoters})

	g.checkGameOver()
}

func (g *Game) checkGameOver() bool {
	reds := g.roster.MinorityCount()
	greens := g.roster.AliveCount() - reds

	switch {
	case reds >= greens:
		g.gameOver = true
		g.winner = AllegianceRed
	case reds == 0:
		g.gameOver = true
		g.winner = AllegianceGreen
	default:
		return false
	}

	g.emit(Event{Type: EvtGameOver, Allegiance: g.winner, Count: g.roster.AliveCount()})
	return true
}
