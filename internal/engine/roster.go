package engine

import (
	"math/rand/v2"
	"slices"
)

// Roster owns the players of one game in join order.
type Roster struct {
	capacity      int
	players       []*Player
	byName        map[string]*Player
	readyCount    int
	minorityCount int
	assigned      bool
	rng           *rand.Rand
}

func NewRoster(capacity int, rng *rand.Rand) *Roster {
	return &Roster{
		capacity: capacity,
		players:  make([]*Player, 0, capacity),
		byName:   make(map[string]*Player, capacity),
		rng:      rng,
	}
}

func (r *Roster) Size() int          { return len(r.players) }
func (r *Roster) Full() bool         { return len(r.players) >= r.capacity }
func (r *Roster) ReadyCount() int    { return r.readyCount }
func (r *Roster) MinorityCount() int { return r.minorityCount }

func (r *Roster) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *Roster) Get(name string) (*Player, bool) {
	p, ok := r.byName[name]
	return p, ok
}

func (r *Roster) AliveCount() int {
	n := 0
	for _, p := range r.players {
		if p.alive {
			n++
		}
	}
	return n
}

// Add inserts a new player if there is room and the name is free.
func (r *Roster) Add(name string) bool {
	if r.Full() || r.Has(name) {
		return false
	}
	p := newPlayer(name)
	r.players = append(r.players, p)
	r.byName[name] = p
	return true
}

// AssignAllegiance makes every alive player green, then turns exactly
// minorityCount of them red, chosen uniformly without replacement.
func (r *Roster) AssignAllegiance(minorityCount int) {
	if r.assigned {
		invariant("assignAllegiance", "allegiances already assigned")
	}
	if !r.Full() {
		invariant("assignAllegiance", "roster has %d of %d players", len(r.players), r.capacity)
	}

	alive := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.alive {
			p.allegiance = AllegianceGreen
			alive = append(alive, p)
		}
	}
	if minorityCount < 0 || minorityCount > len(alive) {
		invariant("assignAllegiance", "cannot pick %d reds from %d players", minorityCount, len(alive))
	}

	// Partial Fisher-Yates: the first minorityCount slots end up holding a
	// uniform sample of the alive players.
	for i := 0; i < minorityCount; i++ {
		j := i + r.rng.IntN(len(alive)-i)
		alive[i], alive[j] = alive[j], alive[i]
		alive[i].allegiance = AllegianceRed
	}

	r.minorityCount = minorityCount
	r.assigned = true
}

// MarkReady reports whether the player became ready by this call.
func (r *Roster) MarkReady(name string) bool {
	p, ok := r.byName[name]
	if !ok || p.ready {
		return false
	}
	p.ready = true
	r.readyCount++
	return true
}

// VisibleSnapshot projects every player for viewer. revealAll must be true
// exactly when the viewer is red.
func (r *Roster) VisibleSnapshot(viewer string, revealAll bool) []PlayerView {
	views := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		views = append(views, p.view(revealAll || p.name == viewer))
	}
	return views
}

// Accuse records accuser -> target. The accuser must not hold an edge already.
func (r *Roster) Accuse(accuserName, targetName string) bool {
	accuser, ok := r.byName[accuserName]
	if !ok {
		return false
	}
	target, ok := r.byName[targetName]
	if !ok {
		return false
	}
	if accuser.accusing != "" {
		invariant("accuse", "%q still accuses %q", accuserName, accuser.accusing)
	}
	accuser.accusing = targetName
	target.accusedBy = append(target.accusedBy, accuserName)
	return true
}

// ClearAccusation drops name's outgoing edge and the matching reverse edge.
func (r *Roster) ClearAccusation(name string) bool {
	p, ok := r.byName[name]
	if !ok || p.accusing == "" {
		return false
	}
	target, ok := r.byName[p.accusing]
	if !ok {
		invariant("clearAccusation", "%q accuses unknown player %q", name, p.accusing)
	}
	if !target.removeAccuser(name) {
		invariant("clearAccusation", "%q is missing accuser %q", target.name, name)
	}
	p.accusing = ""
	return true
}

func (r *Roster) ClearAllAccusations() {
	for _, p := range r.players {
		p.accusing = ""
		p.accusedBy = nil
	}
}

// resetVotes marks every player undecided for a new round.
func (r *Roster) resetVotes() {
	for _, p := range r.players {
		p.voted = false
	}
}

// Eliminate kills the player and removes it from the roster together with
// every accusation edge that touches it.
func (r *Roster) Eliminate(name string) bool {
	p, ok := r.byName[name]
	if !ok {
		return false
	}

	p.alive = false
	if p.allegiance == AllegianceRed {
		r.minorityCount--
	}
	if p.ready {
		r.readyCount--
	}

	r.ClearAccusation(name)
	for _, other := range r.players {
		if other == p {
			continue
		}
		if other.accusing == name {
			other.accusing = ""
		}
		other.removeAccuser(name)
	}

	delete(r.byName, name)
	r.players = slices.DeleteFunc(r.players, func(q *Player) bool { return q == p })
	return true
}

// RankedByAccuserCount sorts alive players by accuser count, most accused
// first. Ties keep join order.
func (r *Roster) RankedByAccuserCount() []*Player {
	ranked := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.alive {
			ranked = append(ranked, p)
		}
	}
	slices.SortStableFunc(ranked, func(a, b *Player) int {
		return b.AccuserCount() - a.AccuserCount()
	})
	return ranked
}
