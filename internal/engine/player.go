package engine

import "slices"

// Player is a single seat in the roster. Only the roster mutates it.
type Player struct {
	name       string
	alive      bool
	ready      bool
	allegiance Allegiance
	accusing   string
	accusedBy  []string
	voted      bool // cast an accusation since the last round reset
}

func newPlayer(name string) *Player {
	return &Player{
		name:       name,
		alive:      true,
		allegiance: AllegianceUnassigned,
	}
}

func (p *Player) Name() string           { return p.name }
func (p *Player) Alive() bool            { return p.alive }
func (p *Player) Ready() bool            { return p.ready }
func (p *Player) Allegiance() Allegiance { return p.allegiance }
func (p *Player) AccuserCount() int      { return len(p.accusedBy) }

func (p *Player) Accusing() (string, bool) {
	return p.accusing, p.accusing != ""
}

func (p *Player) Accusers() []string {
	return slices.Clone(p.accusedBy)
}

func (p *Player) removeAccuser(name string) bool {
	i := slices.Index(p.accusedBy, name)
	if i < 0 {
		return false
	}
	p.accusedBy = slices.Delete(p.accusedBy, i, i+1)
	return true
}

// view projects the player for a viewer. The true allegiance is shown when
// reveal is set or the player is dead.
func (p *Player) view(reveal bool) PlayerView {
	allegiance := AllegianceUnassigned
	if reveal || !p.alive {
		allegiance = p.allegiance
	}
	accusers := p.Accusers()
	if accusers == nil {
		accusers = []string{}
	}
	return PlayerView{
		Name:       p.name,
		Accusers:   accusers,
		Accusing:   p.accusing,
		Alive:      p.alive,
		Ready:      p.ready,
		Allegiance: allegiance,
	}
}
