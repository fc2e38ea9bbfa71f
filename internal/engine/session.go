package engine

// Flavor is the board a viewer currently has on screen.
type Flavor int

const (
	NoBoard Flavor = iota
	Normal
	Overlay
)

func (f Flavor) String() string {
	switch f {
	case Normal:
		return "normal"
	case Overlay:
		return "overlay"
	default:
		return "none"
	}
}

// Reserved objective names. Anything starting with NamePrefix is ours.
const (
	NamePrefix  = "Stats"
	BoardName   = "Stats"
	OverlayName = "StatsT"
)

// session is the BoardState of one viewer.
type session struct {
	flavor Flavor
	// last holds the final value written per entry on the current board.
	last map[string]int
	skip SkipSet
}

func newSession(f Flavor) *session {
	return &session{flavor: f, last: make(map[string]int), skip: make(SkipSet)}
}

// switchTo moves the session to another board. Written values belong to
// the old board, the skip set belongs to the viewer and survives.
func (s *session) switchTo(f Flavor) {
	s.flavor = f
	s.last = make(map[string]int)
}
