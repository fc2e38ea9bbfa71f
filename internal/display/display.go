// Package display defines the host display API the scoreboard engine writes
// into, plus an in-memory host used by the simulator, the HTTP inspector and
// tests.
//
// The engine never talks to a transport directly. Every observable change is
// a call on one of the interfaces below, and the host decides what reaches the
// viewer. Hosts are expected to suppress writes that do not change a score,
// which is the behaviour MemoryHost models.
package display

import (
	"errors"

	"github.com/google/uuid"
)

// ErrViewerUnreachable is returned by Host.Install when the viewer left
// before the board could be installed.
var ErrViewerUnreachable = errors.New("viewer unreachable")

// ErrNameTaken is returned when an objective or group name is already
// registered on a board.
var ErrNameTaken = errors.New("name already registered")

// Viewer is a connected session a board is shown to.
type Viewer interface {
	ID() string
	Name() string
	Online() bool
	World() string
}

// Capabilities describes optional host features, detected once at startup.
type Capabilities struct {
	// NamedScores is true when objectives accept plain string entries.
	// Older hosts only key scores by an offline player handle.
	NamedScores bool
}

// Host is the display surface shared by all viewers.
type Host interface {
	NewBoard() Board
	// CurrentBoard returns the board installed for v, or nil.
	CurrentBoard(v Viewer) Board
	// Install shows b to v. Fails with ErrViewerUnreachable when v is gone.
	Install(v Viewer, b Board) error
	Version() string
	Capabilities() Capabilities
	OnlineCount() int
}

// Board is one scoreboard instance: a set of objectives and groups.
type Board interface {
	RegisterObjective(name string) (Objective, error)
	// Objective returns the objective registered under name, or nil.
	Objective(name string) Objective
	// Sidebar returns the objective shown in the sidebar slot, or nil.
	Sidebar() Objective
	Objectives() []Objective
	// Group returns the group registered under id, or nil.
	Group(id string) Group
	RegisterGroup(id string) (Group, error)
}

// Objective is a titled list of scores.
type Objective interface {
	Name() string
	DisplayName() string
	SetDisplayName(title string)
	ShowInSidebar()
	Score(entry string) Score
	Unregister()
	Board() Board
}

// OfflineEntry is the handle legacy hosts key scores by.
type OfflineEntry struct {
	Name string
}

// LegacyObjective is implemented by objectives of hosts that predate named
// string entries.
type LegacyObjective interface {
	ScoreFor(entry OfflineEntry) Score
}

// Score is one row's value.
type Score interface {
	Entry() string
	// Get returns the current value and whether it was ever set.
	Get() (int, bool)
	Set(value int)
}

// Group renders extra text around its members' entries.
type Group interface {
	ID() string
	Prefix() string
	Suffix() string
	DisplayName() string
	SetPrefix(text string)
	SetSuffix(text string)
	SetDisplayName(text string)
	AddMember(entry string)
	Members() []string
}

// OfflineID derives a stable viewer id from a name. Stats stored under a
// name and a viewer joining under the same name share this id.
func OfflineID(name string) string {
	return uuid.NewMD5(uuid.Nil, []byte("OfflinePlayer:"+name)).String()
}
