package display

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Write is one score update that reached the transport.
type Write struct {
	Viewer    string `json:"viewer"`
	Objective string `json:"objective"`
	Entry     string `json:"entry"`
	Value     int    `json:"value"`
}

// Line is one rendered sidebar row.
type Line struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Snapshot is the rendered sidebar of one viewer.
type Snapshot struct {
	Viewer    string `json:"viewer"`
	Objective string `json:"objective,omitempty"`
	Title     string `json:"title,omitempty"`
	Lines     []Line `json:"lines"`
}

// Player is an in-memory Viewer.
type Player struct {
	id     string
	name   string
	world  atomic.Value
	online atomic.Bool
}

// NewPlayer creates an online player.
func NewPlayer(id, name, world string) *Player {
	p := &Player{id: id, name: name}
	p.world.Store(world)
	p.online.Store(true)
	return p
}

func (p *Player) ID() string    { return p.id }
func (p *Player) Name() string  { return p.name }
func (p *Player) Online() bool  { return p.online.Load() }
func (p *Player) World() string { return p.world.Load().(string) }

// SetOnline flips the player's connection state.
func (p *Player) SetOnline(online bool) { p.online.Store(online) }

// SetWorld moves the player.
func (p *Player) SetWorld(world string) { p.world.Store(world) }

// MemoryHost is a Host that keeps boards in memory and records every write
// that would have been sent to a viewer.
//
// Like real hosts it only emits a write when a score actually changes, and a
// fresh score starts at zero, so setting a fresh score to zero is swallowed.
//
// Thread-safety: all methods are safe for concurrent use; a single mutex
// guards every board created by the host.
type MemoryHost struct {
	mu        sync.Mutex
	version   string
	caps      Capabilities
	installed map[string]*memBoard
	players   map[string]*Player
	writes    []Write
}

// NewMemoryHost creates a host reporting the given version and capabilities.
func NewMemoryHost(version string, caps Capabilities) *MemoryHost {
	return &MemoryHost{
		version:   version,
		caps:      caps,
		installed: make(map[string]*memBoard),
		players:   make(map[string]*Player),
	}
}

// Join connects a player identified by OfflineID(name).
func (h *MemoryHost) Join(name, world string) *Player {
	p := NewPlayer(OfflineID(name), name, world)
	h.mu.Lock()
	h.players[p.ID()] = p
	h.mu.Unlock()
	return p
}

// Leave disconnects the player and drops its board.
func (h *MemoryHost) Leave(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.players[id]; ok {
		p.SetOnline(false)
		delete(h.players, id)
	}
	if b, ok := h.installed[id]; ok {
		b.viewer = ""
		delete(h.installed, id)
	}
}

// Player returns a joined player by id.
func (h *MemoryHost) Player(id string) (*Player, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[id]
	return p, ok
}

// Players returns joined players ordered by name.
func (h *MemoryHost) Players() []*Player {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Player, 0, len(h.players))
	for _, p := range h.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (h *MemoryHost) NewBoard() Board {
	return &memBoard{
		host:   h,
		objs:   make(map[string]*memObjective),
		groups: make(map[string]*memGroup),
	}
}

func (h *MemoryHost) CurrentBoard(v Viewer) Board {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.installed[v.ID()]
	if !ok {
		return nil
	}
	return b
}

func (h *MemoryHost) Install(v Viewer, b Board) error {
	mb, ok := b.(*memBoard)
	if !ok {
		return fmt.Errorf("board %T was not created by this host", b)
	}
	if !v.Online() {
		return fmt.Errorf("install board for %s: %w", v.Name(), ErrViewerUnreachable)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.installed[v.ID()]; ok && prev != mb {
		prev.viewer = ""
	}
	mb.viewer = v.ID()
	h.installed[v.ID()] = mb
	return nil
}

func (h *MemoryHost) Version() string            { return h.version }
func (h *MemoryHost) Capabilities() Capabilities { return h.caps }

func (h *MemoryHost) OnlineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.players)
}

// Writes returns a copy of every recorded write in order.
func (h *MemoryHost) Writes() []Write {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Write, len(h.writes))
	copy(out, h.writes)
	return out
}

// ResetWrites clears the write log.
func (h *MemoryHost) ResetWrites() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = nil
}

// Render returns what the viewer currently sees in the sidebar. Rows are
// ordered by value descending, then by entry, and group text is applied
// around each member entry.
func (h *MemoryHost) Render(v Viewer) Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := Snapshot{Viewer: v.ID(), Lines: []Line{}}
	b, ok := h.installed[v.ID()]
	if !ok || b.sidebar == nil {
		return snap
	}
	obj := b.sidebar
	snap.Objective = obj.name
	snap.Title = obj.title

	for _, entry := range obj.order {
		s := obj.scores[entry]
		text := entry
		for _, g := range b.groups {
			if _, member := g.members[entry]; member {
				text = g.prefix + entry + g.suffix
				break
			}
		}
		snap.Lines = append(snap.Lines, Line{Text: text, Value: s.value})
	}
	sort.SliceStable(snap.Lines, func(i, j int) bool {
		if snap.Lines[i].Value != snap.Lines[j].Value {
			return snap.Lines[i].Value > snap.Lines[j].Value
		}
		return snap.Lines[i].Text < snap.Lines[j].Text
	})
	return snap
}

type memBoard struct {
	host    *MemoryHost
	viewer  string
	objs    map[string]*memObjective
	order   []string
	sidebar *memObjective
	groups  map[string]*memGroup
}

func (b *memBoard) RegisterObjective(name string) (Objective, error) {
	b.host.mu.Lock()
	defer b.host.mu.Unlock()
	if _, ok := b.objs[name]; ok {
		return nil, fmt.Errorf("objective %q: %w", name, ErrNameTaken)
	}
	o := &memObjective{board: b, name: name, title: name, scores: make(map[string]*memScore)}
	b.objs[name] = o
	b.order = append(b.order, name)
	return o, nil
}

func (b *memBoard) Objective(name string) Objective {
	b.host.mu.Lock()
	defer b.host.mu.Unlock()
	o, ok := b.objs[name]
	if !ok {
		return nil
	}
	return o
}

func (b *memBoard) Sidebar() Objective {
	b.host.mu.Lock()
	defer b.host.mu.Unlock()
	if b.sidebar == nil {
		return nil
	}
	return b.sidebar
}

func (b *memBoard) Objectives() []Objective {
	b.host.mu.Lock()
	defer b.host.mu.Unlock()
	out := make([]Objective, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.objs[name])
	}
	return out
}

func (b *memBoard) Group(id string) Group {
	b.host.mu.Lock()
	defer b.host.mu.Unlock()
	g, ok := b.groups[id]
	if !ok {
		return nil
	}
	return g
}

func (b *memBoard) RegisterGroup(id string) (Group, error) {
	b.host.mu.Lock()
	defer b.host.mu.Unlock()
	if _, ok := b.groups[id]; ok {
		return nil, fmt.Errorf("group %q: %w", id, ErrNameTaken)
	}
	g := &memGroup{board: b, id: id, members: make(map[string]struct{})}
	b.groups[id] = g
	return g, nil
}

type memObjective struct {
	board  *memBoard
	name   string
	title  string
	scores map[string]*memScore
	order  []string
}

func (o *memObjective) Name() string { return o.name }

func (o *memObjective) DisplayName() string {
	o.board.host.mu.Lock()
	defer o.board.host.mu.Unlock()
	return o.title
}

func (o *memObjective) SetDisplayName(title string) {
	o.board.host.mu.Lock()
	defer o.board.host.mu.Unlock()
	o.title = title
}

func (o *memObjective) ShowInSidebar() {
	o.board.host.mu.Lock()
	defer o.board.host.mu.Unlock()
	o.board.sidebar = o
}

func (o *memObjective) Score(entry string) Score {
	o.board.host.mu.Lock()
	defer o.board.host.mu.Unlock()
	if s, ok := o.scores[entry]; ok {
		return s
	}
	return &memScore{obj: o, entry: entry}
}

// ScoreFor keys the score by an offline handle, as legacy hosts do.
func (o *memObjective) ScoreFor(entry OfflineEntry) Score {
	return o.Score(entry.Name)
}

func (o *memObjective) Unregister() {
	o.board.host.mu.Lock()
	defer o.board.host.mu.Unlock()
	b := o.board
	if b.objs[o.name] != o {
		return
	}
	delete(b.objs, o.name)
	for i, name := range b.order {
		if name == o.name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if b.sidebar == o {
		b.sidebar = nil
	}
}

func (o *memObjective) Board() Board { return o.board }

type memScore struct {
	obj   *memObjective
	entry string
	value int
	set   bool
}

func (s *memScore) Entry() string { return s.entry }

func (s *memScore) Get() (int, bool) {
	s.obj.board.host.mu.Lock()
	defer s.obj.board.host.mu.Unlock()
	return s.value, s.set
}

func (s *memScore) Set(value int) {
	h := s.obj.board.host
	h.mu.Lock()
	defer h.mu.Unlock()

	o := s.obj
	if cur, ok := o.scores[s.entry]; ok {
		s = cur
	} else {
		o.scores[s.entry] = s
		o.order = append(o.order, s.entry)
	}
	s.set = true
	if s.value == value {
		return
	}
	s.value = value
	h.writes = append(h.writes, Write{
		Viewer:    o.board.viewer,
		Objective: o.name,
		Entry:     s.entry,
		Value:     value,
	})
}

type memGroup struct {
	board       *memBoard
	id          string
	prefix      string
	suffix      string
	displayName string
	members     map[string]struct{}
}

func (g *memGroup) ID() string { return g.id }

func (g *memGroup) Prefix() string {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	return g.prefix
}

func (g *memGroup) Suffix() string {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	return g.suffix
}

func (g *memGroup) DisplayName() string {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	return g.displayName
}

func (g *memGroup) SetPrefix(text string) {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	g.prefix = text
}

func (g *memGroup) SetSuffix(text string) {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	g.suffix = text
}

func (g *memGroup) SetDisplayName(text string) {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	g.displayName = text
}

func (g *memGroup) AddMember(entry string) {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	g.members[entry] = struct{}{}
}

func (g *memGroup) Members() []string {
	g.board.host.mu.Lock()
	defer g.board.host.mu.Unlock()
	out := make([]string, 0, len(g.members))
	for m := range g.members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
