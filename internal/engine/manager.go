package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/sbstats/internal/config"
	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/label"
	"github.com/roach88/sbstats/internal/schedule"
	"github.com/roach88/sbstats/internal/store"
	"github.com/roach88/sbstats/internal/variables"
)

// RankedSource supplies the overlay standings, best first.
type RankedSource interface {
	Entries() []store.Entry
}

// Manager owns every viewer's board state and applies board operations.
//
// Thread-safety: all methods are safe for concurrent use. Operations are
// serialized by an internal mutex; deferred transitions fire on the
// scheduler's goroutine and go through the same path, or through a
// Dispatcher when one is attached.
type Manager struct {
	host     display.Host
	cfg      *config.Config
	poller   *Poller
	ranked   RankedSource
	sched    *schedule.Scheduler
	strategy WriteStrategy
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	deferred func(Event)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostics logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithStrategy overrides the detected write strategy.
func WithStrategy(s WriteStrategy) Option {
	return func(m *Manager) {
		m.strategy = s
	}
}

// New creates a Manager. The write strategy is detected from the host once,
// here. ranked may be nil, in which case overlays show no rows.
func New(
	host display.Host,
	cfg *config.Config,
	resolver variables.Resolver,
	ranked RankedSource,
	sched *schedule.Scheduler,
	opts ...Option,
) *Manager {
	m := &Manager{
		host:     host,
		cfg:      cfg,
		ranked:   ranked,
		sched:    sched,
		logger:   slog.Default(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.strategy == nil {
		m.strategy = DetectStrategy(host.Version(), host.Capabilities())
	}
	m.poller = NewPoller(cfg.Rows, resolver, m.logger)
	m.deferred = m.applyAbsorbed

	m.logger.Debug("scoreboard manager ready",
		"host_version", host.Version(),
		"strategy", m.strategy.Name(),
		"rows", cfg.Rows.Len(),
	)
	return m
}

// Strategy returns the write strategy in use.
func (m *Manager) Strategy() WriteStrategy { return m.strategy }

// setDeferred routes fired transitions through submit instead of applying
// them on the timer goroutine.
func (m *Manager) setDeferred(submit func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deferred = submit
}

// CreateScoreboard shows the normal board to v, runs a complete refresh and
// schedules the overlay when it is enabled.
func (m *Manager) CreateScoreboard(v display.Viewer) {
	m.applyAbsorbed(Event{Kind: EventCreate, Viewer: v})
}

// CreateTopListScoreboard replaces v's normal board with the ranked overlay.
func (m *Manager) CreateTopListScoreboard(v display.Viewer) {
	m.applyAbsorbed(Event{Kind: EventOverlay, Viewer: v})
}

// SendUpdate creates the board if v has none, otherwise runs a partial
// refresh.
func (m *Manager) SendUpdate(v display.Viewer) {
	m.applyAbsorbed(Event{Kind: EventSendUpdate, Viewer: v})
}

// Refresh re-polls v's rows. Only the normal board is ever refreshed.
func (m *Manager) Refresh(v display.Viewer, complete bool) {
	m.applyAbsorbed(Event{Kind: EventRefresh, Viewer: v, Complete: complete})
}

// Update pushes a single row to v's normal board as a complete write.
func (m *Manager) Update(v display.Viewer, title string, value int) {
	m.applyAbsorbed(Event{Kind: EventUpdate, Viewer: v, Title: title, Value: value})
}

// Unregister removes our objectives from v's board and drops v's state.
// Safe to call repeatedly.
func (m *Manager) Unregister(v display.Viewer) {
	m.applyAbsorbed(Event{Kind: EventUnregister, Viewer: v})
}

// Forget drops v's state and pending transition without touching the host.
// Used on logout, when the board is already gone.
func (m *Manager) Forget(v display.Viewer) {
	m.applyAbsorbed(Event{Kind: EventForget, Viewer: v})
}

// Flavor returns the board flavor v currently has.
func (m *Manager) Flavor(viewerID string) Flavor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[viewerID]; ok {
		return s.flavor
	}
	return NoBoard
}

// Skipped returns the event-only variables currently skipped for a viewer.
func (m *Manager) Skipped(viewerID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[viewerID]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(s.skip))
	for k := range s.skip {
		keys = append(keys, k)
	}
	return keys
}

// LastValues returns the final value written per entry on v's current
// board.
func (m *Manager) LastValues(viewerID string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[viewerID]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(s.last))
	for k, v := range s.last {
		out[k] = v
	}
	return out
}

// Apply runs one event and returns why it did nothing, if it did nothing.
// Returned errors are never fatal.
func (m *Manager) Apply(ev Event) error {
	if ev.Viewer == nil {
		return fmt.Errorf("%s event without viewer", ev.Kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Kind {
	case EventCreate:
		return m.createNormal(ev.Viewer)
	case EventOverlay:
		return m.createOverlay(ev.Viewer)
	case EventSendUpdate:
		return m.sendUpdate(ev.Viewer)
	case EventRefresh:
		return m.refresh(ev.Viewer, ev.Complete)
	case EventUpdate:
		return m.update(ev.Viewer, ev.Title, ev.Value)
	case EventUnregister:
		m.unregister(ev.Viewer)
		return nil
	case EventForget:
		m.forget(ev.Viewer.ID())
		return nil
	default:
		return fmt.Errorf("unknown event kind: %d", ev.Kind)
	}
}

func (m *Manager) applyAbsorbed(ev Event) {
	m.absorb(ev, m.Apply(ev))
}

// absorb logs the outcome of an event. Refusals are expected and only
// show up at debug level.
func (m *Manager) absorb(ev Event, err error) {
	if err == nil {
		return
	}
	var re *ReconcileError
	if errors.As(err, &re) {
		m.logger.Debug("board operation skipped",
			"event", ev.Kind,
			"viewer", ev.Viewer.Name(),
			"code", re.Code,
			"reason", re.Message,
		)
		return
	}
	m.logger.Warn("board operation failed",
		"event", ev.Kind,
		"error", err,
	)
}

func (m *Manager) valid(v display.Viewer) bool {
	return v.Online() && !m.cfg.WorldDisabled(v.World())
}

func (m *Manager) createNormal(v display.Viewer) error {
	if !m.valid(v) {
		return newError(CodeInvalidViewer, v.Name(), "offline or in a disabled world", nil)
	}
	if cur := m.host.CurrentBoard(v); cur != nil {
		if sb := cur.Sidebar(); sb != nil {
			switch sb.Name() {
			case OverlayName:
				// the overlay hands the sidebar back here
			case BoardName:
				return newError(CodeBoardShown, v.Name(), "normal board already showing", nil)
			default:
				return newError(CodeForeignBoard, v.Name(), "sidebar shows "+sb.Name(), ErrForeignBoard)
			}
		}
	}

	board := m.host.NewBoard()
	obj, err := board.RegisterObjective(BoardName)
	if err != nil {
		return fmt.Errorf("register %s: %w", BoardName, err)
	}
	obj.ShowInSidebar()
	obj.SetDisplayName(label.TranslateColors(m.cfg.Scoreboard.Title))

	if err := m.install(v, board); err != nil {
		return err
	}

	s, ok := m.sessions[v.ID()]
	if !ok {
		s = newSession(Normal)
		m.sessions[v.ID()] = s
	}
	s.switchTo(Normal)
	m.poll(v, obj, s, true)

	if m.cfg.Temp.Enabled {
		m.schedule(v, m.cfg.Temp.AppearAfter, EventOverlay)
	}
	return nil
}

func (m *Manager) createOverlay(v display.Viewer) error {
	if !m.valid(v) {
		return newError(CodeInvalidViewer, v.Name(), "offline or in a disabled world", nil)
	}
	board := m.host.CurrentBoard(v)
	if board == nil {
		return newError(CodeNoNormalBoard, v.Name(), "no board", nil)
	}
	sb := board.Sidebar()
	if sb == nil || !strings.HasPrefix(sb.Name(), NamePrefix) {
		return newError(CodeNoNormalBoard, v.Name(), "sidebar is not ours", nil)
	}

	if stale := board.Objective(OverlayName); stale != nil {
		stale.Unregister()
	}
	obj, err := board.RegisterObjective(OverlayName)
	if err != nil {
		return fmt.Errorf("register %s: %w", OverlayName, err)
	}
	obj.ShowInSidebar()
	obj.SetDisplayName(label.TranslateColors(m.cfg.Temp.Title))

	if err := m.install(v, board); err != nil {
		return err
	}

	s, ok := m.sessions[v.ID()]
	if !ok {
		s = newSession(Overlay)
		m.sessions[v.ID()] = s
	}
	s.switchTo(Overlay)

	color := label.TranslateColors(m.cfg.Temp.Color)
	for _, e := range m.topEntries() {
		m.write(obj, s, label.Strip(color+e.Name), e.Value, true)
	}

	m.schedule(v, m.cfg.Temp.ShowFor, EventCreate)
	return nil
}

func (m *Manager) topEntries() []store.Entry {
	if m.ranked == nil {
		return nil
	}
	entries := m.ranked.Entries()
	if size := m.cfg.Temp.Size; size > 0 && len(entries) > size {
		entries = entries[:size]
	}
	return entries
}

func (m *Manager) install(v display.Viewer, board display.Board) error {
	err := m.host.Install(v, board)
	if err == nil {
		return nil
	}
	if errors.Is(err, display.ErrViewerUnreachable) {
		return newError(CodeViewerUnreachable, v.Name(), "install aborted", err)
	}
	return fmt.Errorf("install board: %w", err)
}

func (m *Manager) sendUpdate(v display.Viewer) error {
	board := m.host.CurrentBoard(v)
	if board == nil || board.Sidebar() == nil {
		return m.createNormal(v)
	}
	return m.refresh(v, false)
}

func (m *Manager) refresh(v display.Viewer, complete bool) error {
	board := m.host.CurrentBoard(v)
	if board == nil {
		return newError(CodeNoNormalBoard, v.Name(), "no board", nil)
	}
	sb := board.Sidebar()
	if sb == nil || sb.Name() != BoardName {
		return newError(CodeNoNormalBoard, v.Name(), "normal board not showing", nil)
	}
	s, ok := m.sessions[v.ID()]
	if !ok || s.flavor != Normal {
		return newError(CodeNoNormalBoard, v.Name(), "no normal session", nil)
	}

	m.poll(v, sb, s, complete)
	return nil
}

func (m *Manager) poll(v display.Viewer, obj display.Objective, s *session, complete bool) {
	for sample := range m.poller.Poll(v, s.skip, complete) {
		m.write(obj, s, sample.Title, sample.Value, complete)
	}
}

func (m *Manager) update(v display.Viewer, title string, value int) error {
	board := m.host.CurrentBoard(v)
	if board == nil {
		return newError(CodeNoNormalBoard, v.Name(), "no board", nil)
	}
	obj := board.Objective(BoardName)
	if obj == nil {
		return newError(CodeNoNormalBoard, v.Name(), "no normal objective", nil)
	}
	m.write(obj, m.sessions[v.ID()], title, value, true)
	return nil
}

func (m *Manager) unregister(v display.Viewer) {
	m.forget(v.ID())
	if !v.Online() {
		return
	}
	board := m.host.CurrentBoard(v)
	if board == nil {
		return
	}
	for _, obj := range board.Objectives() {
		if strings.HasPrefix(obj.Name(), NamePrefix) {
			obj.Unregister()
		}
	}
}

func (m *Manager) forget(id string) {
	m.sched.Cancel(id)
	delete(m.sessions, id)
}

// write sends one row through encode, gate and strategy. s may be nil.
func (m *Manager) write(obj display.Objective, s *session, title string, value int, complete bool) {
	enc := label.Encode(obj.Board(), label.TranslateColors(title))
	score := m.strategy.Score(obj, enc.Short)

	current, known := score.Get()
	values := Decide(current, known, value, complete)
	for _, val := range values {
		score.Set(val)
	}
	if s != nil && len(values) > 0 {
		s.last[enc.Short] = values[len(values)-1]
	}
}

// schedule queues a deferred transition for v, replacing any pending one.
// Called with m.mu held.
func (m *Manager) schedule(v display.Viewer, d time.Duration, kind EventKind) {
	submit := m.deferred
	m.sched.Schedule(v.ID(), d, func() {
		submit(Event{Kind: kind, Viewer: v})
	})
}
