package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/engine"
	"github.com/roach88/sbstats/internal/store"
)

type viewerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	World  string `json:"world"`
	Flavor string `json:"flavor"`
}

type boardView struct {
	Flavor string `json:"flavor"`
	display.Snapshot
}

type joinRequest struct {
	Name  string `json:"name"`
	World string `json:"world"`
}

type worldRequest struct {
	World string `json:"world"`
}

type updateRequest struct {
	Title string `json:"title"`
	Value int    `json:"value"`
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func ListTop(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := []store.Entry{}
		if d.Top != nil {
			entries = append(entries, d.Top.Entries()...)
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func ListViewers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players := d.Host.Players()
		out := make([]viewerView, 0, len(players))
		for _, p := range players {
			out = append(out, d.view(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// JoinViewer connects a player, loads their stats and creates the normal
// board.
func JoinViewer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if req.World == "" {
			req.World = "world"
		}
		if _, ok := d.Host.Player(display.OfflineID(req.Name)); ok {
			writeError(w, http.StatusConflict, "viewer already joined")
			return
		}

		p := d.Host.Join(req.Name, req.World)
		if _, err := d.Stats.Load(r.Context(), p.ID(), p.Name()); err != nil {
			d.Host.Leave(p.ID())
			d.Logger.Error("load stats", "viewer", p.Name(), "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		if !d.enqueue(w, engine.Event{Kind: engine.EventCreate, Viewer: p}) {
			return
		}
		d.Logger.Info("viewer joined", "viewer", p.Name(), "id", p.ID(), "world", p.World())
		writeJSON(w, http.StatusCreated, d.view(p))
	}
}

// LeaveViewer disconnects a player and drops their board state.
func LeaveViewer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.player(w, r)
		if !ok {
			return
		}
		d.Host.Leave(p.ID())
		d.Stats.Forget(p.ID())
		if !d.enqueue(w, engine.Event{Kind: engine.EventForget, Viewer: p}) {
			return
		}
		d.Logger.Info("viewer left", "viewer", p.Name(), "id", p.ID())
		w.WriteHeader(http.StatusNoContent)
	}
}

func ShowBoard(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.player(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, boardView{
			Flavor:   d.Boards.Flavor(p.ID()).String(),
			Snapshot: d.Host.Render(p),
		})
	}
}

// ChangeWorld moves a player. Entering a disabled world removes the board;
// leaving one recreates it.
func ChangeWorld(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.player(w, r)
		if !ok {
			return
		}
		var req worldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.World == "" {
			writeError(w, http.StatusBadRequest, "world is required")
			return
		}

		p.SetWorld(req.World)
		kind := engine.EventCreate
		if d.Config != nil && d.Config.WorldDisabled(req.World) {
			kind = engine.EventUnregister
		}
		if !d.enqueue(w, engine.Event{Kind: kind, Viewer: p}) {
			return
		}
		writeJSON(w, http.StatusAccepted, d.view(p))
	}
}

// RecordStats adds counters to a player's stats and queues a complete
// refresh so rows waiting on stats are resolved again.
func RecordStats(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.player(w, r)
		if !ok {
			return
		}
		var delta store.Stats
		if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		delta.ID, delta.Name = p.ID(), p.Name()

		st, err := d.Stats.Record(r.Context(), delta)
		if err != nil {
			d.Logger.Error("record stats", "viewer", p.Name(), "error", err)
			writeError(w, http.StatusInternalServerError, "failed to record stats")
			return
		}
		if !d.enqueue(w, engine.Event{Kind: engine.EventRefresh, Viewer: p, Complete: true}) {
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// PushUpdate writes one row value directly, bypassing the variable lookup.
func PushUpdate(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.player(w, r)
		if !ok {
			return
		}
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if !d.enqueue(w, engine.Event{Kind: engine.EventUpdate, Viewer: p, Title: req.Title, Value: req.Value}) {
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func ShowOverlay(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.player(w, r)
		if !ok {
			return
		}
		if !d.enqueue(w, engine.Event{Kind: engine.EventOverlay, Viewer: p}) {
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func (d Deps) player(w http.ResponseWriter, r *http.Request) (*display.Player, bool) {
	p, ok := d.Host.Player(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "viewer not found")
	}
	return p, ok
}

func (d Deps) enqueue(w http.ResponseWriter, ev engine.Event) bool {
	if d.Events.Enqueue(ev) {
		return true
	}
	writeError(w, http.StatusServiceUnavailable, "server is shutting down")
	return false
}

func (d Deps) view(p *display.Player) viewerView {
	return viewerView{
		ID:     p.ID(),
		Name:   p.Name(),
		World:  p.World(),
		Flavor: d.Boards.Flavor(p.ID()).String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: message})
}
