// Package httpapi exposes the scoreboard host over HTTP so viewers can be
// joined, driven and inspected while the server runs.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/sbstats/internal/config"
	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/engine"
	"github.com/roach88/sbstats/internal/store"
)

// Events accepts board operations. engine.Dispatcher satisfies it.
type Events interface {
	Enqueue(ev engine.Event) bool
}

// Boards reports a viewer's board flavor. engine.Manager satisfies it.
type Boards interface {
	Flavor(viewerID string) engine.Flavor
}

// Stats loads and records player stats. store.PlayerCache satisfies it.
type Stats interface {
	Load(ctx context.Context, id, name string) (store.Stats, error)
	Record(ctx context.Context, delta store.Stats) (store.Stats, error)
	Forget(id string)
}

// Deps are the collaborators the handlers drive.
type Deps struct {
	Config *config.Config
	Host   *display.MemoryHost
	Events Events
	Boards Boards
	Stats  Stats
	Top    engine.RankedSource
	Logger *slog.Logger
}

func SetupRoutes(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/top", ListTop(d))

	r.Route("/viewers", func(r chi.Router) {
		r.Get("/", ListViewers(d))
		r.Post("/", JoinViewer(d))
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", LeaveViewer(d))
			r.Get("/board", ShowBoard(d))
			r.Post("/world", ChangeWorld(d))
			r.Post("/stats", RecordStats(d))
			r.Post("/update", PushUpdate(d))
			r.Post("/overlay", ShowOverlay(d))
		})
	})
	return r
}
