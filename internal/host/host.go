package host

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
	"github.com/comalice/beepboop/view"
)

// Host binds an Actor to HTTP handlers.
type Host struct {
	actor  *beepboop.Actor
	fanout *view.Fanout
	title  string
	log    *zap.SugaredLogger
}

// Option configures a Host.
type Option func(*Host)

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(h *Host) { h.title = title }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// New returns a host for actor. The actor is mounted by Mount.
func New(actor *beepboop.Actor, opts ...Option) *Host {
	h := &Host{
		actor:  actor,
		fanout: view.NewFanout(),
		title:  "beepboop",
		log:    logger.Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount mounts the actor on the host's fan-out root with the given props.
func (h *Host) Mount(ctx context.Context, props any) error {
	return h.actor.Mount(ctx, h.fanout, props)
}

// Close unmounts the actor.
func (h *Host) Close() {
	h.actor.Unmount()
}

// Subscribers returns the number of open streams.
func (h *Host) Subscribers() int {
	return h.fanout.Len()
}

// Handler returns the router.
func (h *Host) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.withLogger)

	r.Get("/", h.handlePage)
	r.Get("/stream", h.handleStream)
	r.Post("/events/{name}", h.handleEvent)
	return r
}

func (h *Host) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := h.log.With("request_id", middleware.GetReqID(r.Context()), "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logger.ToContext(r.Context(), l)))
	})
}

func (h *Host) handlePage(w http.ResponseWriter, r *http.Request) {
	node, ok := h.fanout.Last()
	if !ok {
		http.Error(w, "actor is not mounted", http.StatusServiceUnavailable)
		return
	}
	c, ok := node.(templ.Component)
	if !ok {
		logger.ErrorKV(r.Context(), "view is not a templ component", "type", node)
		http.Error(w, "view is not renderable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page(h.title, c).Render(r.Context(), w); err != nil {
		logger.ErrorKV(r.Context(), "render page", "error", err)
	}
}

func (h *Host) handleStream(w http.ResponseWriter, r *http.Request) {
	root := view.NewSSERoot(w, r, view.WithTarget("#"+RootID), view.WithPatchMode(view.PatchInner))
	unsubscribe, err := h.fanout.Subscribe(r.Context(), root)
	if err != nil {
		logger.WarnKV(r.Context(), "stream subscribe failed", "error", err)
		return
	}
	defer unsubscribe()
	logger.DebugKV(r.Context(), "stream opened", "subscribers", h.fanout.Len())
	<-root.Done()
	logger.DebugKV(r.Context(), "stream closed")
}

func (h *Host) handleEvent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var data any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.actor.Send(r.Context(), name, data); err != nil {
		logger.WarnKV(r.Context(), "event failed", "event", name, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case beepboop.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, beepboop.ErrUnmounted), errors.Is(err, beepboop.ErrNotInterpreted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
