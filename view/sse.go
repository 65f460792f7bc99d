package view

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/starfederation/datastar-go/datastar"
)

// Patch mode aliases for convenience.
const (
	PatchOuter   = datastar.ElementPatchModeOuter
	PatchInner   = datastar.ElementPatchModeInner
	PatchReplace = datastar.ElementPatchModeReplace
)

// SSERoot patches templ components into the page over a datastar SSE stream.
type SSERoot struct {
	mu   sync.Mutex
	sse  *datastar.ServerSentEventGenerator
	done <-chan struct{}
	opts []datastar.PatchElementOption
}

// NewSSERoot starts an SSE response on w. Options select the patch target and mode.
func NewSSERoot(w http.ResponseWriter, r *http.Request, opts ...datastar.PatchElementOption) *SSERoot {
	return &SSERoot{sse: datastar.NewSSE(w, r), done: r.Context().Done(), opts: opts}
}

// WithTarget sets the selector the component is patched into.
func WithTarget(selector string) datastar.PatchElementOption {
	return datastar.WithSelector(selector)
}

// WithPatchMode sets how the component is merged into the DOM.
func WithPatchMode(mode datastar.ElementPatchMode) datastar.PatchElementOption {
	return datastar.WithMode(mode)
}

func (s *SSERoot) Draw(_ context.Context, node any) error {
	c, err := component(node)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sse.PatchElementTempl(c, s.opts...)
}

// Signals pushes frontend signal values.
func (s *SSERoot) Signals(signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sse.PatchSignals(data)
}

// Done is closed when the client goes away.
func (s *SSERoot) Done() <-chan struct{} {
	return s.done
}
