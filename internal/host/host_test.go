package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
	"github.com/comalice/beepboop/schema"
	"github.com/comalice/beepboop/testutil"
)

func counterView(p beepboop.ViewProps) any {
	return templ.Raw(fmt.Sprintf("<p>count %d</p>", p.Model.Int("count")))
}

func newHost(t *testing.T) *Host {
	t.Helper()
	m := testutil.Counter().
		Props(schema.Object(map[string]schema.Schema{"label": schema.String()})).
		View(counterView).
		MustCompile()
	h := New(beepboop.NewActor(m, beepboop.WithLogger(logger.Nop())), WithTitle("counter"), WithLogger(logger.Nop()))
	t.Cleanup(h.Close)
	return h
}

func do(h *Host, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPageBeforeMount(t *testing.T) {
	h := newHost(t)
	rec := do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPageRendersCurrentView(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.Mount(context.Background(), map[string]any{"label": "clicks"}))

	rec := do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>counter</title>")
	assert.Contains(t, body, `<div id="beepboop-root"><p>count 0</p></div>`)
	assert.Contains(t, body, "@get('/stream')")
}

func TestEventEndpoint(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.Mount(context.Background(), map[string]any{"label": "clicks"}))

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{name: "no body", target: "/events/inc", status: http.StatusNoContent},
		{name: "json body", target: "/events/inc", body: `{"by":1}`, status: http.StatusNoContent},
		{name: "unknown event is ignored", target: "/events/nope", status: http.StatusNoContent},
		{name: "malformed body", target: "/events/inc", body: `{`, status: http.StatusBadRequest},
		{name: "invalid props", target: "/events/props", body: `{"label":5}`, status: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := do(h, http.MethodGet, "/", "")
	assert.Contains(t, rec.Body.String(), "<p>count 2</p>")
}

func TestEventAfterClose(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.Mount(context.Background(), map[string]any{"label": "clicks"}))
	h.Close()

	rec := do(h, http.MethodPost, "/events/inc", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStreamPushesDraws(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.Mount(context.Background(), map[string]any{"label": "clicks"}))

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := readLines(resp.Body)
	waitFor(t, lines, "count 0")
	assert.Equal(t, 1, h.Subscribers())

	post, err := http.Post(srv.URL+"/events/inc", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusNoContent, post.StatusCode)

	waitFor(t, lines, "count 1")
}

func readLines(r io.Reader) <-chan string {
	out := make(chan string, 64)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			out <- sc.Text()
		}
	}()
	return out
}

func waitFor(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed before %q", want)
			if strings.Contains(line, want) {
				return
			}
		case <-deadline:
			t.Fatalf("no line containing %q", want)
		}
	}
}
