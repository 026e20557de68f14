package ginserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/vshulcz/ingestmon/internal/adapters/http/ginserver/middlewares"
	"github.com/vshulcz/ingestmon/internal/domain"
)

func newTestServer(t *testing.T, b *Board) *httptest.Server {
	t.Helper()
	r := NewRouter(NewHandler(b), middlewares.ZapLogger(zap.NewNop()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestBoard_TracksLastSampleAndFailures(t *testing.T) {
	b := NewBoard()
	ctx := context.Background()
	events := []domain.Event{
		{Kind: domain.EventSample, Count: 100},
		{Kind: domain.EventFailure, Error: "timeout"},
		{Kind: domain.EventSample, Count: 300, Rate: domain.Rate{PerSecond: 40, Available: true}},
		{Kind: domain.EventFailure, Error: "timeout"},
	}
	for _, e := range events {
		if err := b.Notify(ctx, e); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	st := b.Status()
	if st.Events != 4 || st.Failures != 2 {
		t.Fatalf("counters events=%d failures=%d", st.Events, st.Failures)
	}
	if st.Last == nil || st.Last.Kind != domain.EventFailure {
		t.Fatalf("last=%+v", st.Last)
	}
	if st.LastSample == nil || st.LastSample.Count != 300 {
		t.Fatalf("last sample=%+v", st.LastSample)
	}
	if st.Stopped {
		t.Fatal("board must not report stopped")
	}

	_ = b.Notify(ctx, domain.Event{Kind: domain.EventStopped, Count: 300})
	if !b.Status().Stopped {
		t.Fatal("board must report stopped after stop event")
	}
}

func TestHandler_Status(t *testing.T) {
	b := NewBoard()
	srv := newTestServer(t, b)

	code, _ := get(t, srv.URL+"/status")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status before first poll = %d, want 503", code)
	}

	_ = b.Notify(context.Background(), domain.Event{Kind: domain.EventSample, Resource: "threats", Count: 150})

	code, body := get(t, srv.URL+"/status")
	if code != http.StatusOK {
		t.Fatalf("status = %d body=%s", code, body)
	}
	var st Status
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.LastSample == nil || st.LastSample.Count != 150 || st.LastSample.Resource != "threats" {
		t.Fatalf("decoded status=%+v", st)
	}
}

func TestRouter_PingAndMethods(t *testing.T) {
	srv := newTestServer(t, NewBoard())

	code, body := get(t, srv.URL+"/ping")
	if code != http.StatusOK || string(body) != "pong" {
		t.Fatalf("ping = %d %q", code, body)
	}

	resp, err := http.Post(srv.URL+"/status", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST /status = %d, want 405", resp.StatusCode)
	}
}

func TestServe_StartsAndStops(t *testing.T) {
	b := NewBoard()
	r := NewRouter(NewHandler(b))

	addr, stop, err := Serve(t.Context(), "127.0.0.1:0", r, zap.NewNop())
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}

	code, _ := get(t, "http://"+addr.String()+"/ping")
	if code != http.StatusOK {
		t.Fatalf("ping = %d", code)
	}

	stop()

	if _, err := http.Get("http://" + addr.String() + "/ping"); err == nil {
		t.Fatal("server still answering after stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	if _, _, err := Serve(t.Context(), "256.0.0.1:bad", http.NotFoundHandler(), zap.NewNop()); err == nil {
		t.Fatal("expected listen error")
	}
}
