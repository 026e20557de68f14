package httpjson

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vshulcz/ingestmon/internal/domain"
)

func mustWrite(t *testing.T, w io.Writer, data string) {
	t.Helper()
	if _, err := io.WriteString(w, data); err != nil {
		t.Errorf("write: %v", err)
	}
}

func TestNew_BuildsCountURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		resource string
		want     string
	}{
		{"no_scheme", "localhost:9200", "threats", "http://localhost:9200/threats/_count"},
		{"https_trailing_slash", "https://es.example.com/", "threats", "https://es.example.com/threats/_count"},
		{"base_path_kept", "http://proxy:80/es", "logs-2024", "http://proxy:80/es/logs-2024/_count"},
		{"resource_slashes_trimmed", "http://es:9200", "/idx/", "http://es:9200/idx/_count"},
		{"wildcard_index", "localhost:9200", "logs-*", "http://localhost:9200/logs-%2A/_count"},
		{"multi_index", "localhost:9200", "a,b", "http://localhost:9200/a%2Cb/_count"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.endpoint, tc.resource, nil, "")
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			if c.URL() != tc.want {
				t.Fatalf("URL=%q want %q", c.URL(), tc.want)
			}
			if c.hc.Timeout != defaultTimeout {
				t.Fatalf("default timeout=%v want %v", c.hc.Timeout, defaultTimeout)
			}
		})
	}
}

func TestClient_Count_IndexPatternReachesServerDecoded(t *testing.T) {
	for _, resource := range []string{"logs-*", "a,b", "threats 2024"} {
		t.Run(resource, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_, _ = io.WriteString(w, `{"count":7}`)
			}))
			defer srv.Close()

			c, err := New(srv.URL, resource, srv.Client(), "")
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			n, err := c.Count(t.Context())
			if err != nil {
				t.Fatalf("Count error: %v", err)
			}
			if n != 7 {
				t.Fatalf("count=%d want 7", n)
			}
			if want := "/" + resource + "/_count"; gotPath != want {
				t.Fatalf("server saw path %q want %q", gotPath, want)
			}
		})
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New("http://es:9200", "  ", nil, ""); err == nil {
		t.Fatal("expected error for empty resource")
	}
	if _, err := New("http://", "idx", nil, ""); err == nil {
		t.Fatal("expected error for endpoint without host")
	}
}

func TestClient_Count(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int64
		check   func(t *testing.T, err error)
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				mustWrite(t, w, `{"count":12345,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0}}`)
			},
			want: 12345,
		},
		{
			name: "gzip_body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Encoding", "gzip")
				zw := gzip.NewWriter(w)
				mustWrite(t, zw, `{"count":7}`)
				if err := zw.Close(); err != nil {
					t.Errorf("gzip close: %v", err)
				}
			},
			want: 7,
		},
		{
			name: "zero_is_valid",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				mustWrite(t, w, `{"count":0}`)
			},
			want: 0,
		},
		{
			name: "not_found_status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				mustWrite(t, w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
			},
			check: func(t *testing.T, err error) {
				var se *StatusError
				if !errors.As(err, &se) || se.Code != http.StatusNotFound {
					t.Fatalf("want StatusError 404, got %v", err)
				}
				if !strings.Contains(err.Error(), "404") {
					t.Fatalf("error text lacks status: %v", err)
				}
			},
		},
		{
			name: "missing_count",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				mustWrite(t, w, `{"acknowledged":true}`)
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrNoCount) {
					t.Fatalf("want ErrNoCount, got %v", err)
				}
			},
		},
		{
			name: "negative_count",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				mustWrite(t, w, `{"count":-1}`)
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrNegativeCount) {
					t.Fatalf("want ErrNegativeCount, got %v", err)
				}
			},
		},
		{
			name: "malformed_json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				mustWrite(t, w, `{"count":`)
			},
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "decode count") {
					t.Fatalf("want decode error, got %v", err)
				}
			},
		},
		{
			name: "bad_gzip",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Encoding", "gzip")
				mustWrite(t, w, "plain text")
			},
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "bad gzip") {
					t.Fatalf("want gzip error, got %v", err)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c, err := New(srv.URL, "threats", srv.Client(), "")
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			got, err := c.Count(context.Background())
			if tc.check != nil {
				tc.check(t, err)
				return
			}
			if err != nil {
				t.Fatalf("Count error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Count=%d want %d", got, tc.want)
			}
		})
	}
}

func TestClient_Count_RequestShape(t *testing.T) {
	var gotPath, gotMethod, gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		gotAuth, gotAccept = r.Header.Get("Authorization"), r.Header.Get("Accept")
		mustWrite(t, w, `{"count":1}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "threats", srv.Client(), "abc==")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := c.Count(context.Background()); err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/threats/_count" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotAuth != "ApiKey abc==" {
		t.Fatalf("Authorization=%q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept=%q", gotAccept)
	}
}

func TestClient_Count_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		mustWrite(t, w, `{"count":1}`)
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, "threats", &http.Client{Timeout: 20 * time.Millisecond}, "")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	start := time.Now()
	if _, err := c.Count(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not honored, took %v", time.Since(start))
	}
}

func TestClient_Count_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(addr, "threats", nil, "")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := c.Count(context.Background()); err == nil || !strings.Contains(err.Error(), "http do") {
		t.Fatalf("want transport error, got %v", err)
	}
}
