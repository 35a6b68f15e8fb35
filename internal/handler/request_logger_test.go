package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordedObservation struct {
	method, route string
	status        int
}

type mockHTTPObserver struct{ seen []recordedObservation }

func (m *mockHTTPObserver) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.seen = append(m.seen, recordedObservation{method: method, route: route, status: status})
}

func TestInstrument_UsesMatchedPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	obs := &mockHTTPObserver{}
	h := Instrument(obs)(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(obs.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(obs.seen))
	}
	got := obs.seen[0]
	if got.route != "GET /api/messages" || got.status != http.StatusTeapot || got.method != "GET" {
		t.Errorf("unexpected observation %+v", got)
	}
}

func TestInstrument_UnmatchedRoute(t *testing.T) {
	obs := &mockHTTPObserver{}
	h := Instrument(obs)(http.NewServeMux())

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(obs.seen) != 1 || obs.seen[0].route != "unmatched" || obs.seen[0].status != http.StatusNotFound {
		t.Errorf("expected unmatched 404 observation, got %+v", obs.seen)
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	rec := httptest.NewRecorder()
	RequestID(RequestLogger(inner)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/messages", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201 to pass through, got %d", rec.Code)
	}
}

// captureLogs routes the default slog logger into a buffer for one test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRequestLogger_Fields(t *testing.T) {
	buf := captureLogs(t)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	req.Header.Set("X-Request-ID", "req-42")
	RequestID(RequestLogger(inner)).ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line: %v (%s)", err, buf.String())
	}
	if entry["level"] != "INFO" || entry["status"] != float64(201) || entry["bytes"] != float64(5) {
		t.Errorf("unexpected log entry %v", entry)
	}
	if entry["request_id"] != "req-42" || entry["path"] != "/api/messages" {
		t.Errorf("expected request_id and path, got %v", entry)
	}
}

func TestRequestLogger_ServerErrorIsWarn(t *testing.T) {
	buf := captureLogs(t)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	RequestLogger(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/messages", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Errorf("expected WARN for a 500, got %v", entry["level"])
	}
}
