package httpadapter

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAccessLogRecordsStatusAndBytes(t *testing.T) {
	var logBuf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logBuf, nil)))
	defer slog.SetDefault(previous)

	body := `{"error":"missing"}`
	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(body))
	})
	handler := accessLogMiddleware(base)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/absent", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected wrapped handler status to pass through, got %d", res.Code)
	}
	if res.Body.String() != body {
		t.Fatalf("expected body to pass through, got %q", res.Body.String())
	}

	logLine := logBuf.String()
	if !strings.Contains(logLine, `"status":404`) {
		t.Fatalf("expected logged status 404, got %s", logLine)
	}
	if !strings.Contains(logLine, `"bytes":19`) {
		t.Fatalf("expected logged byte count %d, got %s", len(body), logLine)
	}
	if !strings.Contains(logLine, `"path":"/v1/documents/absent"`) {
		t.Fatalf("expected logged path, got %s", logLine)
	}
}

func TestAccessLogDefaultsToImplicit200(t *testing.T) {
	var logBuf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logBuf, nil)))
	defer slog.SetDefault(previous)

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	handler := accessLogMiddleware(base)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if !strings.Contains(logBuf.String(), `"status":200`) {
		t.Fatalf("expected implicit 200 in log, got %s", logBuf.String())
	}
}
