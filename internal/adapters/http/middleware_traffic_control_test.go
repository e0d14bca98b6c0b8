package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/kirillkom/papercheck/internal/config"
)

func decodeErrorBody(t *testing.T, res *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", res.Body.String(), err)
	}
	return body
}

func TestRateLimitRejectsBurstOverflowOnSubmissionList(t *testing.T) {
	cfg := testConfig()
	cfg.APIRateLimitRPS = 0.5
	cfg.APIRateLimitBurst = 2
	handler := newTestHandler(cfg)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		last = serve(handler, httptest.NewRequest(http.MethodGet, "/v1/submissions?limit=5", nil))
		codes = append(codes, last.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 200, 200, 429; got %v", codes)
	}

	retryAfter, err := strconv.Atoi(last.Header().Get("Retry-After"))
	if err != nil || retryAfter < 1 {
		t.Fatalf("expected a positive Retry-After, got %q", last.Header().Get("Retry-After"))
	}
	body := decodeErrorBody(t, last)
	if body["error"] != "rate limit exceeded" {
		t.Fatalf("unexpected error body %v", body)
	}
	if body["request_id"] == "" || body["request_id"] != last.Header().Get(requestIDHeader) {
		t.Fatalf("429 body should carry the response request id, got %v", body)
	}
}

func TestRateLimitDisabledWithZeroRPS(t *testing.T) {
	handler := newTestHandler(config.Config{DefaultPaperType: "long"})
	for i := range 20 {
		res := serve(handler, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 without a limiter, got %d", i, res.Code)
		}
	}
}

func TestBackpressureShedsSecondUploadWhileFirstIsBusy(t *testing.T) {
	busy := make(chan struct{}, 2)
	release := make(chan struct{})
	firstDone := make(chan int, 1)

	slowUpload := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		busy <- struct{}{}
		<-release
		w.WriteHeader(http.StatusAccepted)
	})
	handler := requestIDMiddleware(backpressureMiddleware(slowUpload, 1, 20*time.Millisecond))

	go func() {
		firstDone <- serve(handler, httptest.NewRequest(http.MethodPost, "/v1/submissions", nil)).Code
	}()
	<-busy

	shed := serve(handler, httptest.NewRequest(http.MethodPost, "/v1/submissions", nil))
	if shed.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while the only slot is taken, got %d", shed.Code)
	}
	if shed.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After: 1, got %q", shed.Header().Get("Retry-After"))
	}
	if body := decodeErrorBody(t, shed); body["error"] != "server is overloaded, retry later" {
		t.Fatalf("unexpected overload body %v", body)
	}

	close(release)
	select {
	case code := <-firstDone:
		if code != http.StatusAccepted {
			t.Fatalf("first upload expected 202, got %d", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the first upload")
	}

	again := serve(handler, httptest.NewRequest(http.MethodPost, "/v1/submissions", nil))
	if again.Code != http.StatusAccepted {
		t.Fatalf("slot should be free after the first upload, got %d", again.Code)
	}
}
