package apihttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/strcalc/internal/cache"
	"github.com/example/strcalc/internal/handlers"
	apihttp "github.com/example/strcalc/internal/http"
	"github.com/example/strcalc/internal/history"
	"github.com/example/strcalc/internal/rate"
	"github.com/example/strcalc/internal/metrics"
	"github.com/example/strcalc/internal/types"
	"github.com/example/strcalc/pkg/calculator"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

type fakeStorePing struct {
	history.Nop
	pingErr error
}

func (f fakeStorePing) Ping(_ context.Context) error { return f.pingErr }

func newTestServer(t *testing.T, rpm int, store history.Store) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, rpm, store, calculator.Calculator{})
}

func newTestServerWith(t *testing.T, rpm int, store history.Store, calc calculator.Calculator) *httptest.Server {
	t.Helper()
	lm := rate.NewLimiterMap(rate.Limits{RPM: rpm, Burst: rpm, IdleTTL: time.Minute})
	t.Cleanup(lm.Stop)
	r := apihttp.NewRouter(apihttp.Deps{
		Calc: handlers.CalcDeps{
			Calculator:     calc,
			Cache:          cache.New(10 * time.Second),
			Timeout:        3 * time.Second,
			MaxBatch:       10,
			MaxConcurrency: 4,
			MaxInputBytes:  4096,
			Logger:         zerolog.Nop(),
		},
		Limiter: lm,
		History: store,
		Logger:  zerolog.Nop(),
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doAdd(t *testing.T, ts *httptest.Server, input string) (*http.Response, []byte) {
	t.Helper()
	b, _ := json.Marshal(types.AddRequest{Input: input})
	resp, err := ts.Client().Post(ts.URL+"/api/add", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestHealthz_OK(t *testing.T) {
	ts := newTestServer(t, 1000, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestHealthz_StorePingOK(t *testing.T) {
	ts := newTestServer(t, 1000, fakeStorePing{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestHealthz_StorePingError(t *testing.T) {
	ts := newTestServer(t, 1000, fakeStorePing{pingErr: errString("down")})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestAddEndpoint(t *testing.T) {
	ts := newTestServer(t, 1000, nil)

	resp, body := doAdd(t, ts, "//;\n1;2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var out types.AddResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Sum != 3 {
		t.Fatalf("sum=%v", out.Sum)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id")
	}

	resp, body = doAdd(t, ts, "1,-2,3")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var e types.ErrorResponse
	_ = json.Unmarshal(body, &e)
	if e.Error != "Negative numbers not allowed: -2" {
		t.Fatalf("error=%q", e.Error)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	ts := newTestServer(t, 1000, nil)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "fixed-id" {
		t.Fatalf("req id=%s", got)
	}
}

func TestBatchEndpoint(t *testing.T) {
	ts := newTestServer(t, 1000, nil)
	b, _ := json.Marshal(types.BatchRequest{Inputs: []string{"1,2", "-1"}})
	resp, err := ts.Client().Post(ts.URL+"/api/add/batch", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	var out types.BatchResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode != http.StatusOK || len(out.Results) != 2 || out.Failed != 1 {
		t.Fatalf("status=%d out=%+v", resp.StatusCode, out)
	}
}

func TestRateLimit429(t *testing.T) {
	ts := newTestServer(t, 10, nil)
	var got429 int
	for i := 0; i < 11; i++ {
		resp, _ := doAdd(t, ts, "1,2")
		if resp.StatusCode == http.StatusTooManyRequests {
			got429++
		}
	}
	if got429 != 1 {
		t.Fatalf("got429=%d want 1", got429)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, 1000, nil)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/add", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, 1000, nil)
	doAdd(t, ts, "1,2")
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "strcalc_calculations_total") {
		t.Fatalf("calculation metric missing")
	}
	if !strings.Contains(string(body), `route="/api/add"`) {
		t.Fatalf("route label missing")
	}
}

func TestAddEndpoint_RejectionsAre422WithOutcome(t *testing.T) {
	cases := []struct {
		name    string
		calc    calculator.Calculator
		input   string
		outcome string
	}{
		{"malformed token", calculator.Calculator{}, "1,abc", metrics.OutcomeMalformed},
		{"invalid delimiter pattern", calculator.Calculator{PatternDelimiters: true}, "//(\n1(2", metrics.OutcomeInvalidDelimiter},
		{"sum overflow", calculator.Calculator{}, "1e308,1e308", metrics.OutcomeOverflow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServerWith(t, 1000, nil, tc.calc)
			counter := metrics.CalculationsTotal.WithLabelValues(tc.outcome)
			before := testutil.ToFloat64(counter)

			resp, body := doAdd(t, ts, tc.input)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d body=%s", resp.StatusCode, body)
			}
			var e types.ErrorResponse
			if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
				t.Fatalf("error body=%s err=%v", body, err)
			}
			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Fatalf("outcome %s counter=%v want %v", tc.outcome, got, before+1)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
