package connection

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/telemetry/logger"
)

func newTestClient(url string, opts ...Option) *HTTPClient {
	base := []Option{WithLogger(logger.Nop()), WithRequestIDFunc(func() string { return "req-1" })}
	return NewHTTPClient(url, append(base, opts...)...)
}

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name       string
		server     string
		wantPrefix string
	}{
		{"with http prefix", "http://localhost:5000", "http://localhost:5000"},
		{"with https prefix", "https://api.example.com", "https://api.example.com"},
		{"without prefix", "localhost:5000", "http://localhost:5000"},
		{"trailing slash", "http://localhost:5000/", "http://localhost:5000"},
		{"empty", "", DefaultBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(tt.server)
			if client.BaseURL() != tt.wantPrefix {
				t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), tt.wantPrefix)
			}
		})
	}
}

func TestHTTPClient_Headers(t *testing.T) {
	var (
		mu      sync.Mutex
		headers []http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, WithUserAgent("cricket-cli/1.2.3"))
	ctx := context.Background()

	var matches []domain.Match
	if err := client.Call(ctx, domain.EndpointListMatches, nil, nil, &matches); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	client.SetAuthToken("abc")
	if !client.HasAuthToken() {
		t.Error("HasAuthToken() = false after SetAuthToken")
	}
	if err := client.Call(ctx, domain.EndpointListMatches, nil, nil, &matches); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	client.SetAuthToken("")
	if err := client.Call(ctx, domain.EndpointListMatches, nil, nil, &matches); err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if len(headers) != 3 {
		t.Fatalf("server saw %d requests, want 3", len(headers))
	}
	if got := headers[0].Get("Authorization"); got != "" {
		t.Errorf("call before SetAuthToken carried Authorization %q", got)
	}
	if got := headers[1].Get("Authorization"); got != "Bearer abc" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer abc")
	}
	if _, ok := headers[2]["Authorization"]; ok {
		t.Error("Authorization should be absent after SetAuthToken(\"\")")
	}

	h := headers[0]
	if h.Get("User-Agent") != "cricket-cli/1.2.3" {
		t.Errorf("User-Agent = %q", h.Get("User-Agent"))
	}
	if h.Get("X-Request-ID") != "req-1" {
		t.Errorf("X-Request-ID = %q", h.Get("X-Request-ID"))
	}
	if h.Get("Content-Type") != "" {
		t.Errorf("GET without body should not set Content-Type, got %q", h.Get("Content-Type"))
	}
}

func TestHTTPClient_Call_Body(t *testing.T) {
	type createMatch struct {
		Format   string `json:"format"`
		Date     string `json:"date"`
		Location string `json:"location"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/matches" {
			t.Errorf("request = %s %s, want POST /matches", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var body createMatch
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Format != "T20" || body.Location != "Oval" {
			t.Errorf("body = %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"m1","format":"T20","date":"2024-01-01T10:00:00Z","location":"Oval"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var m domain.Match
	err := client.Call(context.Background(), domain.EndpointCreateMatch, nil,
		createMatch{Format: "T20", Date: "2024-01-01T10:00:00Z", Location: "Oval"}, &m)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if m.ID != "m1" {
		t.Errorf("match ID = %q, want m1", m.ID)
	}
}

func TestHTTPClient_Call_PathParams(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Call(context.Background(), domain.EndpointDeleteMatch, []string{"m 1"}, nil, nil); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/matches/m%201" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}

	err := client.Call(context.Background(), domain.EndpointDeleteMatch, nil, nil, nil)
	if !errors.Is(err, domain.ErrMissingPathParam) {
		t.Errorf("Call() without id error = %v, want ErrMissingPathParam", err)
	}
}

func TestHTTPClient_Helpers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"method":"` + r.Method + `","path":"` + r.URL.Path + `"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()

	var out map[string]string
	if err := client.Get(ctx, "/invites", &out); err != nil || out["method"] != "GET" {
		t.Errorf("Get() = %v, %v", out, err)
	}
	if err := client.Post(ctx, "/invites/i1/respond", map[string]bool{"accept": true}, &out); err != nil || out["method"] != "POST" {
		t.Errorf("Post() = %v, %v", out, err)
	}
	if err := client.Delete(ctx, "/matches/m1", &out); err != nil || out["path"] != "/matches/m1" {
		t.Errorf("Delete() = %v, %v", out, err)
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{"error field", http.StatusNotFound, `{"error":"not found"}`, 404, "not found"},
		{"message field", http.StatusBadRequest, `{"message":"date is required"}`, 400, "date is required"},
		{"both fields", http.StatusConflict, `{"error":"taken","message":"ignored"}`, 409, "taken"},
		{"non-string error", http.StatusBadRequest, `{"error":{"code":1}}`, 400, ""},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, 502, ""},
		{"empty body", http.StatusUnauthorized, ``, 401, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := newTestClient(server.URL).Call(context.Background(), domain.EndpointDeleteMatch, []string{"m1"}, nil, nil)

			var httpErr *domain.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("Call() error = %v, want HTTPError", err)
			}
			if httpErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", httpErr.Status, tt.wantStatus)
			}
			if httpErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", httpErr.Message, tt.wantMessage)
			}
			if string(httpErr.Body) != tt.body {
				t.Errorf("Body = %q, want %q", httpErr.Body, tt.body)
			}
		})
	}
}

func TestHTTPClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := newTestClient(url).Call(context.Background(), domain.EndpointListMatches, nil, nil, nil)

	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Call() error = %v, want NetworkError", err)
	}
	if netErr.Op != http.MethodGet || !strings.HasSuffix(netErr.URL, "/matches") {
		t.Errorf("NetworkError = %+v", netErr)
	}
	if got := domain.UserMessage(err, "Could not load matches"); got != domain.NetworkErrorMessage {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHTTPClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL)

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		err := client.Call(ctx, domain.EndpointListMatches, nil, nil, nil)
		if !errors.Is(err, domain.ErrRequestCanceled) {
			t.Errorf("Call() error = %v, want ErrRequestCanceled", err)
		}
	})

	t.Run("deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := client.Call(ctx, domain.EndpointListMatches, nil, nil, nil)
		if !errors.Is(err, domain.ErrRequestTimeout) {
			t.Errorf("Call() error = %v, want ErrRequestTimeout", err)
		}
	})
}

func TestHTTPClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":`))
	}))
	defer server.Close()

	var m domain.Match
	err := newTestClient(server.URL).Call(context.Background(), domain.EndpointToss, []string{"m1"}, nil, &m)
	if !errors.Is(err, domain.ErrDecodeResponse) {
		t.Errorf("Call() error = %v, want ErrDecodeResponse", err)
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingObserver) ObserveRequest(endpoint string, status int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, endpoint+":"+http.StatusText(status))
}

func TestHTTPClient_Observability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/score") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no score yet"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	obs := &recordingObserver{}
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	client := newTestClient(server.URL, WithMetrics(obs), WithTracer(tp.Tracer("test")))
	ctx := context.Background()

	_ = client.Call(ctx, domain.EndpointListInvites, nil, nil, nil)
	_ = client.Call(ctx, domain.EndpointGetMatchScore, []string{"m1"}, nil, nil)

	want := []string{"listInvites:OK", "getMatchScore:Not Found"}
	if len(obs.calls) != len(want) {
		t.Fatalf("observer calls = %v, want %v", obs.calls, want)
	}
	for i := range want {
		if obs.calls[i] != want[i] {
			t.Errorf("observer call %d = %q, want %q", i, obs.calls[i], want[i])
		}
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "listInvites" || spans[1].Name() != "getMatchScore" {
		t.Errorf("span names = %q, %q", spans[0].Name(), spans[1].Name())
	}
	if spans[1].Status().Description == "" {
		t.Error("failed call should mark its span as error")
	}
}

func TestParseResponse_Success(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"token":"abc","displayName":"Ann"}`)),
	}

	var creds domain.Credentials
	if err := ParseResponse(resp, &creds); err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if creds.Token != "abc" || creds.DisplayName != "Ann" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestParseResponse_NilTargetAndEmptyBody(t *testing.T) {
	for _, body := range []string{`{"ok":true}`, ``, "  \n"} {
		resp := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}
		if err := ParseResponse(resp, nil); err != nil {
			t.Errorf("ParseResponse(nil target, %q) error = %v", body, err)
		}
	}

	resp := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}
	var ack domain.Ack
	if err := ParseResponse(resp, &ack); err != nil {
		t.Errorf("ParseResponse(empty body) error = %v", err)
	}
	if !ack.Empty() {
		t.Errorf("ack = %s, want empty", ack.Raw)
	}
}

func TestParseResponse_AckAnyJSON(t *testing.T) {
	for body, want := range map[string]string{
		`"ok"`:                  "ok",
		`{"message":"Invited"}`: "Invited",
		`[1,2]`:                 "",
		`42`:                    "",
	} {
		resp := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}
		var ack domain.Ack
		if err := ParseResponse(resp, &ack); err != nil {
			t.Errorf("ParseResponse(%s) error = %v", body, err)
			continue
		}
		if got := ack.Message(); got != want {
			t.Errorf("ParseResponse(%s) message = %q, want %q", body, got, want)
		}
	}

	resp := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("<html>"))}
	var ack domain.Ack
	if err := ParseResponse(resp, &ack); !errors.Is(err, domain.ErrDecodeResponse) {
		t.Errorf("ParseResponse(html) error = %v, want ErrDecodeResponse", err)
	}
}
