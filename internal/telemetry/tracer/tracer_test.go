package tracer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		service string
		w       *bytes.Buffer
	}{
		{"with exporter", "cricket-test", &bytes.Buffer{}},
		{"empty service name", "", &bytes.Buffer{}},
		{"no exporter", "cricket-test", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p *Provider
			var err error
			if tt.w == nil {
				p, err = New(tt.service, nil)
			} else {
				p, err = New(tt.service, tt.w)
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if err := p.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestProvider_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	p, err := New("cricket-test", nil, sdktrace.WithSpanProcessor(sr))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Shutdown(context.Background())

	_, span := p.Tracer().Start(context.Background(), "listMatches",
		trace.WithAttributes(attribute.String("http.method", "GET")))
	End(span, nil)

	_, span = p.Tracer().Start(context.Background(), "deleteMatch")
	End(span, errors.New("not found"))

	ended := sr.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Name() != "listMatches" || ended[0].Status().Code == codes.Error {
		t.Errorf("first span = %s status %v", ended[0].Name(), ended[0].Status())
	}
	if ended[1].Status().Code != codes.Error || ended[1].Status().Description != "not found" {
		t.Errorf("second span status = %v, want error", ended[1].Status())
	}
	if len(ended[1].Events()) == 0 {
		t.Error("error should be recorded as a span event")
	}
}

func TestProvider_Install(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	p, err := New("cricket-test", nil, sdktrace.WithSpanProcessor(sr))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Shutdown(context.Background())
	p.Install()

	_, span := StartSpan(context.Background(), "toss", attribute.String("match.id", "m1"))
	End(span, nil)

	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	if ended[0].SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", ended[0].SpanKind())
	}
}

func TestProvider_StdoutExport(t *testing.T) {
	var buf bytes.Buffer
	p, err := New("cricket-test", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := p.Tracer().Start(context.Background(), "emailLogin")
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"Name":"emailLogin"`) {
		t.Errorf("exported output = %q", buf.String())
	}
}
