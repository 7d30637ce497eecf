package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// OTLPCore is a zapcore.Core that batches entries and ships them to an
// OpenTelemetry collector over OTLP/HTTP JSON.
type OTLPCore struct {
	zapcore.LevelEnabler
	sink   *otlpSink
	fields []zapcore.Field
}

type otlpSink struct {
	endpoint    string
	serviceName string
	client      *http.Client
	batchSize   int

	mu      sync.Mutex
	pending []otlpRecord

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type otlpValue map[string]interface{}

type otlpAttr struct {
	Key   string    `json:"key"`
	Value otlpValue `json:"value"`
}

type otlpRecord struct {
	TimeUnixNano         string     `json:"timeUnixNano"`
	ObservedTimeUnixNano string     `json:"observedTimeUnixNano"`
	SeverityNumber       int        `json:"severityNumber"`
	SeverityText         string     `json:"severityText"`
	Body                 otlpValue  `json:"body"`
	Attributes           []otlpAttr `json:"attributes,omitempty"`
	TraceID              string     `json:"traceId,omitempty"`
	SpanID               string     `json:"spanId,omitempty"`
}

// NewOTLPCore starts a background exporter posting to <endpoint>/v1/logs
func NewOTLPCore(cfg *Config, level zapcore.LevelEnabler) *OTLPCore {
	endpoint := cfg.OTLPEndpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	interval := cfg.BatchInterval
	if interval <= 0 {
		interval = time.Second
	}
	timeout := cfg.OTLPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &otlpSink{
		endpoint:    strings.TrimSuffix(endpoint, "/") + "/v1/logs",
		serviceName: cfg.ServiceName,
		client:      &http.Client{Timeout: timeout},
		batchSize:   batch,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go s.run(interval)

	return &OTLPCore{LevelEnabler: level, sink: s}
}

func (c *OTLPCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &OTLPCore{LevelEnabler: c.LevelEnabler, sink: c.sink, fields: merged}
}

func (c *OTLPCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *OTLPCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	rec := otlpRecord{
		TimeUnixNano:         fmt.Sprint(ent.Time.UnixNano()),
		ObservedTimeUnixNano: fmt.Sprint(time.Now().UnixNano()),
		SeverityNumber:       severity(ent.Level),
		SeverityText:         strings.ToUpper(ent.Level.String()),
		Body:                 otlpValue{"stringValue": ent.Message},
	}
	if ent.Caller.Defined {
		rec.Attributes = append(rec.Attributes, otlpAttr{"code.caller", otlpValue{"stringValue": ent.Caller.TrimmedPath()}})
	}
	if ent.LoggerName != "" {
		rec.Attributes = append(rec.Attributes, otlpAttr{"logger", otlpValue{"stringValue": ent.LoggerName}})
	}

	for k, v := range enc.Fields {
		switch k {
		case "trace_id":
			rec.TraceID, _ = v.(string)
		case "span_id":
			rec.SpanID, _ = v.(string)
		default:
			rec.Attributes = append(rec.Attributes, otlpAttr{k, toOTLPValue(v)})
		}
	}

	c.sink.add(rec)
	return nil
}

func (c *OTLPCore) Sync() error {
	c.sink.flush()
	return nil
}

// Close stops the exporter after a final flush
func (c *OTLPCore) Close() error {
	c.sink.once.Do(func() {
		close(c.sink.stop)
		<-c.sink.done
	})
	return nil
}

func (s *otlpSink) add(rec otlpRecord) {
	s.mu.Lock()
	s.pending = append(s.pending, rec)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		go s.flush()
	}
}

func (s *otlpSink) run(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.stop:
			s.flush()
			return
		}
	}
}

func (s *otlpSink) flush() {
	s.mu.Lock()
	records := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(records) == 0 {
		return
	}

	payload := map[string]interface{}{
		"resourceLogs": []interface{}{
			map[string]interface{}{
				"resource": map[string]interface{}{
					"attributes": []otlpAttr{
						{"service.name", otlpValue{"stringValue": s.serviceName}},
						{"service.namespace", otlpValue{"stringValue": "hostel-saas"}},
					},
				},
				"scopeLogs": []interface{}{
					map[string]interface{}{
						"scope":      map[string]string{"name": "go.uber.org/zap"},
						"logRecords": records,
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: encode otlp batch: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// collector down; drop the batch rather than block callers
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "logger: otlp export returned %d\n", resp.StatusCode)
	}
}

func severity(l zapcore.Level) int {
	switch {
	case l <= zapcore.DebugLevel:
		return 5
	case l == zapcore.InfoLevel:
		return 9
	case l == zapcore.WarnLevel:
		return 13
	case l == zapcore.ErrorLevel:
		return 17
	default:
		return 21
	}
}

func toOTLPValue(v interface{}) otlpValue {
	switch t := v.(type) {
	case string:
		return otlpValue{"stringValue": t}
	case bool:
		return otlpValue{"boolValue": t}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return otlpValue{"intValue": fmt.Sprint(t)}
	case float32, float64:
		return otlpValue{"doubleValue": t}
	case time.Duration:
		return otlpValue{"stringValue": t.String()}
	case time.Time:
		return otlpValue{"stringValue": t.Format(time.RFC3339Nano)}
	default:
		if b, err := json.Marshal(t); err == nil {
			return otlpValue{"stringValue": string(b)}
		}
		return otlpValue{"stringValue": fmt.Sprint(t)}
	}
}
