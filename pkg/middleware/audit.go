package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AuditAction is the kind of mutation being recorded
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionUpdate       AuditAction = "update"
	AuditActionDelete       AuditAction = "delete"
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionLogin        AuditAction = "login"
	AuditActionRegister     AuditAction = "register"
)

const (
	ContextKeyAuditResourceID = "audit_resource_id"
	ContextKeyAuditHostelID   = "audit_hostel_id"
	ContextKeyAuditSkip       = "audit_skip"
)

// AuditEntry is one row of the audit trail
type AuditEntry struct {
	ID           string                 `json:"id"`
	HostelID     string                 `json:"hostelId,omitempty"`
	UserID       string                 `json:"userId,omitempty"`
	UserRole     string                 `json:"userRole,omitempty"`
	Action       AuditAction            `json:"action"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceId,omitempty"`
	Method       string                 `json:"method"`
	Path         string                 `json:"path"`
	Status       int                    `json:"status"`
	IPAddress    string                 `json:"ipAddress,omitempty"`
	UserAgent    string                 `json:"userAgent,omitempty"`
	RequestID    string                 `json:"requestId,omitempty"`
	TraceID      string                 `json:"traceId,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// AuditSink persists batches of entries
type AuditSink interface {
	WriteAudit(ctx context.Context, entries []*AuditEntry) error
}

// AuditConfig holds configuration for the audit middleware
type AuditConfig struct {
	Sink          AuditSink
	BufferSize    int
	FlushInterval time.Duration
	BatchSize     int
	// SkipPaths are never audited
	SkipPaths []string
	// Only mutating methods are audited unless overridden
	AuditMethods    []string
	MaxBodySize     int
	SensitiveFields []string
}

// DefaultAuditConfig returns default configuration writing to sink
func DefaultAuditConfig(sink AuditSink) *AuditConfig {
	return &AuditConfig{
		Sink:            sink,
		BufferSize:      1000,
		FlushInterval:   5 * time.Second,
		BatchSize:       100,
		SkipPaths:       []string{"/health", "/ready", "/metrics"},
		AuditMethods:    []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		MaxBodySize:     10 * 1024,
		SensitiveFields: []string{"password", "token", "secret"},
	}
}

// AuditLogger buffers entries and flushes them from a single worker
type AuditLogger struct {
	config  *AuditConfig
	log     *logger.Logger
	buffer  chan *AuditEntry
	wg      sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
}

// NewAuditLogger starts the background flusher
func NewAuditLogger(config *AuditConfig, log *logger.Logger) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if log == nil {
		log = logger.Get()
	}

	al := &AuditLogger{
		config: config,
		log:    log.Named("audit"),
		buffer: make(chan *AuditEntry, config.BufferSize),
	}

	al.wg.Add(1)
	go al.worker()

	return al
}

// Log enqueues an entry without blocking. Entries are dropped when the buffer is full.
func (al *AuditLogger) Log(entry *AuditEntry) {
	al.closeMu.RLock()
	defer al.closeMu.RUnlock()
	if al.closed {
		return
	}

	select {
	case al.buffer <- entry:
	default:
		al.log.Warn("audit buffer full, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("resource_type", entry.ResourceType))
	}
}

// Close drains the buffer and waits for the final flush
func (al *AuditLogger) Close() error {
	al.closeMu.Lock()
	if al.closed {
		al.closeMu.Unlock()
		return nil
	}
	al.closed = true
	close(al.buffer)
	al.closeMu.Unlock()

	al.wg.Wait()
	return nil
}

func (al *AuditLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEntry, 0, al.config.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		al.flush(batch)
		batch = make([]*AuditEntry, 0, al.config.BatchSize)
	}

	for {
		select {
		case entry, ok := <-al.buffer:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= al.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (al *AuditLogger) flush(entries []*AuditEntry) {
	if al.config.Sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := al.config.Sink.WriteAudit(ctx, entries); err != nil {
		al.log.Error("failed to write audit entries", zap.Int("count", len(entries)), zap.Error(err))
	}
}

// LogAuditSink writes entries to the structured log
type LogAuditSink struct {
	Log *logger.Logger
}

func (s LogAuditSink) WriteAudit(_ context.Context, entries []*AuditEntry) error {
	for _, e := range entries {
		s.Log.Info("audit",
			zap.String("audit_id", e.ID),
			zap.String("hostel_id", e.HostelID),
			zap.String("user_id", e.UserID),
			zap.String("action", string(e.Action)),
			zap.String("resource_type", e.ResourceType),
			zap.String("resource_id", e.ResourceID),
			zap.Int("status", e.Status),
			zap.String("request_id", e.RequestID),
		)
	}
	return nil
}

// MemoryAuditSink collects entries in memory
type MemoryAuditSink struct {
	mu      sync.Mutex
	entries []*AuditEntry
}

func (s *MemoryAuditSink) WriteAudit(_ context.Context, entries []*AuditEntry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entries...)
	s.mu.Unlock()
	return nil
}

// Entries returns a copy of the collected entries
func (s *MemoryAuditSink) Entries() []*AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AuditMiddleware records successful and failed mutations after the handler runs
func AuditMiddleware(al *AuditLogger) gin.HandlerFunc {
	config := al.config
	methods := make(map[string]struct{}, len(config.AuditMethods))
	for _, m := range config.AuditMethods {
		methods[m] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := methods[c.Request.Method]; !ok {
			c.Next()
			return
		}
		for _, p := range config.SkipPaths {
			if matchPath(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		var payload map[string]interface{}
		if c.Request.Body != nil && config.MaxBodySize > 0 {
			raw, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(config.MaxBodySize)+1))
			if err == nil {
				rest, _ := io.ReadAll(c.Request.Body)
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), bytes.NewReader(rest)))
				if len(raw) <= config.MaxBodySize && json.Unmarshal(raw, &payload) == nil {
					payload = maskSensitiveFields(payload, config.SensitiveFields)
				}
			}
		}

		startedAt := time.Now().UTC()
		c.Next()

		if skip := c.GetBool(ContextKeyAuditSkip); skip {
			return
		}

		resourceType, resourceID, sub := extractResource(c.Request.URL.Path)
		entry := &AuditEntry{
			ID:           uuid.NewString(),
			Action:       mapAction(c.Request.Method, sub),
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			RequestID:    GetRequestID(c),
			Payload:      payload,
			CreatedAt:    startedAt,
		}

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			entry.TraceID = sc.TraceID().String()
		}
		entry.UserID, _ = GetUserID(c)
		entry.UserRole, _ = GetRole(c)
		entry.HostelID, _ = GetHostelID(c)

		// handlers know the owning hostel and new ids better than the path does
		if v := c.GetString(ContextKeyAuditHostelID); v != "" {
			entry.HostelID = v
		}
		if v := c.GetString(ContextKeyAuditResourceID); v != "" {
			entry.ResourceID = v
		}

		al.Log(entry)
	}
}

// extractResource maps /api/rooms/<id>/status to ("room", "<id>", "status")
func extractResource(path string) (resourceType, resourceID, sub string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return "unknown", "", ""
	}

	resourceType = strings.TrimSuffix(parts[0], "s")
	if len(parts) > 1 {
		if _, err := uuid.Parse(parts[1]); err == nil {
			resourceID = parts[1]
			if len(parts) > 2 {
				sub = parts[2]
			}
		} else {
			sub = parts[1]
		}
	}
	return resourceType, resourceID, sub
}

func mapAction(method, sub string) AuditAction {
	switch sub {
	case "login":
		return AuditActionLogin
	case "register":
		return AuditActionRegister
	case "status":
		return AuditActionStatusChange
	}

	switch method {
	case http.MethodPost:
		return AuditActionCreate
	case http.MethodDelete:
		return AuditActionDelete
	default:
		return AuditActionUpdate
	}
}

func matchPath(path, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	return path == pattern
}

func maskSensitiveFields(data map[string]interface{}, sensitive []string) map[string]interface{} {
	if data == nil {
		return nil
	}

	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		lk := strings.ToLower(k)
		masked := false
		for _, s := range sensitive {
			if strings.Contains(lk, s) {
				out[k] = "[REDACTED]"
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = maskSensitiveFields(nested, sensitive)
		} else {
			out[k] = v
		}
	}
	return out
}

// SetAuditResourceID records the id of a resource created by the handler
func SetAuditResourceID(c *gin.Context, id string) {
	c.Set(ContextKeyAuditResourceID, id)
}

// SetAuditHostelID records the hostel a mutation was applied to
func SetAuditHostelID(c *gin.Context, hostelID string) {
	c.Set(ContextKeyAuditHostelID, hostelID)
}

// SkipAudit marks the current request to skip audit logging
func SkipAudit(c *gin.Context) {
	c.Set(ContextKeyAuditSkip, true)
}
