package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoomID = "123e4567-e89b-12d3-a456-426614174000"

func newTestAuditLogger(sink AuditSink) *AuditLogger {
	cfg := DefaultAuditConfig(sink)
	cfg.FlushInterval = time.Hour
	return NewAuditLogger(cfg, logger.NewNop())
}

func TestExtractResource(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		expectedType string
		expectedID   string
		expectedSub  string
	}{
		{"collection", "/api/rooms", "room", "", ""},
		{"single record", "/api/rooms/" + testRoomID, "room", testRoomID, ""},
		{"status endpoint", "/api/bookings/" + testRoomID + "/status", "booking", testRoomID, "status"},
		{"auth action", "/api/auth/login", "auth", "", "login"},
		{"non-uuid segment", "/api/hostels/my-hostel", "hostel", "", "my-hostel"},
		{"root", "/", "unknown", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, id, sub := extractResource(tt.path)
			assert.Equal(t, tt.expectedType, rt)
			assert.Equal(t, tt.expectedID, id)
			assert.Equal(t, tt.expectedSub, sub)
		})
	}
}

func TestMapAction(t *testing.T) {
	tests := []struct {
		method   string
		sub      string
		expected AuditAction
	}{
		{http.MethodPost, "", AuditActionCreate},
		{http.MethodPut, "", AuditActionUpdate},
		{http.MethodDelete, "", AuditActionDelete},
		{http.MethodPatch, "status", AuditActionStatusChange},
		{http.MethodPost, "login", AuditActionLogin},
		{http.MethodPost, "register", AuditActionRegister},
	}

	for _, tt := range tests {
		t.Run(tt.method+"_"+tt.sub, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapAction(tt.method, tt.sub))
		})
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	in := map[string]interface{}{
		"email":    "owner@sunrise.test",
		"password": "hunter22",
		"nested":   map[string]interface{}{"apiToken": "abc", "name": "x"},
	}

	out := maskSensitiveFields(in, []string{"password", "token"})

	assert.Equal(t, "owner@sunrise.test", out["email"])
	assert.Equal(t, "[REDACTED]", out["password"])
	nested := out["nested"].(map[string]interface{})
	assert.Equal(t, "[REDACTED]", nested["apiToken"])
	assert.Equal(t, "x", nested["name"])
	assert.Equal(t, "hunter22", in["password"], "input must not be mutated")
}

func TestAuditLogger_FlushesOnClose(t *testing.T) {
	sink := &MemoryAuditSink{}
	al := newTestAuditLogger(sink)

	al.Log(&AuditEntry{ID: "a-1", Action: AuditActionCreate})
	al.Log(&AuditEntry{ID: "a-2", Action: AuditActionDelete})
	require.NoError(t, al.Close())

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a-1", entries[0].ID)

	// logging after close is a no-op
	al.Log(&AuditEntry{ID: "late"})
	assert.NoError(t, al.Close())
	assert.Len(t, sink.Entries(), 2)
}

func TestAuditLogger_BufferFullDoesNotBlock(t *testing.T) {
	cfg := DefaultAuditConfig(&MemoryAuditSink{})
	cfg.BufferSize = 1
	cfg.FlushInterval = time.Hour
	al := NewAuditLogger(cfg, logger.NewNop())
	defer al.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			al.Log(&AuditEntry{ID: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a full buffer")
	}
}

func TestAuditMiddleware_RecordsMutation(t *testing.T) {
	sink := &MemoryAuditSink{}
	al := newTestAuditLogger(sink)

	var seenBody string
	router := gin.New()
	router.Use(RequestID(), func(c *gin.Context) {
		c.Set(ContextKeyUserID, "user-1")
		c.Set(ContextKeyRole, "MANAGER")
		c.Set(ContextKeyHostelID, "hostel-a")
		c.Next()
	}, AuditMiddleware(al))
	router.PUT("/api/rooms/:id", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		seenBody = string(b)
		c.Status(http.StatusOK)
	})
	router.GET("/api/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/rooms", func(c *gin.Context) {
		SetAuditResourceID(c, "new-room")
		SetAuditHostelID(c, "hostel-b")
		c.Status(http.StatusCreated)
	})
	router.POST("/api/skip", func(c *gin.Context) {
		SkipAudit(c)
		c.Status(http.StatusOK)
	})

	body := `{"name":"Sea View","password":"nope"}`
	req := httptest.NewRequest(http.MethodPut, "/api/rooms/"+testRoomID, bytes.NewBufferString(body))
	req.Header.Set(HeaderRequestID, "req-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewBufferString(`{}`)))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/skip", nil))

	require.NoError(t, al.Close())
	assert.Equal(t, body, seenBody, "handler must still see the full body")

	entries := sink.Entries()
	require.Len(t, entries, 2, "GET and skipped requests are not audited")

	update := entries[0]
	assert.Equal(t, AuditActionUpdate, update.Action)
	assert.Equal(t, "room", update.ResourceType)
	assert.Equal(t, testRoomID, update.ResourceID)
	assert.Equal(t, "hostel-a", update.HostelID)
	assert.Equal(t, "user-1", update.UserID)
	assert.Equal(t, "MANAGER", update.UserRole)
	assert.Equal(t, "req-7", update.RequestID)
	assert.Equal(t, http.StatusOK, update.Status)
	assert.Equal(t, "[REDACTED]", update.Payload["password"])
	assert.Equal(t, "Sea View", update.Payload["name"])

	create := entries[1]
	assert.Equal(t, AuditActionCreate, create.Action)
	assert.Equal(t, "new-room", create.ResourceID)
	assert.Equal(t, "hostel-b", create.HostelID)
	assert.Equal(t, http.StatusCreated, create.Status)
}
