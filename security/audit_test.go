package security

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newCapturedAuditor(t *testing.T, enabled bool) (*Auditor, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewAuditor(logger, enabled), &buf
}

func TestAuditorLogsEvent(t *testing.T) {
	auditor, buf := newCapturedAuditor(t, true)

	auditor.LogClientAuthenticated("client-1", "password", "203.0.113.7")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("audit output is not JSON: %v", err)
	}
	if entry["event_type"] != EventClientAuthenticated {
		t.Errorf("event_type = %v", entry["event_type"])
	}
	if entry["client_id"] != "client-1" {
		t.Errorf("client_id = %v", entry["client_id"])
	}
	if entry["ip_address"] != "203.0.113.7" {
		t.Errorf("ip_address = %v", entry["ip_address"])
	}
}

func TestAuditorHashesUserID(t *testing.T) {
	auditor, buf := newCapturedAuditor(t, true)

	auditor.LogTokenIssued("alice@example.com", "client-1", "password", "read")

	out := buf.String()
	if strings.Contains(out, "alice@example.com") {
		t.Error("raw user ID leaked into the audit log")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	hash, _ := entry["user_id_hash"].(string)
	if len(hash) != 16 {
		t.Errorf("user_id_hash = %q, want a 16-character hash", hash)
	}
}

func TestAuditorDisabled(t *testing.T) {
	auditor, buf := newCapturedAuditor(t, false)

	auditor.LogAuthFailure("u", "c", "ip", "reason")
	if buf.Len() != 0 {
		t.Errorf("disabled auditor wrote output: %s", buf.String())
	}
}

func TestAuditorNilSafe(t *testing.T) {
	var auditor *Auditor
	// Must not panic.
	auditor.LogEvent(Event{Type: EventTokenRevoked})
	auditor.LogTokenRevoked("u", "c", "access_token")
}

func TestHashForLogging(t *testing.T) {
	if got := hashForLogging(""); got != "<empty>" {
		t.Errorf("hashForLogging(\"\") = %q", got)
	}
	a := hashForLogging("value-a")
	b := hashForLogging("value-b")
	if a == b {
		t.Error("distinct values hashed identically")
	}
	if a != hashForLogging("value-a") {
		t.Error("hash is not deterministic")
	}
}
