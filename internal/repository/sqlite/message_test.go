package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
)

// newTestMessageDB seeds two users and returns the message view.
func newTestMessageDB(t *testing.T) *MessageDB {
	t.Helper()
	db := newTestDB(t)
	createTestUser(t, db.Users(), "alice")
	createTestUser(t, db.Users(), "bob")
	return db.Messages()
}

func sendTestMessage(t *testing.T, m *MessageDB, from, to, body string) *model.Message {
	t.Helper()
	msg := &model.Message{FromUsername: from, ToUsername: to, Body: body}
	if err := m.Create(context.Background(), msg); err != nil {
		t.Fatalf("failed to create test message: %v", err)
	}
	return msg
}

func TestMessageCreate(t *testing.T) {
	m := newTestMessageDB(t)

	msg := sendTestMessage(t, m, "alice", "bob", "hi")

	if msg.ID == "" {
		t.Error("Create() did not set ID")
	}
	if msg.SentAt.IsZero() {
		t.Error("Create() did not set SentAt")
	}
	if msg.ReadAt != nil {
		t.Error("Create() set ReadAt on a new message")
	}

	// IDs must be unique across messages.
	second := sendTestMessage(t, m, "alice", "bob", "hi again")
	if second.ID == msg.ID {
		t.Error("two messages share an ID")
	}
}

func TestMessageCreate_UnknownRecipient(t *testing.T) {
	m := newTestMessageDB(t)

	msg := &model.Message{FromUsername: "alice", ToUsername: "ghost", Body: "hello?"}
	err := m.Create(context.Background(), msg)
	if err == nil {
		t.Fatal("Create() accepted a message to an unregistered user")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() unknown recipient error = %v, want ErrValidation", err)
	}
}

// PRAGMA foreign_keys is per-connection, so enforcement must come from
// the DSN, not a one-shot Exec through the pool. Holding the first
// pooled connection forces the insert onto a freshly opened second one,
// which must reject the bad reference just the same.
func TestMessageCreate_ForeignKeysOnEveryConnection(t *testing.T) {
	base := newTestDB(t)
	createTestUser(t, base.Users(), "alice")

	ctx := context.Background()
	pinned, err := base.conn.Conn(ctx)
	if err != nil {
		t.Fatalf("pinning first connection: %v", err)
	}
	defer pinned.Close()

	msg := &model.Message{FromUsername: "alice", ToUsername: "ghost", Body: "hello?"}
	err = base.Messages().Create(ctx, msg)
	if err == nil {
		t.Fatal("Create() accepted an unknown recipient on a second pooled connection")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() unknown recipient error = %v, want ErrValidation", err)
	}
}

// The data model has never forbidden messaging yourself.
func TestMessageCreate_SelfMessage(t *testing.T) {
	m := newTestMessageDB(t)

	msg := sendTestMessage(t, m, "alice", "alice", "note to self")

	got, err := m.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.FromUser.Username != "alice" || got.ToUser.Username != "alice" {
		t.Errorf("self message participants = %s → %s, want alice → alice",
			got.FromUser.Username, got.ToUser.Username)
	}
}

func TestMessageGet(t *testing.T) {
	m := newTestMessageDB(t)
	msg := sendTestMessage(t, m, "alice", "bob", "hi")

	got, err := m.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.ID != msg.ID || got.Body != "hi" {
		t.Errorf("Get() = %+v, want id %s body %q", got, msg.ID, "hi")
	}
	if got.FromUser.Username != "alice" || got.FromUser.FirstName != "Test" {
		t.Errorf("Get() FromUser = %+v, want alice's profile", got.FromUser)
	}
	if got.ToUser.Username != "bob" {
		t.Errorf("Get() ToUser = %+v, want bob's profile", got.ToUser)
	}
	if got.ReadAt != nil {
		t.Error("Get() unread message has non-nil ReadAt")
	}
}

func TestMessageGet_NotFound(t *testing.T) {
	m := newTestMessageDB(t)

	_, err := m.Get(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() unknown id error = %v, want ErrNotFound", err)
	}
}

func TestMarkRead(t *testing.T) {
	m := newTestMessageDB(t)
	msg := sendTestMessage(t, m, "alice", "bob", "hi")

	readAt, err := m.MarkRead(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if readAt.IsZero() {
		t.Fatal("MarkRead() returned zero timestamp")
	}

	got, err := m.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ReadAt == nil {
		t.Fatal("Get() after MarkRead() shows nil ReadAt")
	}
	if !got.ReadAt.Equal(readAt) {
		t.Errorf("stored ReadAt %v != returned %v", got.ReadAt, readAt)
	}
}

// Re-marking is a no-op: the second call returns the first call's
// timestamp and read_at never changes once set.
func TestMarkRead_Idempotent(t *testing.T) {
	m := newTestMessageDB(t)
	msg := sendTestMessage(t, m, "alice", "bob", "hi")

	first, err := m.MarkRead(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("MarkRead() first call error = %v", err)
	}

	second, err := m.MarkRead(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("MarkRead() second call error = %v", err)
	}
	if !second.Equal(first) {
		t.Errorf("second MarkRead() = %v, want original %v", second, first)
	}

	got, err := m.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ReadAt == nil {
		t.Fatal("message reverted to unread")
	}
	if !got.ReadAt.Equal(first) {
		t.Errorf("stored ReadAt %v != first mark %v", got.ReadAt, first)
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	m := newTestMessageDB(t)

	_, err := m.MarkRead(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("MarkRead() unknown id error = %v, want ErrNotFound", err)
	}
}
