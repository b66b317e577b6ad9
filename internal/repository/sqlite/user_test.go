package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
)

// newTestDB returns a fresh in-memory database. ":memory:" keeps tests
// fast and isolated; the DB vanishes on close.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// newTestUserDB returns the user view of a fresh in-memory database.
func newTestUserDB(t *testing.T) *UserDB {
	t.Helper()
	return newTestDB(t).Users()
}

// createTestUser creates a user and fails the test on error. The
// password column gets a fixed placeholder — repository tests don't
// care about bcrypt.
func createTestUser(t *testing.T, db *UserDB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$placeholderplaceholderplace",
		FirstName:    "Test",
		LastName:     "User",
		Phone:        "+15550000000",
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestUserDB(t)

	user := &model.User{
		Username:     "alice",
		PasswordHash: "hash",
		FirstName:    "Alice",
		LastName:     "Liddell",
		Phone:        "+15551234567",
	}

	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.JoinedAt.IsZero() {
		t.Error("Create() did not set JoinedAt")
	}
	if user.LastLoginAt.IsZero() {
		t.Error("Create() did not set LastLoginAt")
	}
	// Registering counts as the first login.
	if !user.JoinedAt.Equal(user.LastLoginAt) {
		t.Errorf("JoinedAt %v != LastLoginAt %v at creation", user.JoinedAt, user.LastLoginAt)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestUserDB(t)
	createTestUser(t, db, "alice")

	duplicate := &model.User{Username: "alice", PasswordHash: "otherhash"}
	err := db.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() accepted a duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() duplicate error = %v, want ErrConflict", err)
	}

	// The original record is unaffected.
	got, err := db.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.PasswordHash != "$2a$04$placeholderplaceholderplace" {
		t.Error("failed duplicate registration modified the original record")
	}
}

func TestUserGet(t *testing.T) {
	db := newTestUserDB(t)
	created := createTestUser(t, db, "alice")

	got, err := db.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Username != "alice" || got.FirstName != "Test" || got.Phone != created.Phone {
		t.Errorf("Get() = %+v, want fields from %+v", got, created)
	}
	if got.PasswordHash == "" {
		t.Error("Get() did not return the password hash (login needs it)")
	}
}

func TestUserGet_NotFound(t *testing.T) {
	db := newTestUserDB(t)

	_, err := db.Get(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() unknown user error = %v, want ErrNotFound", err)
	}
}

func TestUserList(t *testing.T) {
	db := newTestUserDB(t)
	createTestUser(t, db, "carol")
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")

	users, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("List() returned %d users, want 3", len(users))
	}

	// Ordered by username.
	want := []string{"alice", "bob", "carol"}
	for i, u := range users {
		if u.Username != want[i] {
			t.Errorf("List()[%d].Username = %q, want %q", i, u.Username, want[i])
		}
	}
}

func TestTouchLogin(t *testing.T) {
	db := newTestUserDB(t)
	created := createTestUser(t, db, "alice")

	// Make sure the new timestamp is measurably later.
	time.Sleep(10 * time.Millisecond)

	if err := db.TouchLogin(context.Background(), "alice"); err != nil {
		t.Fatalf("TouchLogin() error = %v", err)
	}

	got, err := db.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.LastLoginAt.After(created.LastLoginAt) {
		t.Errorf("LastLoginAt = %v, want later than %v", got.LastLoginAt, created.LastLoginAt)
	}
	if !got.JoinedAt.Equal(created.JoinedAt) {
		t.Error("TouchLogin() modified JoinedAt")
	}
}

func TestTouchLogin_UnknownUser(t *testing.T) {
	db := newTestUserDB(t)

	err := db.TouchLogin(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("TouchLogin() unknown user error = %v, want ErrNotFound", err)
	}
}

func TestMessagesFromAndTo(t *testing.T) {
	base := newTestDB(t)
	db := base.Users()
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")

	msg := &model.Message{FromUsername: "alice", ToUsername: "bob", Body: "hi"}
	if err := base.Messages().Create(context.Background(), msg); err != nil {
		t.Fatalf("creating message: %v", err)
	}

	from, err := db.MessagesFrom(context.Background(), "alice")
	if err != nil {
		t.Fatalf("MessagesFrom() error = %v", err)
	}
	if len(from) != 1 {
		t.Fatalf("MessagesFrom() returned %d messages, want 1", len(from))
	}
	if from[0].Body != "hi" || from[0].ToUser.Username != "bob" {
		t.Errorf("MessagesFrom()[0] = %+v, want body %q to bob", from[0], "hi")
	}
	if from[0].ReadAt != nil {
		t.Error("unread message has non-nil ReadAt in MessagesFrom")
	}

	to, err := db.MessagesTo(context.Background(), "bob")
	if err != nil {
		t.Fatalf("MessagesTo() error = %v", err)
	}
	if len(to) != 1 {
		t.Fatalf("MessagesTo() returned %d messages, want 1", len(to))
	}
	if to[0].Body != "hi" || to[0].FromUser.Username != "alice" {
		t.Errorf("MessagesTo()[0] = %+v, want body %q from alice", to[0], "hi")
	}

	// Nobody else's listings pick it up.
	if other, _ := db.MessagesTo(context.Background(), "alice"); len(other) != 0 {
		t.Errorf("MessagesTo(alice) returned %d messages, want 0", len(other))
	}
}
