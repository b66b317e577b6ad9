package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// MessageDB implements repository.MessageRepository over the shared pool.
type MessageDB struct {
	conn *sql.DB
}

// compile-time check that *MessageDB implements repository.MessageRepository
var _ repository.MessageRepository = (*MessageDB)(nil)

// Create inserts a new message, generating its ID and setting sent_at.
//
// Both usernames must reference existing users; the foreign keys on the
// messages table enforce that, and a violation comes back as an
// UnknownUser validation error rather than a 500. The FROM side is the
// authenticated caller so in practice only TO can be unknown, but the
// translation covers both.
func (db *MessageDB) Create(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	msg.SentAt = time.Now().UTC()
	msg.ReadAt = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		msg.ID,
		msg.FromUsername,
		msg.ToUsername,
		msg.Body,
		msg.SentAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.UnknownUser(msg.ToUsername)
		}
		return fmt.Errorf("sqlite: inserting message from %s to %s: %w",
			msg.FromUsername, msg.ToUsername, err)
	}

	return nil
}

// Get retrieves a single message with both participants' profiles
// joined in. Returns apperror.ErrNotFound for an unknown id.
func (db *MessageDB) Get(ctx context.Context, id string) (*model.MessageDetail, error) {
	var d model.MessageDetail

	err := db.conn.QueryRowContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages m
		 JOIN users f ON m.from_username = f.username
		 JOIN users t ON m.to_username = t.username
		 WHERE m.id = ?`,
		id,
	).Scan(
		&d.ID, &d.Body, &d.SentAt, &d.ReadAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %s: %w", id, err)
	}

	return &d, nil
}

// MarkRead records that the message has been read.
//
// The UPDATE is guarded by "read_at IS NULL", so the transition happens
// at most once: the first call wins, any later call (or a concurrent
// duplicate) takes the zero-rows path and reads back the timestamp the
// winner wrote. Neither call errors, and read_at never changes once set.
func (db *MessageDB) MarkRead(ctx context.Context, id string) (time.Time, error) {
	readAt := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL`,
		readAt, id,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: marking message %s read: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: checking mark-read update for %s: %w", id, err)
	}
	if affected > 0 {
		return readAt, nil
	}

	// Either the message doesn't exist or it was already read.
	// Distinguish by reading the row back.
	var existing sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		`SELECT read_at FROM messages WHERE id = ?`, id,
	).Scan(&existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, apperror.NotFound("message", id)
		}
		return time.Time{}, fmt.Errorf("sqlite: reading read_at for message %s: %w", id, err)
	}
	if !existing.Valid {
		// Unreachable unless a concurrent writer cleared read_at, which
		// nothing does.
		return time.Time{}, fmt.Errorf("sqlite: message %s read_at unexpectedly null", id)
	}

	return existing.Time, nil
}
