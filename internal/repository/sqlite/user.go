package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// UserDB implements repository.UserRepository over the shared pool.
type UserDB struct {
	conn *sql.DB
}

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// Create inserts a new user record.
//
// join_at and last_login_at are both set to now: registering logs the
// user in, so their first login timestamp is their join timestamp. The
// PRIMARY KEY on username makes duplicate registration a constraint
// failure, which we translate to apperror.Conflict — the store enforces
// uniqueness, the caller just reacts to it.
func (db *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.JoinedAt = now
	user.LastLoginAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinedAt,
		user.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// Get retrieves a user by username, password hash included. Callers
// that serialize users rely on the model's json:"-" tag to keep the
// hash out of responses.
func (db *UserDB) Get(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.JoinedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}

	return &u, nil
}

// List returns every user's public profile, ordered by username.
func (db *UserDB) List(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username, first_name, last_name, phone
		 FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.UserProfile{}
	for rows.Next() {
		var p model.UserProfile
		if err := rows.Scan(&p.Username, &p.FirstName, &p.LastName, &p.Phone); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// TouchLogin sets last_login_at to now for the given user. This is the
// only statement anywhere that writes last_login_at.
func (db *UserDB) TouchLogin(ctx context.Context, username string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE username = ?`,
		time.Now().UTC(), username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating last login for %s: %w", username, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking last login update for %s: %w", username, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", username)
	}

	return nil
}

// MessagesFrom returns the messages a user has sent, each joined with
// the recipient's profile, oldest first.
func (db *UserDB) MessagesFrom(ctx context.Context, username string) ([]model.SentMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON m.to_username = u.username
		 WHERE m.from_username = ?
		 ORDER BY m.sent_at`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages from %s: %w", username, err)
	}
	defer rows.Close()

	messages := []model.SentMessage{}
	for rows.Next() {
		var m model.SentMessage
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning sent message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sent message rows: %w", err)
	}

	return messages, nil
}

// MessagesTo returns the messages a user has received, each joined with
// the sender's profile, oldest first.
func (db *UserDB) MessagesTo(ctx context.Context, username string) ([]model.ReceivedMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON m.from_username = u.username
		 WHERE m.to_username = ?
		 ORDER BY m.sent_at`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages to %s: %w", username, err)
	}
	defer rows.Close()

	messages := []model.ReceivedMessage{}
	for rows.Next() {
		var m model.ReceivedMessage
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning received message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating received message rows: %w", err)
	}

	return messages, nil
}
