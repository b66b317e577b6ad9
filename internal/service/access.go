package service

import "github.com/sakif/messagely/internal/model"

// AccessGuard decides per-message permissions. It holds no state — the
// decision is a pure function of the actor and the message — but keeping
// it as a named component means the rules live in exactly one place and
// get tested in isolation.
//
// ORDERING CONTRACT:
// Callers must look the message up first and only then consult the
// guard. A nonexistent message is NotFound for everyone; answering
// Forbidden for an id that doesn't exist would leak that it exists
// for somebody.
type AccessGuard struct{}

// CanView reports whether actor may see the message: true iff they are
// its sender or its recipient.
func (AccessGuard) CanView(actor string, msg *model.MessageDetail) bool {
	return actor == msg.FromUser.Username || actor == msg.ToUser.Username
}

// CanMarkRead reports whether actor may mark the message read: only the
// recipient. The sender seeing "read" is a signal from the recipient,
// so the sender cannot fabricate it.
func (AccessGuard) CanMarkRead(actor string, msg *model.MessageDetail) bool {
	return actor == msg.ToUser.Username
}
