package internal

import (
	"fmt"
	"math/rand/v2"
)

type Session struct {
	id int64
}

// GenerateSession creates a new session with a random numeric identifier.
// Each HTTP request gets its own session, which names the request's
// temporary workspace so that concurrent requests never collide.
func GenerateSession() Session {
	return Session{id: rand.Int64N(1_000_000)}
}

// String returns the string representation of the session, equivalent to
// calling ID().
func (s Session) String() string {
	return string(s.ID())
}

// ID returns the session identifier in the format "cdk2git-<number>".
func (s Session) ID() SessionID {
	return SessionID(fmt.Sprintf("cdk2git-%d", s.id))
}
