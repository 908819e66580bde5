package session

import "context"

// Credentials is the immutable sign-in snapshot used by the Authenticate
// exchange. Password is the partner user secret in partner deployments.
type Credentials struct {
	Login    string
	Password string
}

// ChangeKind identifies which slot of the store a change notification covers.
type ChangeKind uint8

const (
	// ChangeAuthToken is an exported constant or variable used by the session store.
	ChangeAuthToken ChangeKind = iota
	// ChangeCredentials is an exported constant or variable used by the session store.
	ChangeCredentials
)

// Change is delivered to subscribers after a store write.
type Change struct {
	Kind        ChangeKind
	AuthToken   string
	Credentials Credentials
}

// Store defines a public type used by goDispatch APIs.
//
// Store implementations must notify local subscribers synchronously before a
// write returns (see package doc) and must be safe for concurrent use.
type Store interface {
	// Credentials returns the stored sign-in credentials. ok is false when no
	// credentials have ever been stored.
	Credentials(ctx context.Context) (creds Credentials, ok bool, err error)

	// AuthToken returns the current auth token. ok is false when no session
	// exists yet.
	AuthToken(ctx context.Context) (token string, ok bool, err error)

	// SetCredentials replaces the credentials slot.
	SetCredentials(ctx context.Context, creds Credentials) error

	// MergeAuthToken writes a fresh auth token into the token slot, visible to
	// all current and future readers.
	MergeAuthToken(ctx context.Context, token string) error

	// Subscribe registers fn for change notifications and returns a cancel
	// function. fn must not block.
	Subscribe(fn func(Change)) (cancel func())

	Close() error
}
