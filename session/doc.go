// Package session holds the client-side session state consumed by goDispatch:
// sign-in credentials and the current auth token.
//
// # Components
//
//   - [Store] — persistent keyed storage with change-notification callbacks.
//     [MemoryStore] is the in-process implementation; [RedisStore] persists to
//     Redis and relays cross-process writes over a pub/sub channel.
//   - [Mirror] — subscription-fed read-only copies of the credentials and the
//     auth token, read on every outgoing request.
//
// # Write path invariant
//
// Subscribers registered on a Store instance are notified synchronously before
// a local write returns. The reauthentication coordinator relies on this: the
// token merged at the end of a successful exchange must be visible to the
// replay that immediately follows. The Redis pub/sub channel only covers
// writes performed by other processes and may lag.
//
// # What this package must NOT do
//
//   - Import goDispatch or any sibling package.
//   - Decide when the token changes — the token slot is written only by the
//     reauthentication coordinator or an external sign-in flow.
package session
