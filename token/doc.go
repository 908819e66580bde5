// Package token inspects auth tokens without verifying them.
//
// The dispatch layer treats the session token as opaque; servers that issue
// JWTs let the client peek at exp and start recovery before burning a network
// round-trip on a request that is guaranteed a 407. Non-JWT tokens simply
// report no expiry and the proactive path stays out of the way.
//
// Inspection never validates signatures — a forged exp only changes when the
// client re-authenticates, never whether a token is accepted.
package token
