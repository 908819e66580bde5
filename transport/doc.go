// Package transport ships the form-POST HTTP implementation of the
// goDispatch Transport interface.
//
// One command becomes one request against a single API endpoint: parameters
// are form-encoded with the command name, the response body is decoded as a
// jsonCode envelope. The client enforces no retry or recovery policy of its
// own — that all lives in the dispatch layer above.
package transport
