// Package client talks to the document management backend.
//
// # Overview
//
// The package provides:
//  1. The transport contract (Client) used by the coordinators: document
//     and version reads, version validation, status updates, signature
//     stamps, upload/download and the auth calls.
//  2. HTTPClient, the REST implementation. It injects the bearer access
//     token, refreshes it proactively when its exp claim is close and
//     reactively on 401, tags every request with X-Request-ID, and maps HTTP
//     statuses to sentinel errors.
//  3. InitDatabase/RunMigrations for the local SQLite state of the CLI.
//
// # Response decoding
//
// Each endpoint decodes its body through exactly one typed adapter:
// decodeData for {"data": ...} envelopes and decodeRoot for bare bodies.
// Callers always receive (value, error).
//
// # Errors
//
// ErrUnauthorized, ErrUnavailable, ErrNotFound, ErrConflict and ErrRejected
// are matched with errors.Is. The server's message, when present, is carried
// by *APIError and extracted with Message.
//
// All methods honour context cancellation; a cancelled context aborts the
// underlying request and is returned unwrapped as ctx.Err().
package client
