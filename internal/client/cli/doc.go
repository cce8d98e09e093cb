// Package cli provides the interactive gophdocs command-line client.
//
// It wires configuration, local storage, the backend API client, the
// lifecycle coordinators and an interactive REPL. Typical flow: restore the
// saved session or prompt for credentials, start a background connectivity
// watcher, and execute user commands.
//
// Key features:
//   - Login / Logout (session kept in the local database)
//   - Browse documents and their version timelines
//   - Validate a version; view/download only after the user has seen the result
//   - Submit a version for approval or send it back to draft
//   - Approve with a signature stamp, retry a half-finished approval
//   - Reject, archive, delete, compare and upload versions
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
