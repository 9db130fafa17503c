// Package cli provides the interactive allerlog command-line client.
//
// It wires configuration, the local snapshot database, the authenticated API
// client, and an interactive REPL that keeps working against the snapshot
// when the server is unreachable. Typical flow: prompt for credentials,
// start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Login / Register / Logout
//   - Add / Edit / Delete journal entries with optimistic settlement
//   - List entries (offline falls back to the last synced snapshot)
//   - Exposure-type catalog management
//   - Aggregated statistics over the journal
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
