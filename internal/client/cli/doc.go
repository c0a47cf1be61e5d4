// Package cli provides the offsync command-line client.
//
// Every command works against the local store first; only sync and daemon
// talk to the remote. Mutations made while offline sit in the outbox until the
// next successful push.
//
// Commands:
//   - album, song: create, update, delete, get, list
//   - message: create, delete, list
//   - sync: a full pass, or a single push or pull of one collection
//   - outbox: pending entries per collection
//   - daemon: reachability watcher plus periodic sync until interrupted
//
// Output is a table on a terminal and JSON otherwise; --format forces either.
package cli
