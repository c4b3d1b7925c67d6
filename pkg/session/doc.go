// Package session persists run transcripts as JSONL files, one per session.
//
// Invariants:
//   - Session IDs are validated and path-safe.
//   - Writes to the same transcript are serialized.
//   - A transcript is append-only; Prune removes whole files.
//
// Usage:
//
//	store, _ := session.NewStore(afero.NewOsFs(), "/tmp/taskpilot/sessions")
//	_ = store.Append(ctx, id, session.Entry{Kind: session.EntryTask, Content: "build X"})
//	entries, _ := store.Load(id)
//	_ = entries
package session
