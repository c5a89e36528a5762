// Package cli provides the interactive notes command-line client.
//
// It wires configuration, local storage, the backend client, the session
// manager and the note board into a read–eval–print loop. Typical flow:
// restore the previous session, load the notes, and execute user commands.
//
// Key features:
//   - Register / Login / Logout, password reset and change, profile
//   - List, search, add, edit and delete notes
//   - Colour and reorder notes locally
//
// Notes are addressed by the number shown by the last list or search. The
// REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
