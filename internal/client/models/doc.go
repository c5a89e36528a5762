// Package models defines the records exchanged with the notes backend and
// the client-side display types built from them.
package models
