// Package notes merges server-owned notes with client-owned display
// preferences into the ordered list the user sees.
//
// A Board holds the current display list. Every fetch and every local
// mutation replaces it as a whole. Colour and position never reach the
// server: they live in the preference store, keyed by note UUID.
//
// Loads are stamped with a generation. A load that resolves after a newer
// load started, or after any local mutation committed, is dropped with
// ErrStaleLoad so that an old response cannot overwrite newer state.
package notes
