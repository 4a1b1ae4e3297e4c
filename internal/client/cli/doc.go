// Package cli provides the interactive messagely command-line client.
//
// It wires configuration and the HTTP API client into a REPL. Commands
// that need an account (users, me, inbox, outbox, show, send, read)
// require a prior register or login in the same session; the token is kept
// in memory only.
package cli
