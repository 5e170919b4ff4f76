// Package cipherkit exposes a handle-based interface to a symmetric-cipher
// engine. A caller selects an Algorithm and a Mode from the catalogs, opens a
// Session (optionally with Flags), configures key, IV or counter state, and
// performs encryption and decryption through that session until it is closed.
//
// Every session owns exactly one engine context for its whole lifetime.
// Misuse (wrong buffer sizes, operations before SetKey, tag handling out of
// order) surfaces as typed errors carrying the engine's status code, never as
// silent corruption. Tag verification failures are distinguishable from every
// other failure via ErrAuthentication.
//
// Sessions are not safe for concurrent use; serialize access externally or
// use one session per goroutine.
package cipherkit
