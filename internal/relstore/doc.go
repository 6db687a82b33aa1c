// Package relstore implements the member.Store contract on SQLite.
//
// This is the relational side of the migration pair: members are rows
// with auto-increment integer surrogate keys. Identifiers arriving as
// strings are parsed strictly; a non-numeric id is rejected with
// InvalidIdentifier rather than being treated as absent.
package relstore
