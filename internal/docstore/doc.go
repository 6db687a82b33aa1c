// Package docstore implements the member.Store contract on BadgerDB.
//
// This is the document side of the migration pair: members are JSON
// documents under string keys, with a secondary index from email to
// document key maintained in the same transaction as every write.
// Any string is an acceptable identifier; the adapter only generates
// its own key (a UUID) when the incoming member carries none, which
// happens solely when the document store is the primary writer.
package docstore
