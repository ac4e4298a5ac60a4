// Package store defines the persistence interfaces for the annotation
// platform, the DBTX abstraction that lets implementations run over either
// a database connection or a transaction, and the sentinel errors shared by
// all implementations.
package store
