// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores operate over store.DBTX so they run equally well
// on a pooled connection or inside a transaction.
package postgres
