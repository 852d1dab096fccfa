// Package sqlite provides the primary key-value store: a single table in an
// on-disk SQLite database that outlives the process.
package sqlite
