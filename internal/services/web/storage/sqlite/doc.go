// Package sqlite provides the server-side credential store backed by SQLite.
package sqlite
