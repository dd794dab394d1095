// Package storage declares persistence contracts for state the web process
// keeps on its own host.
//
// Only browser credentials live here. User records stay with the backend.
package storage
