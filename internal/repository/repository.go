// Package repository persists tenant credentials.
//
// Each store has an in-memory implementation, used when no database is
// configured, and a PostgreSQL one built on pgxpool.
package repository
