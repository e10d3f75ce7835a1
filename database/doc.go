// Package database wires item repositories to their backends.
//
// Connect hides the backend switch (PostgreSQL or SQLite), the bounded
// connect-retry loop used at service startup, and the schema probe that
// initializes the item table on first run.
package database
