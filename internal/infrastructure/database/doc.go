// Package database opens the SQLite file holding fcsctl's local state and
// applies the embedded schema migrations.
//
// The database is a local audit trail only: the FCS server remains the
// source of truth for device state. It currently stores the dispatch
// history written by internal/history.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql, and are registered by importing the
// migrations package.
package database
