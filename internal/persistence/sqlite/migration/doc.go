// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files are named {version}_{description}.sql (for example
// "001_sessions.sql") and are read from an fs.FS, usually an embedded
// directory. Applied versions are tracked in a schema_migrations table so each
// file runs once, inside its own transaction.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewScanner(schemaFS, "schema"), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
