// ABOUTME: Offline migration utility that upgrades stored users to the belonging-system schema
// ABOUTME: Works on either storage backend with dry-run and backup support

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/config"
	"github.com/abbrubin150-ui/crmhtml/db"
	"github.com/abbrubin150-ui/crmhtml/kv"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/charmbracelet/log"
)

// userStore is the slice of a persister the migration needs.
type userStore interface {
	LoadUsers(ctx context.Context) ([]models.User, error)
	SaveUsers(ctx context.Context, users []models.User) error
}

func main() {
	dbPath := flag.String("db", "", "Path to SQLite database file")
	kvDir := flag.String("kv", "", "Path to Badger directory (instead of -db)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create backup before migration (SQLite only)")
	verbose := flag.Bool("verbose", false, "Log every migrated user")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := config.NewLogger(os.Stderr, level)
	if err != nil {
		log.Fatal("failed to create logger", "err", err)
	}

	if (*dbPath == "") == (*kvDir == "") {
		logger.Fatal("exactly one of -db or -kv is required")
	}

	ctx := context.Background()
	var users userStore
	switch {
	case *dbPath != "":
		database, err := openSQLite(*dbPath, *dryRun, *backup, logger)
		if err != nil {
			logger.Fatal("migration failed", "err", err)
		}
		defer func() { _ = database.Close() }()
		users = db.NewPersister(database)
	default:
		store, err := openBadger(*kvDir, logger)
		if err != nil {
			logger.Fatal("migration failed", "err", err)
		}
		defer func() { _ = store.Close() }()
		users = kv.NewPersister(store)
	}

	n, err := migrate(ctx, users, *dryRun, logger)
	if err != nil {
		logger.Fatal("migration failed", "err", err)
	}
	if *dryRun {
		logger.Info("dry run complete", "would_migrate", n)
		return
	}
	logger.Info("migration completed successfully", "migrated", n)
}

func openSQLite(path string, dryRun, createBackup bool, logger *log.Logger) (*sql.DB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database file does not exist: %s", path)
	}

	database, err := db.OpenDatabase(path)
	if err != nil {
		return nil, err
	}

	if createBackup && !dryRun {
		backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
		logger.Info("creating backup", "path", backupPath)
		// VACUUM INTO captures pages still sitting in the WAL.
		if _, err := database.Exec(`VACUUM INTO ?`, backupPath); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to create backup: %w", err)
		}
	}
	return database, nil
}

// openBadger opens an existing Badger directory and refuses one that holds
// no stored users, so a mistyped -kv path is not silently initialised.
func openBadger(dir string, logger *log.Logger) (*kv.KV, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("badger directory does not exist: %s", dir)
	}

	store, err := kv.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	keys, err := store.Keys(kv.KeyPrefix)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	logger.Debug("found stored collections", "keys", keys)
	if !slices.Contains(keys, kv.KeyUsers) {
		_ = store.Close()
		return nil, fmt.Errorf("no users stored in %s", dir)
	}
	return store, nil
}

// migrate upgrades every stored user and returns how many records changed.
func migrate(ctx context.Context, s userStore, dryRun bool, logger *log.Logger) (int, error) {
	before, err := s.LoadUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load users: %w", err)
	}
	logger.Info("loaded users", "count", len(before))

	prefix := ""
	if dryRun {
		prefix = "[DRY RUN] "
	}

	after := make([]models.User, len(before))
	n := 0
	for i, u := range before {
		migrated, changed := belonging.MigrateUser(u)
		after[i] = migrated
		if !changed {
			continue
		}
		n++
		logger.Debug(prefix+"migrating user", "id", migrated.ID, "name", migrated.Name,
			"role", migrated.Role, "view_mode", migrated.ViewMode)
	}

	if n == 0 {
		logger.Info("all users already up to date")
		return 0, nil
	}
	if dryRun {
		return n, nil
	}
	if err := s.SaveUsers(ctx, after); err != nil {
		return 0, fmt.Errorf("failed to save users: %w", err)
	}
	return n, nil
}
