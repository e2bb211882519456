// ABOUTME: Entry point for the CRM CLI, TUI and MCP server
// ABOUTME: Loads configuration, opens the configured backend and routes to a command
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/abbrubin150-ui/crmhtml/cli"
	"github.com/abbrubin150-ui/crmhtml/config"
	"github.com/abbrubin150-ui/crmhtml/db"
	"github.com/abbrubin150-ui/crmhtml/kv"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/abbrubin150-ui/crmhtml/tui"
	"github.com/charmbracelet/log"
)

const version = "0.2.0"

type command func(s *store.Store, args []string) error

// commands maps "<group> <subcommand>" to its handler.
var commands = map[string]map[string]command{
	"users": {
		"list":   cli.UsersListCommand,
		"add":    cli.UsersAddCommand,
		"login":  cli.UsersLoginCommand,
		"preset": cli.UsersPresetCommand,
		"role":   cli.UsersRoleCommand,
	},
	"view": {
		"modes":  cli.ViewModesCommand,
		"switch": cli.ViewSwitchCommand,
		"show":   cli.ViewShowCommand,
	},
	"perm": {
		"check": cli.PermCheckCommand,
		"show":  cli.PermShowCommand,
	},
	"contacts": {
		"add":  cli.ContactsAddCommand,
		"list": cli.ContactsListCommand,
	},
	"meetings": {
		"add":  cli.MeetingsAddCommand,
		"list": cli.MeetingsListCommand,
	},
	"tasks": {
		"add":  cli.TasksAddCommand,
		"list": cli.TasksListCommand,
	},
	"notify": {
		"list":       cli.NotifyListCommand,
		"dismiss":    cli.NotifyDismissCommand,
		"undismiss":  cli.NotifyUndismissCommand,
		"done":       cli.NotifyDoneCommand,
		"reschedule": cli.NotifyRescheduleCommand,
		"clear":      cli.NotifyClearCommand,
	},
	"viz": {
		"scope": cli.VizScopeCommand,
	},
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "SQLite database path (default: $XDG_DATA_HOME/crmhtml/crm.db)")
	backend := flag.String("backend", "", "Storage backend: sqlite or badger")
	user := flag.String("user", "", "Sign in as this user id or email for this run only")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("crmhtml version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *user != "" {
		cfg.User = *user
	}
	logger := cfg.Logger()

	persister, closer, err := openBackend(cfg)
	if err != nil {
		logger.Fatal("failed to open storage", "backend", cfg.Backend, "err", err)
	}

	s, err := store.Open(ctx, persister, store.Options{Logger: logger, Notify: cfg.Notify()})
	if err != nil {
		_ = closer.Close()
		logger.Fatal("failed to load CRM data", "err", err)
	}

	err = run(ctx, s, cfg, logger, args)
	_ = closer.Close()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func openBackend(cfg *config.Config) (store.Persister, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		k, err := kv.Open(cfg.KVDir)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewPersister(k), k, nil
	case config.BackendSQLite:
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db.NewPersister(database), database, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func run(ctx context.Context, s *store.Store, cfg *config.Config, logger *log.Logger, args []string) error {
	if cfg.User != "" {
		u := cli.FindUser(s, cfg.User)
		if u == nil {
			return fmt.Errorf("%w: %s", store.ErrUserNotFound, cfg.User)
		}
		if err := s.Dispatch(ctx, store.SetCurrentUser{UserID: u.ID, Session: true}); err != nil {
			return err
		}
	}

	group, rest := args[0], args[1:]
	switch group {
	case "mcp":
		return cli.MCPCommand(s, logger, version, cfg.RefreshSchedule)
	case "tui":
		return tui.Run(s)
	}

	subcommands, ok := commands[group]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command: %s", group)
	}
	if len(rest) == 0 {
		printUsage()
		return fmt.Errorf("%s requires a subcommand", group)
	}
	cmd, ok := subcommands[rest[0]]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown %s command: %s", group, rest[0])
	}

	logger.Debug("running command", "group", group, "command", rest[0], "backend", cfg.Backend)
	return cmd(s, rest[1:])
}

func printUsage() {
	fmt.Printf(`crmhtml v%s - role-scoped CRM with notifications

USAGE:
  crmhtml [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       SQLite database path (env CRM_DB_PATH)
  --backend <name>       sqlite or badger (env CRM_BACKEND, default sqlite)
  --user <id|email>      Sign in for this run only (env CRM_USER)

COMMANDS:
  tui                    Interactive notification panel
  mcp                    Start MCP server on stdio

  users list             List users
  users add              Add a user (--name, --email, --role, --team)
  users login <id|email> Sign in
  users preset           Set a filter preset (--id, --owners, --teams, --locations, --project-types)
  users role             Change a user's role (--id, --role)

  view modes             List view modes for the signed-in user
  view switch <mode>     Switch view mode (my_data, team_data, regional_data, project_type_data, all_data)
  view show              Show the dashboard for the current view

  perm check <resource> <action>  Check a permission
  perm show              Show the permission matrix

  contacts add|list      Manage contacts
  meetings add|list      Manage meetings
  tasks add|list         Manage tasks

  notify list            Show the notification feed (--dismissed for dismissal keys)
  notify dismiss <kind> <id>
  notify undismiss <kind> <id>
  notify done <kind> <id>
  notify reschedule [--time HH:MM] <kind> <id> <YYYY-MM-DD>
  notify clear           Dismiss every visible notification

  viz scope              Generate role/view-mode graph (--output <file>)

ENVIRONMENT:
  CRM_KV_DIR, CRM_LOG_LEVEL, CRM_UPCOMING_DAYS, CRM_FOLLOWUP_DAYS,
  CRM_REFRESH_SCHEDULE (cron spec, default "@every 1m")
  Values may also come from a .env file in the working directory.
`, version)
}
