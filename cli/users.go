// ABOUTME: User management CLI commands
// ABOUTME: List, add and sign in users, and edit their roles and filter presets
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/store"
)

// UsersListCommand lists every user with role and view mode.
func UsersListCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("users list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	current := s.CurrentUser()
	w := newTable()
	_, _ = fmt.Fprintln(w, "\tID\tNAME\tEMAIL\tROLE\tVIEW MODE\tTEAM")
	_, _ = fmt.Fprintln(w, "\t--\t----\t-----\t----\t---------\t----")
	for _, u := range s.Users() {
		marker := ""
		if current != nil && current.ID == u.ID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			marker, u.ID, u.Name, orDash(u.Email), u.Role, u.ViewMode, orDash(u.TeamName))
	}
	return w.Flush()
}

// UsersAddCommand creates a user with role defaults.
func UsersAddCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("users add", flag.ContinueOnError)
	name := fs.String("name", "", "User name (required)")
	email := fs.String("email", "", "Email address")
	role := fs.String("role", string(models.RoleSalesRep), "Role")
	team := fs.String("team", "", "Team name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	u := models.User{
		ID:       models.NewID(),
		Name:     *name,
		Email:    *email,
		Role:     models.Role(*role),
		Active:   true,
		TeamName: *team,
	}
	if err := s.Dispatch(context.Background(), store.UpsertUser{User: u}); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Created user: %s (ID: %s)\n", u.Name, u.ID)
	return nil
}

// UsersLoginCommand signs a user in by id or email.
func UsersLoginCommand(s *store.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user id or email required")
	}

	u := FindUser(s, args[0])
	if u == nil {
		return fmt.Errorf("%w: %s", store.ErrUserNotFound, args[0])
	}
	if err := s.Dispatch(context.Background(), store.SetCurrentUser{UserID: u.ID}); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Signed in as %s (%s, %s)\n", u.Name, u.Role, u.ViewMode)
	return nil
}

// UsersPresetCommand replaces a user's filter preset.
func UsersPresetCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("users preset", flag.ContinueOnError)
	id := fs.String("id", "", "User id or email (required)")
	owners := fs.String("owners", "", "Comma separated owner names")
	locations := fs.String("locations", "", "Comma separated locations or regions")
	projectTypes := fs.String("project-types", "", "Comma separated project types")
	teams := fs.String("teams", "", "Comma separated team names")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u := FindUser(s, *id)
	if u == nil {
		return fmt.Errorf("%w: %q", store.ErrUserNotFound, *id)
	}

	preset := models.FilterPreset{
		Owner:        splitList(*owners),
		Locations:    splitList(*locations),
		ProjectTypes: splitList(*projectTypes),
		Teams:        splitList(*teams),
	}
	if err := s.Dispatch(context.Background(), store.SetFilterPreset{UserID: u.ID, Preset: preset}); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Updated filter preset for %s\n", u.Name)
	return nil
}

// UsersRoleCommand changes a user's role and resets their permissions.
func UsersRoleCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("users role", flag.ContinueOnError)
	id := fs.String("id", "", "User id or email (required)")
	role := fs.String("role", "", "New role (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *role == "" {
		return fmt.Errorf("--role is required")
	}

	u := FindUser(s, *id)
	if u == nil {
		return fmt.Errorf("%w: %q", store.ErrUserNotFound, *id)
	}
	if err := s.Dispatch(context.Background(), store.SetUserRole{UserID: u.ID, Role: models.Role(*role)}); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ %s is now %s\n", u.Name, *role)
	return nil
}

// FindUser looks a user up by id, then case-insensitively by email.
func FindUser(s *store.Store, idOrEmail string) *models.User {
	if idOrEmail == "" {
		return nil
	}
	users := s.Users()
	for i := range users {
		if users[i].ID == idOrEmail {
			return &users[i]
		}
	}
	for i := range users {
		if users[i].Email != "" && strings.EqualFold(users[i].Email, idOrEmail) {
			return &users[i]
		}
	}
	return nil
}
