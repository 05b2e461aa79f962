package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"todolist-web/internal/config"
	"todolist-web/internal/migration"

	"github.com/urfave/cli/v2"
)

// migrator is the part of *migration.Migrator the commands use
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

// openMigrator is replaced in tests
var openMigrator = func() (migrator, error) {
	return migration.NewFromEnv()
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "migrate",
		Usage:     "manage the postgres session store schema",
		Writer:    out,
		ErrWriter: out,
		Before: func(*cli.Context) error {
			_, err := config.Load()
			return err
		},
		Description: `Connection settings come from DB_HOST, DB_PORT, DB_USER, DB_PASSWORD,
DB_NAME and DB_SSL_MODE, optionally loaded from .env or CONFIG_FILE.`,
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: withMigrator(runUp),
			},
			{
				Name:   "down",
				Usage:  "roll back the last migration",
				Action: withMigrator(runDown),
			},
			{
				Name:   "version",
				Usage:  "show the current migration version",
				Action: withMigrator(runVersion),
			},
			{
				Name:      "steps",
				Usage:     "run n migrations (positive = up, negative = down)",
				ArgsUsage: "<n>",
				Action:    withMigrator(runSteps),
			},
			{
				Name:      "force",
				Usage:     "set the migration version without running migrations",
				ArgsUsage: "<version>",
				Action:    withMigrator(runForce),
			},
		},
	}
}

func withMigrator(action func(*cli.Context, migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		m, err := openMigrator()
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
		defer m.Close()
		return action(c, m)
	}
}

func runUp(c *cli.Context, m migrator) error {
	if err := m.Up(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Migrations applied successfully")
	return nil
}

func runDown(c *cli.Context, m migrator) error {
	if err := m.Down(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Migration rolled back successfully")
	return nil
}

func runVersion(c *cli.Context, m migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(c.App.Writer, "Current version: %d (dirty)\n", version)
		fmt.Fprintln(c.App.Writer, "Warning: database is in a dirty state. Use 'force' to fix.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Current version: %d\n", version)
	return nil
}

func runSteps(c *cli.Context, m migrator) error {
	n, err := intArg(c, "steps")
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Successfully ran %d migration steps\n", n)
	return nil
}

func runForce(c *cli.Context, m migrator) error {
	version, err := intArg(c, "force")
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Forced migration version to %d\n", version)
	fmt.Fprintln(c.App.Writer, "Warning: no migrations were run. Make sure the schema matches this version.")
	return nil
}

var errMissingArgument = errors.New("missing argument")

func intArg(c *cli.Context, command string) (int, error) {
	if c.NArg() < 1 {
		return 0, fmt.Errorf("%w: '%s' requires %s", errMissingArgument, command, c.Command.ArgsUsage)
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", c.Args().First(), err)
	}
	return n, nil
}
