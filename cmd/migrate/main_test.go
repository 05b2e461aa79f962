package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	forced  int
	version uint
	dirty   bool
	err     error
	closed  bool
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return f.err
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	return f.err
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, f.dirty, f.err
}

func (f *fakeMigrator) Force(version int) error {
	f.calls = append(f.calls, "force")
	f.forced = version
	return f.err
}

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

func runWith(t *testing.T, fake *fakeMigrator, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	previous := openMigrator
	openMigrator = func() (migrator, error) { return fake, nil }
	t.Cleanup(func() { openMigrator = previous })

	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"migrate"}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		fake := &fakeMigrator{}
		out, err := runWith(t, fake, "up")

		require.NoError(t, err)
		assert.Equal(t, []string{"up"}, fake.calls)
		assert.True(t, fake.closed)
		assert.Contains(t, out, "Migrations applied successfully")
	})

	t.Run("down", func(t *testing.T) {
		fake := &fakeMigrator{}
		out, err := runWith(t, fake, "down")

		require.NoError(t, err)
		assert.Equal(t, []string{"down"}, fake.calls)
		assert.Contains(t, out, "rolled back")
	})

	t.Run("version reports dirty state", func(t *testing.T) {
		fake := &fakeMigrator{version: 1, dirty: true}
		out, err := runWith(t, fake, "version")

		require.NoError(t, err)
		assert.Contains(t, out, "Current version: 1 (dirty)")
	})

	t.Run("steps accepts negative numbers", func(t *testing.T) {
		fake := &fakeMigrator{}
		_, err := runWith(t, fake, "steps", "--", "-1")

		require.NoError(t, err)
		assert.Equal(t, -1, fake.steps)
	})

	t.Run("force", func(t *testing.T) {
		fake := &fakeMigrator{}
		out, err := runWith(t, fake, "force", "1")

		require.NoError(t, err)
		assert.Equal(t, 1, fake.forced)
		assert.Contains(t, out, "Forced migration version to 1")
	})

	t.Run("steps requires an argument", func(t *testing.T) {
		fake := &fakeMigrator{}
		_, err := runWith(t, fake, "steps")

		assert.ErrorIs(t, err, errMissingArgument)
		assert.Empty(t, fake.calls)
	})

	t.Run("force rejects non-numeric version", func(t *testing.T) {
		fake := &fakeMigrator{}
		_, err := runWith(t, fake, "force", "latest")

		assert.Error(t, err)
		assert.Empty(t, fake.calls)
	})

	t.Run("propagates migrator errors", func(t *testing.T) {
		fake := &fakeMigrator{err: errors.New("dirty database")}
		_, err := runWith(t, fake, "up")

		assert.EqualError(t, err, "dirty database")
		assert.True(t, fake.closed)
	})
}
