package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sanitation-feedback-server/database"
	"sanitation-feedback-server/models"
	"sanitation-feedback-server/utils"
)

func setCommandEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("APP_ENV", "development")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("JWT_SECRET", "command-test-secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SEED_FILE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	return path
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := runCommand(t, "", "hash-password", "s3cret")
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("s3cret", strings.TrimSpace(out)))

	out, err = runCommand(t, "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("from-stdin", strings.TrimSpace(out)))

	_, err = runCommand(t, "", "hash-password")
	assert.Error(t, err)
}

func TestMigrateAndSeedCommands(t *testing.T) {
	path := setCommandEnv(t)

	_, err := runCommand(t, "", "migrate")
	require.NoError(t, err)

	// twice, to show seeding is idempotent
	for i := 0; i < 2; i++ {
		_, err = runCommand(t, "", "seed")
		require.NoError(t, err)
	}

	db, err := database.OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)

	seed, err := database.DefaultSeed()
	require.NoError(t, err)

	var locations, admins, staff int64
	db.Model(&models.Location{}).Count(&locations)
	db.Model(&models.Admin{}).Count(&admins)
	db.Model(&models.Staff{}).Count(&staff)
	assert.Equal(t, int64(len(seed.Locations)), locations)
	assert.Equal(t, int64(len(seed.Admins)), admins)
	assert.Equal(t, int64(len(seed.Staff)), staff)
}

func TestSeedCommand_FromFile(t *testing.T) {
	path := setCommandEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", strings.Repeat("x", 40))
	t.Setenv("GIN_MODE", "release")

	_, err := runCommand(t, "", "seed")
	require.Error(t, err, "embedded seed must not be used in production")

	file := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
locations: [Harbour]
admins:
  - name: Ops
    email: ops@example.com
    password: changeme
`), 0o600))

	_, err = runCommand(t, "", "seed", "--file", file)
	require.NoError(t, err)

	db, err := database.OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)

	var loc models.Location
	require.NoError(t, db.First(&loc).Error)
	assert.Equal(t, "Harbour", loc.Name)
}

func TestRootCommand_RejectsInsecureProductionSecret(t *testing.T) {
	setCommandEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "dev-secret-change-me")

	_, err := runCommand(t, "", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
