package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, `
server:
  port: 9090
jwt:
  secret: from-file
database:
  driver: sqlite3
  dsn: file:portal.db
scheduling:
  timezone: America/New_York
`))
	t.Setenv("PORTAL_JWT_SECRET", "from-env")
	t.Setenv("PORTAL_OUTBOX_BATCH_SIZE", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7, cfg.Outbox.BatchSize)
	assert.Equal(t, "file:portal.db", cfg.Database.DataSource())

	// Defaults fill what the file leaves out.
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenExpiry)

	loc, err := cfg.Scheduling.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "server:\n  port: 8080\n"))

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestValidate(t *testing.T) {
	cfg := Config{JWT: JWTConfig{Secret: "s"}, Database: DatabaseConfig{Driver: "mysql"}}
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	cfg.Scheduling.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, cfg.Validate())

	cfg.Scheduling.Timezone = ""
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseConfig_DataSource(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.DataSource())
}

func TestSchedulingConfig_ToRetryPolicy(t *testing.T) {
	p := SchedulingConfig{StorageRetries: 5, RetryInitialDelay: 10 * time.Millisecond}.ToRetryPolicy()
	assert.EqualValues(t, 5, p.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, p.InitialInterval)
}
