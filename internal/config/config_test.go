package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"records-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config."+env+".yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("FileValues", func(t *testing.T) {
		dir := writeConfig(t, "test", `
server:
  port: "4000"
  static_dir: /srv/web
auth:
  enforce: true
  jwt_secret: file-secret
events:
  driver: kafka
  kafka:
    brokers: [broker-1:9092, broker-2:9092]
    topic: roster
`)
		t.Setenv("ENV", "test")
		t.Setenv("CONFIG_DIR", dir)

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, "4000", cfg.Server.Port)
		assert.Equal(t, "/srv/web", cfg.Server.StaticDir)
		assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
		assert.Equal(t, "kafka", cfg.Events.Driver)
		assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Events.Kafka.Brokers)
		assert.Equal(t, "roster", cfg.Events.Kafka.Topic)

		// untouched keys keep their defaults
		assert.Equal(t, "gcbc_students", cfg.Database.DBName)
		assert.Equal(t, 480, cfg.Auth.TokenTTLMinutes)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		dir := writeConfig(t, "test", `
auth:
  jwt_secret: file-secret
database:
  password: from-file
`)
		t.Setenv("ENV", "test")
		t.Setenv("CONFIG_DIR", dir)
		t.Setenv("DB_PASSWORD", "from-env")
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("SERVER_PORT", "5000")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.Database.Password)
		assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
		assert.Equal(t, "5000", cfg.Server.Port)
	})

	t.Run("MissingSecretRejected", func(t *testing.T) {
		dir := writeConfig(t, "test", `
auth:
  enforce: true
`)
		t.Setenv("ENV", "test")
		t.Setenv("CONFIG_DIR", dir)

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt_secret")
	})

	t.Run("UnknownEventsDriver", func(t *testing.T) {
		dir := writeConfig(t, "test", `
auth:
  jwt_secret: s
events:
  driver: rabbitmq
`)
		t.Setenv("ENV", "test")
		t.Setenv("CONFIG_DIR", dir)

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq")
	})
}
