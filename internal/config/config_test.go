package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Database: DatabaseConfig{DataPath: "/some/path"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"WARN", true}, // levels are case insensitive
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DataPath = ""

	assert.Error(t, cfg.Validate())
}

func TestDatabaseFile(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, filepath.Join("/some/path", "shelfd.db"), cfg.DatabaseFile())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		def  string
		want string
	}{
		{"empty uses default", "", "/def", "/def"},
		{"absolute unchanged", "/abs/path", "/def", "/abs/path"},
		{"tilde expands", "~/data", "/def", filepath.Join(home, "data")},
		{"trailing slash cleaned", "/abs/path/", "/def", "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.in, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("SHELFD_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "SHELFD_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "SHELFD_TEST_KEY", "default"))

	os.Unsetenv("SHELFD_TEST_KEY")
	assert.Equal(t, "default", getConfigValue("", "SHELFD_TEST_KEY", "default"))
}

func TestParseDurationValue(t *testing.T) {
	got, err := parseDurationValue("", "SHELFD_TEST_DURATION", "15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, got)

	t.Setenv("SHELFD_TEST_DURATION", "2h")
	got, err = parseDurationValue("", "SHELFD_TEST_DURATION", "15m")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, got)

	t.Setenv("SHELFD_TEST_DURATION", "not-a-duration")
	_, err = parseDurationValue("", "SHELFD_TEST_DURATION", "15m")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# comment line\n\nSHELFD_ENVFILE_A=hello\nSHELFD_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("SHELFD_ENVFILE_A")
		os.Unsetenv("SHELFD_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "hello", os.Getenv("SHELFD_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("SHELFD_ENVFILE_B"))
}

func TestLoadEnvFile_RealEnvWins(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SHELFD_ENVFILE_C=file\n"), 0o600))

	t.Setenv("SHELFD_ENVFILE_C", "env")
	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "env", os.Getenv("SHELFD_ENVFILE_C"))
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("no equals sign\n"), 0o600))

	assert.Error(t, loadEnvFile(envFile))
}
