package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "development defaults pass",
			config: Config{
				Env:       "development",
				Port:      "8390",
				JWTSecret: "your-secret-key-change-in-production",
				DBSSLMode: "disable",
			},
			expectError: false,
		},
		{
			name: "production rejects default JWT secret",
			config: Config{
				Env:        "production",
				Port:       "8390",
				JWTSecret:  "your-secret-key-change-in-production",
				DBPassword: "strong-password",
				DBSSLMode:  "require",
			},
			expectError: true,
		},
		{
			name: "production rejects short JWT secret",
			config: Config{
				Env:        "production",
				Port:       "8390",
				JWTSecret:  "short",
				DBPassword: "strong-password",
				DBSSLMode:  "require",
			},
			expectError: true,
		},
		{
			name: "production rejects weak DB password",
			config: Config{
				Env:        "production",
				Port:       "8390",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "password",
				DBSSLMode:  "require",
			},
			expectError: true,
		},
		{
			name: "production rejects disabled SSL",
			config: Config{
				Env:        "production",
				Port:       "8390",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "strong-password",
				DBSSLMode:  "disable",
			},
			expectError: true,
		},
		{
			name: "production with proper settings passes",
			config: Config{
				Env:        "production",
				Port:       "8390",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "strong-password",
				DBSSLMode:  "verify-full",
			},
			expectError: false,
		},
		{
			name:        "missing port fails",
			config:      Config{Env: "development", JWTSecret: "x"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("DB_NAME")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("DB_NAME", "dormitory_test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "dormitory_test", c.DBName)
	assert.Equal(t, "8390", c.Port)
}

func TestLoadConfig_ReadsConfigFile(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")

	dir := t.TempDir()
	raw, err := yaml.Marshal(map[string]any{
		"PORT":    "9000",
		"DB_NAME": "dormitory_file",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), raw, 0o600))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	os.Setenv("APP_ENV", "development")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "dormitory_file", c.DBName)
}
