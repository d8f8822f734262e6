package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// standing in for testing.T.Chdir which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

func TestLoad(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
	t.Setenv("SECRET_KEY", "squeamish-ossifrage")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKSHEET", "Tasks")
	t.Setenv("GOOGLE_CREDENTIALS", "/etc/tasksheets/credentials.json")
	t.Setenv("DEBUG", "true")

	config, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", config.SpreadsheetID)
	assert.Equal(t, "squeamish-ossifrage", config.SecretKey)
	assert.Equal(t, 9090, config.Port)
	assert.Equal(t, "Tasks", config.Worksheet)
	assert.Equal(t, "/etc/tasksheets/credentials.json", config.CredentialsFile)
	assert.True(t, config.Debug)
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("WORKSHEET", "")
	t.Setenv("GOOGLE_CREDENTIALS", "")
	t.Setenv("DEBUG", "")

	chdir(t, t.TempDir())

	config, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultPort, config.Port)
	assert.Equal(t, DefaultWorksheet, config.Worksheet)
	assert.Equal(t, "", config.CredentialsFile)
	assert.False(t, config.Debug)
}

func TestLoadWithoutSpreadsheetID(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "")

	chdir(t, t.TempDir())

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPREADSHEET_ID")
}

func TestLoadWithInvalidPort(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
	t.Setenv("PORT", "not-a-port")

	chdir(t, t.TempDir())

	config, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultPort, config.Port)
}
