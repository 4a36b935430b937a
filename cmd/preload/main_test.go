package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPreloadConfig(t *testing.T) {
	t.Setenv("PRELOAD_QUERIES", " SBER, ,FXUS ")
	t.Setenv("PRELOAD_YEARS", "")

	cfg, err := loadPreloadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"SBER", "FXUS"}, cfg.Queries)
	assert.Equal(t, 1, cfg.Years)

	t.Setenv("PRELOAD_YEARS", "3")
	cfg, err = loadPreloadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Years)
}

func TestLoadPreloadConfigErrors(t *testing.T) {
	t.Setenv("PRELOAD_QUERIES", "")
	_, err := loadPreloadConfig()
	assert.Error(t, err)

	t.Setenv("PRELOAD_QUERIES", "SBER")
	t.Setenv("PRELOAD_YEARS", "0")
	_, err = loadPreloadConfig()
	assert.Error(t, err)
}

func TestLoadDotenvLogsMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	loadDotenv(logger)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "no .env file loaded", entry.Message)
	assert.NotNil(t, entry.Data[logrus.ErrorKey])
}

func TestLoadDotenvReadsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PRELOAD_DOTENV_CHECK=yes\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("PRELOAD_DOTENV_CHECK", "")
	require.NoError(t, os.Unsetenv("PRELOAD_DOTENV_CHECK"))
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	loadDotenv(logger)

	assert.Empty(t, hook.AllEntries())
	assert.Equal(t, "yes", os.Getenv("PRELOAD_DOTENV_CHECK"))
}
