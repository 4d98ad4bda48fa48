package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "application.yml")
	content := []byte(`
id: game-1
database:
  redis:
    addr: 127.0.0.1:6379
okey:
  humanTurnSeconds: 20
`)
	require.NoError(t, os.WriteFile(file, content, 0o644))

	require.NoError(t, Load(file, ""))
	assert.Equal(t, "game-1", GameNodeConfig.ID)
	assert.Equal(t, "127.0.0.1:6379", GameNodeConfig.DatabaseConf.RedisConf.Addr)
	assert.Equal(t, 8080, GameNodeConfig.HttpConf.Port)

	okey := Okey()
	assert.Equal(t, 20*time.Second, okey.HumanTurn())
	assert.Equal(t, 10*time.Second, okey.WarningLead())
	assert.Equal(t, 1500*time.Millisecond, okey.BotTurn())
	assert.Equal(t, 2*time.Hour, okey.RoomTTL())
	assert.Equal(t, time.Hour, okey.ActiveRoomTTL())
}

func TestLoadIdentifierOverridesID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "application.yml")
	require.NoError(t, os.WriteFile(file, []byte("id: from-file\n"), 0o644))

	require.NoError(t, Load(file, "from-flag"))
	assert.Equal(t, "from-flag", GameNodeConfig.ID)
}

func TestLoadRejectsMissingID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "application.yml")
	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: debug\n"), 0o644))

	assert.Error(t, Load(file, ""))
}

func TestOkeyConfValidate(t *testing.T) {
	c := DefaultOkeyConf()
	assert.NoError(t, c.Validate())

	c.BotTurnMillis = 0
	assert.Error(t, c.Validate())

	c = DefaultOkeyConf()
	c.WarningSeconds = -1
	assert.Error(t, c.Validate())
}
