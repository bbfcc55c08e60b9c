package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupCmd_Registration(t *testing.T) {
	for _, sub := range []string{"create", "list", "restore", "prune"} {
		_, _, err := backupCmd.Find([]string{sub})
		require.NoError(t, err, "backup %s not registered", sub)
	}
	require.NotNil(t, backupPruneCmd.Flags().Lookup("older-than"))
	require.NotNil(t, backupPruneCmd.Flags().Lookup("keep"))
}

func TestBackupCreate_NoConfiguration(t *testing.T) {
	setupTestEnv(t)

	var buf bytes.Buffer
	err := runBackupCreate(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBackupCreateListRestore(t *testing.T) {
	cfgPath := setupTestEnv(t)

	require.NoError(t, addServer(t, "keeper", "stdio", "npx", ""))

	var buf bytes.Buffer
	require.NoError(t, runBackupCreate(&buf))
	assert.Contains(t, buf.String(), "snapshot")

	buf.Reset()
	require.NoError(t, runBackupList(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2, "expected header plus one snapshot")
	id := strings.Fields(lines[1])[0]

	// Mutate the live configuration, then restore the snapshot.
	prevBackup := removeBackupFirst
	removeBackupFirst = false
	t.Cleanup(func() { removeBackupFirst = prevBackup })
	buf.Reset()
	require.NoError(t, runRemove(&buf, "keeper"))

	buf.Reset()
	require.NoError(t, runBackupRestore(&buf, id))
	assert.Contains(t, buf.String(), "restored")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "keeper")
}

func TestBackupRestore_UnknownID(t *testing.T) {
	setupTestEnv(t)

	var buf bytes.Buffer
	err := runBackupRestore(&buf, "19700101-000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBackupPrune_KeepsConfiguredCount(t *testing.T) {
	setupTestEnv(t)

	require.NoError(t, addServer(t, "fill", "stdio", "npx", ""))

	var buf bytes.Buffer
	for i := 0; i < 5; i++ {
		require.NoError(t, runBackupCreate(&buf))
	}

	// appSettings.BackupKeep is 3 in the test environment.
	buf.Reset()
	require.NoError(t, runBackupPrune(&buf))
	assert.Contains(t, buf.String(), "kept 3")

	entries, err := os.ReadDir(appSettings.BackupDir)
	require.NoError(t, err)
	snapshots := 0
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".json") {
			snapshots++
		}
	}
	assert.Equal(t, 3, snapshots)
}
