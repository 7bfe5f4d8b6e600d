package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	searchmem "github.com/manglemix/ruyi-bot-3/internal/adapters/driven/search/memory"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

func TestSyncGitsCmd_Use(t *testing.T) {
	assert.Equal(t, "sync-gits", syncGitsCmd.Use)
	flag := syncGitsCmd.Flags().Lookup("force")
	require.NotNil(t, flag, "force flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestSyncGitsCmd_IndexesRepositories(t *testing.T) {
	env := setupTestServices(t)
	env.addRepo(t, "repo", map[string]string{
		"README.txt":  "hello",
		"src/main.rs": "fn main() {}",
	})

	out, err := executeCommand(t, "sync-gits")

	require.NoError(t, err)
	assert.Contains(t, out, "Synchronised 2 documents")

	calls := env.backend.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, searchmem.Call{Op: searchmem.OpDeleteIndex, Index: "gits"}, calls[0])

	docs := env.backend.Documents("gits")
	origin := "https://example.com/repo.git"
	readme := domain.NewDocumentID("README.txt", domain.GitHubRoot(origin, "main", "repo"))
	main := domain.NewDocumentID("main.rs", domain.GitHubRoot(origin, "main", "repo/src"))
	require.Contains(t, docs, readme)
	require.Contains(t, docs, main)
	assert.Equal(t, origin, docs[readme].Origin)
	assert.Equal(t, "main", docs[readme].Branch)
	assert.Equal(t, "fn main() {}", docs[main].Contents)
	assert.Empty(t, env.backend.Documents("docs"))
}

func TestSyncGitsCmd_CooldownAcrossRuns(t *testing.T) {
	defer func() { syncGitsForce = false }()

	env := setupTestServices(t)
	require.NoError(t, os.MkdirAll(env.gitsDir(), 0o755))

	_, err := executeCommand(t, "sync-gits")
	require.NoError(t, err)

	_, err = executeCommand(t, "sync-gits")
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	out, err := executeCommand(t, "sync-gits", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Synchronised 0 documents")
}

func TestSyncGitsCmd_MissingGitsFolder(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "sync-gits")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read gits directory")
}

func TestSyncGitsHistoryCmd(t *testing.T) {
	defer func() { historyLimit = 10 }()

	t.Run("no runs", func(t *testing.T) {
		setupTestServices(t)

		out, err := executeCommand(t, "sync-gits", "history")

		require.NoError(t, err)
		assert.Contains(t, out, "No git sync runs recorded.")
	})

	t.Run("lists runs", func(t *testing.T) {
		env := setupTestServices(t)
		env.addRepo(t, "repo", map[string]string{"a.txt": "a"})
		_, err := executeCommand(t, "sync-gits")
		require.NoError(t, err)

		out, err := executeCommand(t, "sync-gits", "history", "-n", "5")

		require.NoError(t, err)
		assert.Contains(t, out, "STARTED")
		assert.Contains(t, out, "DOCUMENTS")
		assert.Contains(t, out, "ok")
	})
}
