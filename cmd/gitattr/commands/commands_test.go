package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/config"
	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
)

// fixture commits main.go once through libgit2 and returns its path and the
// commit hash.
func fixture(t *testing.T) (file, hash string) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	file = filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n\nfunc main() {}\n"), 0o644))

	index, err := repo.Index()
	require.NoError(t, err)

	defer index.Free()

	require.NoError(t, index.AddByPath("main.go"))
	require.NoError(t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(t, err)

	tree, err := repo.LookupTree(treeID)
	require.NoError(t, err)

	defer tree.Free()

	sig := &git2go.Signature{Name: "Alice", Email: "alice@example.com", When: time.Unix(1709287200, 0).UTC()}

	oid, err := repo.CreateCommit("HEAD", sig, sig, "Add main\n", tree)
	require.NoError(t, err)

	return file, oid.String()
}

// quietConfig writes a config file that keeps test output free of info logs.
func quietConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gitattr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o644))

	return path
}

func execute(t *testing.T, build func(*Options) *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var opts Options

	root := &cobra.Command{Use: "gitattr", SilenceUsage: true, SilenceErrors: true}
	BindPersistentFlags(root, &opts)
	root.AddCommand(build(&opts))

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func TestBlameCommand_JSONWindow(t *testing.T) {
	file, hash := fixture(t)

	out, err := execute(t, NewBlameCommand,
		"--config", quietConfig(t), "--format", "json", "blame", file, "--from", "2", "--to", "3")
	require.NoError(t, err)

	var result attribution.BlameResult

	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, file, result.FilePath)
	assert.Equal(t, 3, result.TotalLines)
	assert.Equal(t, 2, result.RequestedLines)
	assert.Equal(t, attribution.LineRange{From: 2, To: 3}, result.LineRange)
	require.Len(t, result.Blame, 2)
	assert.Equal(t, hash, result.Blame[0].Hash)
	assert.Equal(t, "func main() {}", result.Blame[1].Content)
}

func TestBlameCommand_ValidationError(t *testing.T) {
	file, _ := fixture(t)

	_, err := execute(t, NewBlameCommand, "--config", quietConfig(t), "blame", file, "--from", "0")
	require.ErrorIs(t, err, attribution.ErrValidation)
	require.ErrorIs(t, err, attribution.ErrInvalidLineBound)
}

func TestBlameCommand_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewBlameCommand, "--format", "xml", "blame", "main.go")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestBlameCommand_BadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gitattr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("git:\n  binary: \"\"\n"), 0o644))

	_, err := execute(t, NewBlameCommand, "--config", path, "blame", "/tmp/anything.go")
	require.ErrorIs(t, err, config.ErrEmptyGitBinary)
}

func TestShowCommand_AbbreviatedHash(t *testing.T) {
	file, hash := fixture(t)

	out, err := execute(t, NewShowCommand,
		"--config", quietConfig(t), "-f", "json", "show", hash[:8], file, "--file-diffs")
	require.NoError(t, err)

	var detail revision.Detail

	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, hash, detail.Hash)
	assert.Equal(t, "Alice", detail.Author)
	assert.Equal(t, "Add main", detail.Summary)
	assert.Empty(t, detail.Parents)
	assert.Nil(t, detail.Diff)
	require.Len(t, detail.Files, 1)
	assert.Equal(t, revision.StatusAdded, detail.Files[0].Status)
	require.NotNil(t, detail.Files[0].Patch)
	assert.Contains(t, *detail.Files[0].Patch, "+package main")
}

func TestShowCommand_UnknownRevision(t *testing.T) {
	file, _ := fixture(t)

	_, err := execute(t, NewShowCommand, "--config", quietConfig(t), "show", "no-such-branch", file)
	require.ErrorIs(t, err, attribution.ErrNotFound)
}

func TestShowCommand_TableOutput(t *testing.T) {
	file, hash := fixture(t)

	out, err := execute(t, NewShowCommand, "--config", quietConfig(t), "show", "HEAD", file, "--diff")
	require.NoError(t, err)

	assert.Contains(t, out, "commit "+hash)
	assert.Contains(t, out, "Author:     Alice <alice@example.com>")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "+func main() {}")
}

func TestMCPCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := NewMCPCommand(&Options{})
	require.NotNil(t, cmd)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestObservabilityConfig_Mapping(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(quietConfig(t))
	require.NoError(t, err)

	cfg.Metrics.Addr = "127.0.0.1:0"

	cliCfg, err := observabilityConfig(cfg, &Options{}, observability.ModeCLI)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, cliCfg.LogLevel)
	assert.False(t, cliCfg.LogJSON)
	assert.True(t, cliCfg.Prometheus)

	mcpCfg, err := observabilityConfig(cfg, &Options{Debug: true}, observability.ModeMCP)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, mcpCfg.LogLevel)
	assert.True(t, mcpCfg.LogJSON)
	assert.True(t, mcpCfg.DebugTrace)
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(quietConfig(t))
	require.NoError(t, err)

	applyOverrides(cfg, &Options{GitBinary: "/opt/git/bin/git", Timeout: 5 * time.Second})
	assert.Equal(t, "/opt/git/bin/git", cfg.Git.Binary)
	assert.Equal(t, 5*time.Second, cfg.Git.CommandTimeout)

	applyOverrides(cfg, &Options{})
	assert.Equal(t, "/opt/git/bin/git", cfg.Git.Binary)
}

func TestDetailCache_OnlyForMCP(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(quietConfig(t))
	require.NoError(t, err)

	assert.Nil(t, detailCache(cfg, observability.ModeCLI))
	assert.NotNil(t, detailCache(cfg, observability.ModeMCP))

	cfg.Cache.DetailBytes = 0
	assert.Nil(t, detailCache(cfg, observability.ModeMCP))
}

func TestGitAvailable(t *testing.T) {
	t.Parallel()

	require.Error(t, gitAvailable("definitely-not-a-git-binary")(context.Background()))
}
