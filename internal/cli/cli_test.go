package cli

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestRunAndListRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out := execute(t, "run", "--policy", "lottery", "--cpus", "2", "--duration", "50ms", "--db", db)
	assert.Contains(t, out, "policy lottery_scheduler on 2 cpus")
	assert.Contains(t, out, "hog-0")

	id := regexp.MustCompile(`saved (run_\S+)`).FindStringSubmatch(out)
	require.Len(t, id, 2, out)

	out = execute(t, "runs", "--db", db)
	assert.Contains(t, out, id[1])

	out = execute(t, "runs", "--db", db, id[1])
	assert.Contains(t, out, "heavy-1")
}

func TestCompare(t *testing.T) {
	out := execute(t, "compare")
	assert.Contains(t, out, "lottery_scheduler")
	assert.Contains(t, out, "vtime_scheduler")
}

func TestRunsWithoutDB(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"runs"})
	assert.Error(t, root.Execute())
}
