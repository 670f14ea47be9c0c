package harness

import (
	"context"
	"testing"
	"time"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	args, err := Args(`cargo bench --bench "kv bench" -- --save-json`)
	require.NoError(t, err)
	assert.Equal(t, []string{"cargo", "bench", "--bench", "kv bench", "--", "--save-json"}, args)

	_, err = Args("")
	assert.Error(t, err)
	_, err = Args(`cargo "unterminated`)
	assert.Error(t, err)
}

func TestRunSuccess(t *testing.T) {
	r := &Runner{Command: `sh -c 'echo out; echo err >&2'`}
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestRunFailureCapturesOutput(t *testing.T) {
	r := &Runner{Command: `sh -c 'echo partial; echo boom >&2; exit 3'`}
	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)

	var harnessErr *types.HarnessExecutionError
	require.True(t, errors.As(err, &harnessErr))
	assert.Equal(t, 3, harnessErr.ExitCode)
	assert.Equal(t, "partial\n", harnessErr.Stdout)
	assert.Equal(t, "boom\n", harnessErr.Stderr)
	assert.True(t, types.IsHarnessFailure(err))
	assert.False(t, types.IsParseFailure(err))
}

func TestRunMissingBinary(t *testing.T) {
	r := &Runner{Command: "definitely-not-a-bench-harness-binary"}
	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.False(t, types.IsHarnessFailure(err))
}

func TestRunTimeout(t *testing.T) {
	r := &Runner{Command: "sleep 5", Timeout: 50 * time.Millisecond}
	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsHarnessFailure(err))
}

func TestRunWorkingDir(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Command: "pwd", Dir: dir}
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}
