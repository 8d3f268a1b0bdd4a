package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/nodegraph/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainDoc = `outputs:
  - node: 3
nodes:
  - id: 1
    type: Number
    inputs: [3]
  - id: 2
    type: Add
    inputs:
      - link: 1
      - {value: 4, exposed: true}
  - id: 3
    type: Output
    inputs:
      - link: 2
  - id: 4
    type: Number
    inputs: [9]
`

const scaleDoc = `inputs: [1]
outputs:
  - node: 2
nodes:
  - id: 1
    type: Input
    inputs:
      - boundary: true
  - id: 2
    type: Multiply
    inputs:
      - link: 1
      - 3
`

const brokenDoc = `outputs:
  - node: 1
nodes:
  - id: 1
    type: Output
    inputs:
      - link: 7
`

const partialDoc = `outputs:
  - node: 1
  - node: 2
nodes:
  - id: 1
    type: Number
    inputs: [5]
  - id: 2
    type: Exposure
    inputs:
      - link: 1
`

func writeDocs(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_Eval(t *testing.T) {
	dir := writeDocs(t, map[string]string{"chain": chainDoc, "scale": scaleDoc})

	out, err := run(t, "eval", "chain", "--dir", dir, "--detail=false")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	out, err = run(t, "eval", "scale", "--dir", dir, "--input", "4", "--detail=false")
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)

	out, err = run(t, "eval", "chain", "--dir", dir, "--detail", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "**Output:** `7`")

	_, err = run(t, "eval", "missing", "--dir", dir)
	assert.Error(t, err)
}

func TestCLI_EvalPartialFailure(t *testing.T) {
	dir := writeDocs(t, map[string]string{"partial": partialDoc})

	out, err := run(t, "eval", "partial", "--dir", dir, "--detail=false")
	require.NoError(t, err, "only a secondary output failed")
	assert.Contains(t, out, "5\n")
	assert.Contains(t, out, "error: evaluate 2 (Exposure)")

	out, err = run(t, "graph", "partial", "--dir", dir, "--failed")
	require.NoError(t, err)
	assert.Contains(t, out, "class n2 failed;")
}

func TestCLI_Validate(t *testing.T) {
	out, err := run(t, "validate", "--dir", writeDocs(t, map[string]string{"chain": chainDoc}))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ chain")
	assert.Contains(t, out, "warning: node 4 does not reach any output")

	out, err = run(t, "validate", "--dir", writeDocs(t, map[string]string{"chain": chainDoc, "broken": brokenDoc}))
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, err.Error(), "1 of 2 documents failed validation")
}

func TestCLI_Inspect(t *testing.T) {
	dir := writeDocs(t, map[string]string{"chain": chainDoc})

	out, err := run(t, "graph", "chain", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "n1 --> n2")

	out, err = run(t, "flatten", "chain", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Add [2] (ref #")
	assert.Contains(t, out, "outputs: ref #")

	out, err = run(t, "describe", "chain", "--dir", dir, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "| 2 | Add | Add |")

	out, err = run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "Multiply")

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nodegraph version ")
}

func TestCLI_InvalidLogLevel(t *testing.T) {
	_, err := run(t, "version", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
	_, err = run(t, "version", "--log-level", "warn")
	assert.NoError(t, err)
}

func TestThumbnailStore(t *testing.T) {
	plain := memory.NewStore()
	store, err := thumbnailStore(serveCmd, plain)
	require.NoError(t, err)
	assert.Same(t, plain, store)

	key := make([]byte, 32)
	require.NoError(t, serveCmd.Flags().Set("thumbnail-key", base64.StdEncoding.EncodeToString(key)))
	t.Cleanup(func() { _ = serveCmd.Flags().Set("thumbnail-key", "") })

	store, err = thumbnailStore(serveCmd, plain)
	require.NoError(t, err)
	assert.NotSame(t, plain, store)

	require.NoError(t, serveCmd.Flags().Set("thumbnail-key", "c2hvcnQ="))
	_, err = thumbnailStore(serveCmd, plain)
	assert.Error(t, err)
}
