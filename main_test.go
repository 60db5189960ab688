package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpPrintsDocument(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "db.json")
	seed := `{"users":[{"id":"u1","name":"Jo","age":30}],"tables":[],"audit":[{"id":"a1","timestamp":1700000000000}]}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"dump", "--data", path})
	require.NoError(t, cmd.Execute())

	assert.JSONEq(t, seed, out.String())
	assert.True(t, json.Valid(out.Bytes()))
}

func TestDumpInitializesMissingStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "nested", "db.json")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"dump", "--data", path})
	require.NoError(t, cmd.Execute())

	assert.JSONEq(t, `{"users":[],"tables":[],"audit":[]}`, out.String())
	assert.FileExists(t, path)
}

func TestDumpRejectsMalformedStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users":`), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"dump", "--data", path})
	assert.Error(t, cmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"users":`, string(data))
}
