package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_File(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "shotcmp.log")

	f, err := Init(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	log.Print("hello")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "logger_test.go")
}

func TestInit_Stderr(t *testing.T) {
	f, err := Init("")
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestInit_BadPath(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
