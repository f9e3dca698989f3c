package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		GetLeveler().SetAllLevels(zapcore.InfoLevel)
	})
	return &buf
}

func TestExistingLoggerFollowsOutput(t *testing.T) {
	logger := New("follow")
	buf := captureOutput(t)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "follow")
	assert.Contains(t, buf.String(), "hello")
}

func TestPerLoggerLevel(t *testing.T) {
	buf := captureOutput(t)
	quiet := New("quiet")
	loud := New("loud")

	GetLeveler().SetLevel("quiet", zapcore.WarnLevel)
	GetLeveler().SetLevel("loud", zapcore.DebugLevel)
	quiet.Info("quiet info")
	loud.Debug("loud debug")

	assert.NotContains(t, buf.String(), "quiet info")
	assert.Contains(t, buf.String(), "loud debug")
	assert.Equal(t, zapcore.WarnLevel, GetLeveler().GetLevel("quiet"))
}

func TestSetAllLevels(t *testing.T) {
	buf := captureOutput(t)
	before := New("before")

	GetLeveler().SetAllLevels(zapcore.ErrorLevel)
	after := New("after")
	before.Warn("before warn")
	after.Warn("after warn")
	assert.Empty(t, buf.String())

	assert.Equal(t, zapcore.ErrorLevel, GetLeveler().GetLevel("after"))
	assert.Equal(t, zapcore.ErrorLevel, GetLeveler().GetLevel("never-created"))
}

func TestRedirect(t *testing.T) {
	logger := New("redirect")
	path := filepath.Join(t.TempDir(), "eyes.log")

	restore, err := Redirect(path)
	require.NoError(t, err)
	logger.Info("to file")
	restore()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestRestoreSendsLogsBackToStdout(t *testing.T) {
	dir := t.TempDir()
	stdout, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	defer stdout.Close()
	realStdout := os.Stdout
	os.Stdout = stdout
	t.Cleanup(func() {
		os.Stdout = realStdout
		SetOutput(os.Stdout)
	})

	logger := New("restore")
	path := filepath.Join(dir, "eyes.log")
	restore, err := Redirect(path)
	require.NoError(t, err)
	logger.Info("while redirected")

	restore()
	restore()
	logger.Error("startup failed")

	logged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "while redirected")
	assert.NotContains(t, string(logged), "startup failed")

	console, err := os.ReadFile(stdout.Name())
	require.NoError(t, err)
	assert.Contains(t, string(console), "startup failed")
	assert.NotContains(t, string(console), "while redirected")
}
