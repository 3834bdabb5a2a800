package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitegen/internal/cache"
	"sitegen/internal/config"
	"sitegen/internal/generator"
)

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLog, err := newLogger(&buf, "debug", "json", "")
	require.NoError(t, err)
	defer closeLog()

	logger.Debug("hello", "k", "v")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	logger, _, err = newLogger(&buf, "warn", "text", "")
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, _, err := newLogger(&bytes.Buffer{}, "loud", "text", "")
	assert.Error(t, err)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitegen.log")
	var buf bytes.Buffer
	logger, closeLog, err := newLogger(&buf, "info", "text", path)
	require.NoError(t, err)

	logger.Info("to both")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestWriteResult(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	res := generator.Result{
		Site:     generator.FallbackSite(),
		Stage:    generator.StageFallback,
		Provider: "static",
		Elapsed:  2 * time.Second,
		Attempts: []generator.Attempt{
			{Stage: generator.StagePrimary, Provider: "gemini", Err: errors.New("timeout")},
			{Stage: generator.StageSecondary, Provider: "none", Err: errors.New("provider not configured")},
		},
	}
	require.NoError(t, writeResult(cmd, res))

	var got generateOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "fallback", got.Stage)
	assert.Equal(t, int64(2000), got.ElapsedMS)
	require.Len(t, got.Attempts, 2)
	assert.Equal(t, "timeout", got.Attempts[0].Error)
	assert.Equal(t, generator.FallbackHTML, got.Site.HTML)
}

func TestGenerateCmd_RejectsUnknownType(t *testing.T) {
	rootCmd.SetArgs([]string{"generate", "--type", "forum", "a", "site"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		genType = "landing_page"
	})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown website type"), err.Error())
}

func TestMigrateCmd_RejectsUnknownAction(t *testing.T) {
	rootCmd.SetArgs([]string{"migrate", "sideways"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.ExecuteContext(context.Background()))
}

func TestClearPreviews(t *testing.T) {
	mr := miniredis.RunT(t)
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, mr.Set(cache.ProjectKey(id), "<html></html>"))
	}
	require.NoError(t, mr.Set("session:1", "keep"))

	cfg, err := config.LoadFrom(map[string]string{"VALKEY_HOST": mr.Host(), "VALKEY_PORT": mr.Port()})
	require.NoError(t, err)

	n, err := clearPreviews(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, mr.Exists(cache.ProjectKey(2)))
	assert.True(t, mr.Exists("session:1"))
}

func TestClearPreviews_WithoutValkey(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	n, err := clearPreviews(context.Background(), cfg)
	require.NoError(t, err)
	assert.Zero(t, n)
}
