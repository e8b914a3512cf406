package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/service"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := execute(t, "classify", "https://www.youtube.com/watch?v=abc123&t=10")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "youtube", got["platform"])
	assert.Equal(t, "abc123", got["video_id"])
	assert.Equal(t, "https://img.youtube.com/vi/abc123/hqdefault.jpg", got["thumbnail_url"])

	out, err = execute(t, "classify", "https://www.instagram.com/chefjane/reel/C0ffee/")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "instagram", got["platform"])
	assert.Equal(t, "chefjane", got["author"])
}

func TestClassifyRequiresURL(t *testing.T) {
	_, err := execute(t, "classify")
	assert.Error(t, err)
}

func TestRunRequiresUserUnlessDryRun(t *testing.T) {
	_, err := execute(t, "run", "https://example.com/recipe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("DB_PASSWORD", "unused")

	out, err := execute(t, "token", "--user", "user-42")
	require.NoError(t, err)

	claims, err := service.NewAuthService("cli-secret").ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID())
}
