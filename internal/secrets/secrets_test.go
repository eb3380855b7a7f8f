// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GoogleAPIKey, "  AIza123  \n")
				writeFile(t, dir, AdzunaAppID, "app-1")
				return dir
			},
			want: Secrets{GoogleAPIKey: "AIza123", AdzunaAppID: "app-1"},
		},
		{
			name: "returns empty set for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty, hidden files and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AdzunaAppKey, "k")
				writeFile(t, dir, "empty", "  \n\t")
				writeFile(t, dir, ".gitkeep", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: Secrets{AdzunaAppKey: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Empty(t, warnings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeysSortedWithoutValues(t *testing.T) {
	s := Secrets{AdzunaAppKey: "secret", GoogleAPIKey: "other"}
	assert.Equal(t, []string{AdzunaAppKey, GoogleAPIKey}, s.Keys())
}

func TestApplyTo(t *testing.T) {
	s := Secrets{
		GoogleAPIKey:         "from-file",
		GoogleSearchEngineID: "cx-file",
		AdzunaAppID:          "id-file",
		AdzunaAppKey:         "key-file",
	}
	cfg := types.SourcesConfig{
		Google: types.CustomSearchConfig{APIKey: "from-env"},
	}

	s.ApplyTo(&cfg)

	assert.Equal(t, "from-env", cfg.Google.APIKey, "configured value wins")
	assert.Equal(t, "cx-file", cfg.Google.EngineID)
	assert.Equal(t, "id-file", cfg.Adzuna.AppID)
	assert.Equal(t, "key-file", cfg.Adzuna.AppKey)
	assert.True(t, cfg.Google.Configured())
	assert.True(t, cfg.Adzuna.Configured())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
