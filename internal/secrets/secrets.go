// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads upstream API credentials from a directory of
// plain-text files. Each file holds one secret: the filename is the key and
// the trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

// Recognized key files.
const (
	GoogleAPIKey         = "google-api-key"
	GoogleSearchEngineID = "google-search-engine-id"
	AdzunaAppID          = "adzuna-app-id"
	AdzunaAppKey         = "adzuna-app-key"
)

// Secrets maps key file names to their values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error and
// yields an empty set. Unreadable files are reported in warnings and skipped.
func Load(dir string) (Secrets, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	var warnings []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not read secret %s: %v", name, err))
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, warnings, nil
}

// Keys returns the loaded key names, sorted. Values are never exposed here
// so the result is safe to log.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyTo fills empty credentials in cfg from the loaded secrets. Values
// already set through config or environment win.
func (s Secrets) ApplyTo(cfg *types.SourcesConfig) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = s[key]
		}
	}
	fill(&cfg.Google.APIKey, GoogleAPIKey)
	fill(&cfg.Google.EngineID, GoogleSearchEngineID)
	fill(&cfg.Adzuna.AppID, AdzunaAppID)
	fill(&cfg.Adzuna.AppKey, AdzunaAppKey)
}
