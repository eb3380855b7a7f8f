//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search runs a sample query against the demo catalog, e.g.
// `mage search "go engineer"`.
func Search(query string) error {
	mg.Deps(Build)
	env := map[string]string{"JOBSEARCH_SOURCES_DEMO_ENABLED": "true", "JOBSEARCH_LOG_LEVEL": "warn"}
	return sh.RunWithV(env, binPath, "search", "--query", query)
}
