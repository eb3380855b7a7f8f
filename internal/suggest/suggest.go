// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package suggest serves autocomplete candidates for the search form from
// fixed, embedded lists.
package suggest

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// MaxResults caps the number of suggestions returned per lookup.
const MaxResults = 10

//go:embed lists.yaml
var listsYAML []byte

// Kind names one suggestion list.
type Kind string

const (
	KindJob        Kind = "job"
	KindLocation   Kind = "location"
	KindSkill      Kind = "skill"
	KindCompany    Kind = "company"
	KindUniversity Kind = "university"
	KindDegree     Kind = "degree"
	KindField      Kind = "field"
)

// Suggester looks up candidates by case-insensitive substring.
type Suggester struct {
	lists map[Kind][]string
}

// New loads the embedded lists.
func New() (*Suggester, error) {
	return Parse(listsYAML)
}

// Parse builds a Suggester from a YAML mapping of kind to string list.
func Parse(data []byte) (*Suggester, error) {
	var raw map[Kind][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing suggestion lists: %w", err)
	}
	return &Suggester{lists: raw}, nil
}

// Kinds returns the known list names, sorted.
func (s *Suggester) Kinds() []Kind {
	out := make([]Kind, 0, len(s.lists))
	for k := range s.lists {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether kind names a list.
func (s *Suggester) Has(kind Kind) bool {
	_, ok := s.lists[kind]
	return ok
}

// Lookup returns up to MaxResults entries of the kind list containing
// query, in list order. An empty query matches everything. An unknown kind
// yields an empty, non-nil slice.
func (s *Suggester) Lookup(kind Kind, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []string{}
	for _, v := range s.lists[kind] {
		if strings.Contains(strings.ToLower(v), q) {
			out = append(out, v)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}
