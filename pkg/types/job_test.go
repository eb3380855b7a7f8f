// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostingID(t *testing.T) {
	a := PostingID(PlatformIndeed, "https://Indeed.com/viewjob?jk=1#top", "Go Dev", "Acme")
	b := PostingID(PlatformIndeed, "https://indeed.com/viewjob?jk=1", "Other title", "Other")
	assert.Equal(t, a, b, "same source and canonical URL must share an ID")

	c := PostingID(PlatformLinkedIn, "https://indeed.com/viewjob?jk=1", "Go Dev", "Acme")
	assert.NotEqual(t, a, c, "source is part of the ID")

	noURL1 := PostingID(PlatformDemo, "", "Go Dev", "Acme")
	noURL2 := PostingID(PlatformDemo, "", "  go dev ", "ACME")
	assert.Equal(t, noURL1, noURL2)
	assert.NotEqual(t, noURL1, PostingID(PlatformDemo, "", "Go Dev", "Globex"))
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower-cases host", "https://WWW.Example.com/Jobs/1", "https://www.example.com/Jobs/1"},
		{"drops fragment and slash", "https://example.com/jobs/1/#apply", "https://example.com/jobs/1"},
		{"drops utm params", "https://example.com/j?id=3&utm_source=x&UTM_medium=y", "https://example.com/j?id=3"},
		{"relative is rejected", "/jobs/1", ""},
		{"mailto is rejected", "mailto:hr@example.com", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalURL(tt.in))
		})
	}
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform("indeed")
	require.NoError(t, err)
	assert.Equal(t, PlatformIndeed, p)

	p, err = ParsePlatform(" google search ")
	require.NoError(t, err)
	assert.Equal(t, PlatformGoogle, p)

	_, err = ParsePlatform("Monster")
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	w := Window{Start: 11, Limit: 10}
	assert.Equal(t, 20, w.End())
	assert.True(t, w.Valid())
	assert.False(t, Window{Start: 0, Limit: 10}.Valid())
	assert.False(t, Window{Start: 1, Limit: 0}.Valid())
}

func TestSignature(t *testing.T) {
	base := SearchRequest{
		Query:            "Go  Engineer",
		Location:         "Remote",
		Start:            1,
		Limit:            10,
		ExperienceLevels: []ExperienceLevel{ExperienceSenior, ExperienceLead},
		Platforms:        []string{"Indeed", "LinkedIn"},
	}
	page2 := base
	page2.Start = 11
	assert.Equal(t, base.Signature(), page2.Signature(), "window is not part of the signature")

	reordered := base
	reordered.Query = "go engineer"
	reordered.ExperienceLevels = []ExperienceLevel{ExperienceLead, ExperienceSenior, ExperienceLead}
	reordered.Platforms = []string{"linkedin", "indeed"}
	assert.Equal(t, base.Signature(), reordered.Signature())

	other := base
	other.Location = "Berlin"
	assert.NotEqual(t, base.Signature(), other.Signature())

	all := SearchRequest{Query: "x"}
	explicitAll := SearchRequest{Query: "x", Platforms: []string{"All"}}
	assert.Equal(t, all.Signature(), explicitAll.Signature())

	allPlusOne := SearchRequest{Query: "x", Platforms: []string{"Indeed", " all "}}
	assert.Equal(t, explicitAll.Signature(), allPlusOne.Signature())
	assert.NotEqual(t, explicitAll.Signature(), SearchRequest{Query: "x", Platforms: []string{"Indeed"}}.Signature())
}

func TestEnumValid(t *testing.T) {
	assert.True(t, ExperienceSenior.Valid())
	assert.False(t, ExperienceLevel("Guru").Valid())
	assert.True(t, CompanyMNC.Valid())
	assert.False(t, CompanySize("Huge").Valid())
}
