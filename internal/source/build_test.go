// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

func TestFromConfig(t *testing.T) {
	google := types.CustomSearchConfig{APIKey: "k", EngineID: "cx"}
	adzuna := types.AdzunaConfig{AppID: "id", AppKey: "key"}

	tests := []struct {
		name    string
		opts    Options
		want    []types.Platform
		wantErr error
	}{
		{
			name:    "nothing configured",
			opts:    Options{},
			wantErr: ErrNoSources,
		},
		{
			name: "demo only",
			opts: Options{Sources: types.SourcesConfig{DemoEnabled: true}},
			want: []types.Platform{types.PlatformDemo},
		},
		{
			name: "google credentials enable boards and web search",
			opts: Options{Sources: types.SourcesConfig{Google: google}},
			want: []types.Platform{
				types.PlatformLinkedIn, types.PlatformIndeed, types.PlatformGlassdoor,
				types.PlatformNaukri, types.PlatformGoogle,
			},
		},
		{
			name: "explicit order",
			opts: Options{Sources: types.SourcesConfig{
				Order:       []types.Platform{types.PlatformAdzuna, types.PlatformDemo, types.PlatformIndeed},
				Google:      google,
				Adzuna:      adzuna,
				DemoEnabled: true,
			}},
			want: []types.Platform{types.PlatformAdzuna, types.PlatformDemo, types.PlatformIndeed},
		},
		{
			name: "breakers keep platforms",
			opts: Options{
				Sources: types.SourcesConfig{Adzuna: adzuna, DemoEnabled: true},
				Breaker: types.BreakerConfig{Enabled: true},
			},
			want: []types.Platform{types.PlatformAdzuna, types.PlatformDemo},
		},
		{
			name:    "unknown platform in order",
			opts:    Options{Sources: types.SourcesConfig{Order: []types.Platform{"Monster"}}},
			wantErr: ErrUnknownPlatform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := FromConfig(tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, reg.Platforms())
		})
	}
}

func TestFromConfigWrapsWithBreaker(t *testing.T) {
	reg, err := FromConfig(Options{
		Sources: types.SourcesConfig{DemoEnabled: true},
		Breaker: types.BreakerConfig{Enabled: true},
	})
	require.NoError(t, err)
	_, ok := reg.Adapters()[0].(*Breaker)
	assert.True(t, ok)
}
