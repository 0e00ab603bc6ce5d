package main

import (
	"io"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/config"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			want: options{Ticks: 300},
		},
		{
			name: "headless with plan view",
			args: []string{"--headless", "--ticks", "12", "--planview", "out.png", "--keys", "pt"},
			want: options{Headless: true, Ticks: 12, Planview: "out.png", Keys: "pt"},
		},
		{
			name: "config dir shorthand",
			args: []string{"-c", "/etc/interborough"},
			want: options{ConfigDir: "/etc/interborough", Ticks: 300},
		},
		{
			name:    "plan view needs headless",
			args:    []string{"--planview", "out.png"},
			wantErr: true,
		},
		{
			name:    "negative ticks",
			args:    []string{"--headless", "--ticks", "-1"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"--fullscreen"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.ConfigDir, got.ConfigDir)
			assert.Equal(t, tt.want.Headless, got.Headless)
			assert.Equal(t, tt.want.Ticks, got.Ticks)
			assert.Equal(t, tt.want.Planview, got.Planview)
			assert.Equal(t, tt.want.Keys, got.Keys)
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	_, err := parseFlags([]string{"--help"}, io.Discard)
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestBindOverridesConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	opts, err := parseFlags([]string{"--host", "sdl", "--record"}, io.Discard)
	require.NoError(t, err)
	require.NoError(t, opts.bind())

	assert.Equal(t, "sdl", config.GetWindowConfig().Host)
	assert.True(t, config.GetRecorderConfig().Enabled)
	// unset flags leave the defaults alone
	assert.Equal(t, "station", config.GetRenderConfig().View)
}
