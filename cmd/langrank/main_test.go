package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-langrank/internal/application"
)

func TestSavePath(t *testing.T) {
	defaults := application.DefaultConfig()

	tests := []struct {
		name       string
		args       []string
		flag       string
		configured string
		want       string
	}{
		{
			name:       "flag omitted skips the artifact",
			args:       nil,
			flag:       "save-schulze",
			configured: "data/output/schulze_rankings.csv",
			want:       "",
		},
		{
			name:       "bare flag resolves to the configured path",
			args:       []string{"--save-schulze"},
			flag:       "save-schulze",
			configured: "overlay/schulze.csv",
			want:       "overlay/schulze.csv",
		},
		{
			name:       "explicit file wins over the configured path",
			args:       []string{"--save-schulze=custom.csv"},
			flag:       "save-schulze",
			configured: "overlay/schulze.csv",
			want:       "custom.csv",
		},
		{
			name:       "flags resolve independently",
			args:       []string{"--save-html"},
			flag:       "save-rankings",
			configured: defaults.Output.RankingsCSV,
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCommand()
			require.NoError(t, cmd.Flags().Parse(tt.args))

			assert.Equal(t, tt.want, savePath(cmd.Flags(), tt.flag, tt.configured))
		})
	}
}

func TestNewRootCommand_Flags(t *testing.T) {
	cmd := newRootCommand()

	for _, name := range []string{
		"config", "archive-csv", "full-output", "no-progress",
		"save-rankings", "save-benchmarks", "save-schulze", "save-html",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %q", name)
	}

	defaults := application.DefaultConfig()
	assert.Equal(t, defaults.Output.SchulzeCSV, cmd.Flags().Lookup("save-schulze").NoOptDefVal)
	assert.Equal(t, defaults.Output.HTMLReport, cmd.Flags().Lookup("save-html").NoOptDefVal)
}

func TestNewRootCommand_RejectsPositionalArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"unexpected"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
