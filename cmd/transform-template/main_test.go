package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dkocen/voicemail-for-amazon-connect/internal/transform"
)

const fixture = "../../internal/transform/testdata/serverless.json"

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	if cmd.Use != "transform-template" {
		t.Errorf("Use = %q, want 'transform-template'", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	for _, name := range []string{"template", "save", "zip", "jar"} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("missing --%s flag", name)
			continue
		}
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], name)
	}
}

func TestRootCmd_MissingFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no flags", []string{}},
		{"missing jar", []string{"--template", fixture, "--save", "out.json", "--zip", "z"}},
		{"missing template", []string{"--save", "out.json", "--zip", "z", "--jar", "j"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&out)
			cmd.SetErr(&out)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag")
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestRootCmd_Transform(t *testing.T) {
	save := filepath.Join(t.TempDir(), "voicemail.template")

	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--template", fixture, "--save", save, "--zip", "NEWZIP", "--jar", "NEWJAR"})
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(save)
	require.NoError(t, err)
	out := gjson.ParseBytes(data)
	assert.Equal(t, "NEWZIP", out.Get("Resources.GetAgentsLambdaFunction.Properties.Code.S3Key").String())
	assert.Equal(t, "NEWJAR", out.Get("Resources.KvsProcessRecordingLambdaFunction.Properties.Code.S3Key").String())
	assert.False(t, out.Get("Resources.ServerlessDeploymentBucket").Exists())

	assert.Contains(t, stderr.String(), "Function name: voicemail-dev-getAgents")
	assert.Contains(t, stderr.String(), "Wrote "+save)
}

func TestRootCmd_TransformError(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "out.json")

	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--template", filepath.Join(dir, "missing.json"), "--save", save, "--zip", "z", "--jar", "j"})
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, transform.ErrRead)
	assert.NotContains(t, stderr.String(), "Usage:")

	_, statErr := os.Stat(save)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra", "--template", fixture, "--save", "o", "--zip", "z", "--jar", "j"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}
