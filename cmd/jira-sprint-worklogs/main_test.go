package main

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"jira-sprint-worklogs/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunOptionsUsesConfigDefaults(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Report = common.ReportConfig{Project: "ABC", WorklogAuthor: "jdoe", Days: 14, LoopSeconds: 60}

	opts, err := buildRunOptions(cfg, "", "", -1, "", -1)
	require.NoError(t, err)
	assert.Equal(t, "ABC", opts.query.Project)
	assert.Equal(t, "jdoe", opts.query.Author)
	assert.Equal(t, 14, opts.query.DaysAgo)
	assert.Nil(t, opts.query.Since)
	assert.Equal(t, time.Minute, opts.loop)
}

func TestBuildRunOptionsFlagsOverride(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Report = common.ReportConfig{Project: "ABC", Days: 14, LoopSeconds: 60}

	opts, err := buildRunOptions(cfg, "XYZ", "asmith", 0, "2024-03-01", 0)
	require.NoError(t, err)
	assert.Equal(t, "XYZ", opts.query.Project)
	assert.Equal(t, "asmith", opts.query.Author)
	assert.Equal(t, 0, opts.query.DaysAgo)
	assert.Zero(t, opts.loop)
	require.NotNil(t, opts.query.Since)
	assert.Equal(t, "2024-03-01", opts.query.Since.Format(sinceLayout))
}

func TestBuildRunOptionsRejectsBadSince(t *testing.T) {
	_, err := buildRunOptions(common.DefaultConfig(), "", "", -1, "01/03/2024", -1)
	require.Error(t, err)
	assert.True(t, common.IsErrorType(err, common.ErrorTypeValidation))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 1, exitCode(common.NewJiraError("JIRA_STATUS", "status 500")))
	assert.Equal(t, 2, exitCode(fmt.Errorf("run: %w", common.NewAuthError("JIRA_AUTH", "rejected"))))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, "production", parseMode("PROD"))
	assert.Equal(t, "production", parseMode("production"))
	assert.Equal(t, "development", parseMode("dev"))
	assert.Equal(t, "development", parseMode("anything"))
}
