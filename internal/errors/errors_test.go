package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	tests := map[string]struct {
		category ErrorCategory
		expected string
	}{
		"argument":      {Argument, "Argument Error"},
		"configuration": {Configuration, "Configuration Error"},
		"prerequisite":  {Prerequisite, "Prerequisite Error"},
		"runtime":       {Runtime, "Runtime Error"},
		"unknown":       {ErrorCategory(99), "Error"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.category.String())
		})
	}
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(errors.New("tag v1.2.3 already exists"), Runtime, "delete the tag or pick a different bump rule")
	require.NotNil(t, wrapped)
	assert.Equal(t, Runtime, wrapped.Category)
	assert.Equal(t, "tag v1.2.3 already exists", wrapped.Message)
	assert.Len(t, wrapped.Remediation, 1)

	assert.Nil(t, Wrap(nil, Runtime))
}

func TestWrapWithMessage(t *testing.T) {
	wrapped := WrapWithMessage(errors.New("permission denied"), Prerequisite, "opening repository")
	require.NotNil(t, wrapped)
	assert.Equal(t, "opening repository: permission denied", wrapped.Message)
}

func TestFormatErrorPlain(t *testing.T) {
	err := NewArgumentErrorWithUsage(
		"unknown bump rule \"hotfix\"",
		"relver bump <patch|minor|major|prepatch|preminor|premajor|prerelease>",
		"run 'relver bump --help' for the full rule list",
	)

	out := FormatErrorPlain(err)
	assert.True(t, strings.HasPrefix(out, "Error [Argument Error]:"))
	assert.Contains(t, out, "Usage: relver bump")
	assert.Contains(t, out, "To fix this:")
	assert.Contains(t, out, "• run 'relver bump --help'")
}

func TestAsCLIError(t *testing.T) {
	cliErr := NewConfigError("bad config")
	assert.Equal(t, cliErr, AsCLIError(cliErr))
	assert.Nil(t, AsCLIError(errors.New("plain")))
}
