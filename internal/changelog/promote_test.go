package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingChangelog() *Changelog {
	return &Changelog{
		Project: "widget",
		Versions: []Version{
			{
				Version: UnreleasedID,
				Changes: Changes{
					Added: []string{"New flag"},
					Fixed: []string{"Crash on empty input"},
				},
			},
			{
				Version: "1.0.0",
				Date:    "2026-01-15",
				Changes: Changes{Added: []string{"Initial release"}},
			},
		},
	}
}

func TestPromote(t *testing.T) {
	c := pendingChangelog()
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.Promote("1.1.0", now))

	assert.Nil(t, c.Unreleased(), "unreleased section should be gone after promote")

	released, err := c.GetVersion("1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-25", released.Date)
	assert.Equal(t, []string{"New flag"}, released.Changes.Added)
	assert.Equal(t, []string{"Crash on empty input"}, released.Changes.Fixed)

	// Every pending entry moved exactly once.
	assert.Equal(t, 3, c.EntryCount())
	require.NoError(t, c.Validate())
}

func TestPromote_NormalizesVPrefix(t *testing.T) {
	c := pendingChangelog()
	require.NoError(t, c.Promote("v1.1.0", time.Now()))

	released, err := c.GetVersion("1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", released.Version)
}

func TestPromote_Errors(t *testing.T) {
	tests := map[string]struct {
		changelog *Changelog
		version   string
		wantMsg   string
	}{
		"no unreleased section": {
			changelog: &Changelog{
				Project: "widget",
				Versions: []Version{
					{Version: "1.0.0", Date: "2026-01-15", Changes: Changes{Added: []string{"x"}}},
				},
			},
			version: "1.1.0",
			wantMsg: "no unreleased changes",
		},
		"empty unreleased section": {
			changelog: &Changelog{
				Project:  "widget",
				Versions: []Version{{Version: UnreleasedID}},
			},
			version: "1.1.0",
			wantMsg: "no unreleased changes",
		},
		"version already released": {
			changelog: pendingChangelog(),
			version:   "1.0.0",
			wantMsg:   "already exists",
		},
		"invalid version": {
			changelog: pendingChangelog(),
			version:   "banana",
			wantMsg:   "invalid semver",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.changelog.Promote(tt.version, time.Now())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAddEntry(t *testing.T) {
	c := &Changelog{
		Project: "widget",
		Versions: []Version{
			{Version: "1.0.0", Date: "2026-01-15", Changes: Changes{Added: []string{"x"}}},
		},
	}

	require.NoError(t, c.AddEntry("fixed", "Handle empty tag list"))

	unreleased := c.Unreleased()
	require.NotNil(t, unreleased, "AddEntry should create the unreleased section")
	assert.Equal(t, UnreleasedID, c.Versions[0].Version, "unreleased section goes first")
	assert.Equal(t, []string{"Handle empty tag list"}, unreleased.Changes.Fixed)

	require.NoError(t, c.AddEntry("fixed", "Second fix"))
	assert.Len(t, c.Unreleased().Changes.Fixed, 2)
}

func TestAddEntry_Invalid(t *testing.T) {
	c := &Changelog{Project: "widget"}

	err := c.AddEntry("improved", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	err = c.AddEntry("added", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}
