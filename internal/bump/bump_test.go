package bump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected Version
		wantErr  bool
	}{
		"plain version": {
			input:    "1.2.3",
			expected: Version{Major: 1, Minor: 2, Patch: 3},
		},
		"v prefix accepted": {
			input:    "v0.6.0",
			expected: Version{Major: 0, Minor: 6, Patch: 0},
		},
		"prerelease preserved": {
			input:    "2.0.0-rc.1",
			expected: Version{Major: 2, Minor: 0, Patch: 0, Prerelease: "rc.1"},
		},
		"build metadata stripped": {
			input:    "1.0.0+build.5",
			expected: Version{Major: 1, Minor: 0, Patch: 0},
		},
		"missing patch": {
			input:   "1.2",
			wantErr: true,
		},
		"not a version": {
			input:   "latest",
			wantErr: true,
		},
		"empty string": {
			input:   "",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApply(t *testing.T) {
	tests := map[string]struct {
		current  string
		rule     Rule
		expected string
	}{
		"patch":                        {"1.2.3", Patch, "1.2.4"},
		"minor resets patch":           {"1.2.3", Minor, "1.3.0"},
		"major resets minor and patch": {"1.2.3", Major, "2.0.0"},
		"patch finalizes prerelease":   {"1.2.3-0", Patch, "1.2.3"},
		"minor drops prerelease":       {"1.2.3-rc.1", Minor, "1.3.0"},
		"prepatch":                     {"1.2.3", Prepatch, "1.2.4-0"},
		"preminor":                     {"1.2.3", Preminor, "1.3.0-0"},
		"premajor":                     {"1.2.3", Premajor, "2.0.0-0"},
		"prerelease from stable":       {"1.2.3", Prerelease, "1.2.4-0"},
		"prerelease increments":        {"1.2.4-0", Prerelease, "1.2.4-1"},
		"prerelease keeps identifier":  {"2.0.0-rc.1", Prerelease, "2.0.0-rc.2"},
		"prerelease appends numeric":   {"2.0.0-rc", Prerelease, "2.0.0-rc.0"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			current, err := Parse(tt.current)
			require.NoError(t, err)

			got, err := Apply(current, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestNext_AlwaysAdvances(t *testing.T) {
	versions := []string{"0.0.1", "0.6.0", "1.2.3", "1.2.3-0", "2.0.0-rc.1"}

	for _, current := range versions {
		for _, rule := range Rules() {
			t.Run(current+"/"+string(rule), func(t *testing.T) {
				parsed, err := Parse(current)
				require.NoError(t, err)

				next, err := Next(current, rule)
				require.NoError(t, err)
				assert.Equal(t, 1, Compare(next, parsed),
					"bump %s on %s produced %s, which does not advance", rule, current, next)
			})
		}
	}
}

func TestParseRule(t *testing.T) {
	for _, r := range Rules() {
		got, err := ParseRule(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRule("hotfix")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid:")
}

func TestCanonical(t *testing.T) {
	v, err := Parse("1.2.3-rc.1")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3-rc.1", v.Canonical())
	assert.Equal(t, "1.2.3-rc.1", v.String())
}
