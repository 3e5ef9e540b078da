package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name        string
		tag         string
		filter      Filter
		expectError bool
		wantMajor   uint64
		wantVariant string
	}{
		{
			name:        "plain version",
			tag:         "17.2",
			filter:      DefaultFilter(),
			wantMajor:   17,
			wantVariant: "",
		},
		{
			name:        "fpm variant",
			tag:         "29.0.4-fpm",
			filter:      NextcloudFPMFilter(),
			wantMajor:   29,
			wantVariant: "fpm",
		},
		{
			name:        "major only fpm",
			tag:         "29-fpm",
			filter:      NextcloudFPMFilter(),
			wantMajor:   29,
			wantVariant: "fpm",
		},
		{
			name:        "latest is not a version",
			tag:         "latest",
			filter:      DefaultFilter(),
			expectError: true,
		},
		{
			name:        "deny-listed rc tag",
			tag:         "30.0.0rc1",
			filter:      DefaultFilter(),
			expectError: true,
		},
		{
			name:        "deny-listed apache flavor",
			tag:         "29.0.4-apache",
			filter:      NextcloudFPMFilter(),
			expectError: true,
		},
		{
			name:        "missing required fpm suffix",
			tag:         "29.0.4",
			filter:      NextcloudFPMFilter(),
			expectError: true,
		},
		{
			name:        "windows platform variant",
			tag:         "1.25.2-windows",
			filter:      DefaultFilter(),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vt, err := ParseTag(tt.tag, tt.filter)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tag, vt.Tag)
			assert.Equal(t, tt.wantMajor, vt.Major())
			assert.Equal(t, tt.wantVariant, vt.Variant)
		})
	}
}

func TestCollapseMajorsKeepsHighestPerMajor(t *testing.T) {
	filter := NextcloudFPMFilter()
	var tags []VersionTag
	for _, raw := range []string{"29.0.4-fpm", "29.0.1-fpm", "28.0.9-fpm", "28.0.2-fpm", "27.1.0-fpm"} {
		vt, err := ParseTag(raw, filter)
		require.NoError(t, err)
		tags = append(tags, vt)
	}
	sortDescending(tags)

	out := collapseMajors(tags, 10)
	require.Len(t, out, 3)
	assert.Equal(t, "29.0.4-fpm", out[0].Tag)
	assert.Equal(t, "28.0.9-fpm", out[1].Tag)
	assert.Equal(t, "27.1.0-fpm", out[2].Tag)
}

func TestCollapseMajorsRespectsCap(t *testing.T) {
	filter := DefaultFilter()
	var tags []VersionTag
	for _, raw := range []string{"17.2", "16.4", "15.8", "14.11"} {
		vt, err := ParseTag(raw, filter)
		require.NoError(t, err)
		tags = append(tags, vt)
	}
	sortDescending(tags)

	out := collapseMajors(tags, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "17.2", out[0].Tag)
	assert.Equal(t, "16.4", out[1].Tag)
}

func TestSortDescendingIsNumeric(t *testing.T) {
	filter := DefaultFilter()
	var tags []VersionTag
	for _, raw := range []string{"9.6", "10.1", "2.0"} {
		vt, err := ParseTag(raw, filter)
		require.NoError(t, err)
		tags = append(tags, vt)
	}
	sortDescending(tags)

	assert.Equal(t, "10.1", tags[0].Tag)
	assert.Equal(t, "9.6", tags[1].Tag)
	assert.Equal(t, "2.0", tags[2].Tag)
}
