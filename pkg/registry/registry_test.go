// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg := Default("default_channel_id", "call_channel_id")

	require.NoError(t, reg.Validate("default_channel_id", "call_channel_id"))

	call, ok := reg.Find("call_channel_id")
	require.True(t, ok)
	assert.Equal(t, ImportanceHigh, call.Importance)
	assert.Equal(t, "red", call.LightColor)
	assert.Equal(t, []int64{0, 1000, 500, 1000}, call.VibrationPattern)

	def, ok := reg.Find("default_channel_id")
	require.True(t, ok)
	assert.Equal(t, ImportanceDefault, def.Importance)
	assert.Equal(t, "blue", def.LightColor)

	_, ok = reg.Find("missing")
	assert.False(t, ok)
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "channels.json")
	reg := Default("general", "calls")

	require.NoError(t, SaveRegistry(reg, path))
	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Channels, loaded.Channels)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		reg           *ChannelRegistry
		required      []string
		errorContains string
	}{
		{
			name:          "empty",
			reg:           &ChannelRegistry{},
			errorContains: "no channels",
		},
		{
			name: "duplicate",
			reg: &ChannelRegistry{Channels: []Channel{
				{ID: "a", Name: "A", Importance: ImportanceDefault},
				{ID: "a", Name: "A2", Importance: ImportanceDefault},
			}},
			errorContains: "duplicate",
		},
		{
			name:          "bad importance",
			reg:           &ChannelRegistry{Channels: []Channel{{ID: "a", Name: "A", Importance: "urgent"}}},
			errorContains: "importance",
		},
		{
			name:          "missing required",
			reg:           &ChannelRegistry{Channels: []Channel{{ID: "a", Name: "A", Importance: ImportanceHigh}}},
			required:      []string{"call_channel_id"},
			errorContains: "call_channel_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate(tt.required...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
