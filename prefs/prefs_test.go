package prefs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "go-midimix/prefs"
)

func TestOpenMissingFileGivesDefaults(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	assert.False(t, st.SwapMuteSolo())
	assert.Equal(t, ExclusiveUser, st.ExclusiveSolo())
}

func TestSettingsRoundTripThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prefs.json")
	st, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, st.SetSwapMuteSolo(true))
	require.NoError(t, st.SetExclusiveSolo(ExclusiveOff))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exclusive_solo": "Off"`)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.True(t, reopened.SwapMuteSolo())
	assert.Equal(t, ExclusiveOff, reopened.ExclusiveSolo())
}

func TestObserversOnlyFireOnChange(t *testing.T) {
	st := NewMemory(Settings{})

	var swaps []bool
	var policies []Exclusive
	st.OnSwapMuteSolo(func(on bool) { swaps = append(swaps, on) })
	st.OnExclusiveSolo(func(e Exclusive) { policies = append(policies, e) })

	require.NoError(t, st.SetSwapMuteSolo(false))
	require.NoError(t, st.SetSwapMuteSolo(true))
	require.NoError(t, st.SetSwapMuteSolo(true))
	require.NoError(t, st.SetExclusiveSolo(ExclusiveOn))
	require.NoError(t, st.SetExclusiveSolo(ExclusiveOn))

	assert.Equal(t, []bool{true}, swaps)
	assert.Equal(t, []Exclusive{ExclusiveOn}, policies)
}

func TestObserverMayReadStore(t *testing.T) {
	st := NewMemory(Settings{})
	var seen bool
	st.OnSwapMuteSolo(func(bool) { seen = st.SwapMuteSolo() })

	require.NoError(t, st.SetSwapMuteSolo(true))
	assert.True(t, seen)
}

func TestParseExclusive(t *testing.T) {
	for in, want := range map[string]Exclusive{"user": ExclusiveUser, "ON": ExclusiveOn, " off ": ExclusiveOff} {
		got, err := ParseExclusive(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseExclusive("sometimes")
	assert.Error(t, err)

	assert.Equal(t, ExclusiveOn, ExclusiveUser.Next())
	assert.Equal(t, ExclusiveUser, ExclusiveOff.Next())
}

func TestSetExclusiveRejectsOutOfRange(t *testing.T) {
	st := NewMemory(Settings{})
	assert.Error(t, st.SetExclusiveSolo(Exclusive(7)))
	assert.Equal(t, ExclusiveUser, st.ExclusiveSolo())
}

func TestOpenRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))
	_, err := Open(path)
	assert.Error(t, err)
}
