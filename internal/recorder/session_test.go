package recorder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp())
	return db
}

func TestSessionJournalsCompletedRotations(t *testing.T) {
	db := openTestDB(t)
	state, err := NewStateFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	s := NewSession(db, state, nil)
	id, err := s.Start("script", "")
	require.NoError(t, err)
	assert.Equal(t, StateRecording, s.State())
	assert.Equal(t, id, state.LastSessionID())

	cube, err := rubikal.New(rubikal.OnRotationComplete(s.Hook()))
	require.NoError(t, err)

	require.NoError(t, cube.RotateFaces("R", "Ui"))
	require.NoError(t, cube.Rotate(rubikal.Rotation{
		Slice:     rubikal.Slice{Axis: rubikal.AxisX, Index: 1},
		Direction: rubikal.DirectionUp,
	}))
	_, err = cube.RunUntilIdle(1000)
	require.NoError(t, err)

	require.NoError(t, s.End())
	assert.Equal(t, 3, s.Count())
	assert.NoError(t, s.Err())

	recs, err := storage.NewRotationRepository(db).GetBySession(id)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "R", recs[0].Token)
	assert.Equal(t, "x2", recs[0].Slice)
	assert.Equal(t, "down", recs[0].Direction)
	assert.Equal(t, uint64(1), recs[0].StartTick)
	assert.Equal(t, uint64(30), recs[0].CompleteTick)

	assert.Equal(t, "Ui", recs[1].Token)
	assert.Equal(t, "up", recs[1].Direction)

	assert.Equal(t, "", recs[2].Token)
	assert.Equal(t, "x1", recs[2].Slice)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{recs[0].Seq, recs[1].Seq, recs[2].Seq})
}

func TestSessionStates(t *testing.T) {
	db := openTestDB(t)
	s := NewSession(db, nil, nil)

	assert.Equal(t, StateIdle, s.State())
	assert.ErrorIs(t, s.End(), ErrNotRecording)
	assert.NoError(t, s.Record(rubikal.RotationEvent{Rotation: rubikal.R, Seq: 1}))
	assert.Equal(t, 0, s.Count())

	_, err := s.Start("keyboard", "")
	require.NoError(t, err)
	_, err = s.Start("keyboard", "")
	assert.ErrorIs(t, err, ErrAlreadyRecording)

	require.NoError(t, s.Record(rubikal.RotationEvent{Rotation: rubikal.R, Seq: 1}))
	assert.Error(t, s.Record(rubikal.RotationEvent{Rotation: rubikal.R, Seq: 1}))
	assert.Error(t, s.Err())

	require.NoError(t, s.End())
	assert.Equal(t, StateEnded, s.State())
	assert.Zero(t, s.Elapsed())
}

func TestStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.json")

	sf, err := NewStateFile(path)
	require.NoError(t, err)
	assert.Empty(t, sf.LastSessionID())

	require.NoError(t, sf.SetLastDevice("GoCube_1234", "AA:BB"))
	require.NoError(t, sf.SetLastSession("abc"))

	reloaded, err := NewStateFile(path)
	require.NoError(t, err)
	assert.Equal(t, AppState{
		LastSessionID:     "abc",
		LastDeviceName:    "GoCube_1234",
		LastDeviceAddress: "AA:BB",
	}, reloaded.State())
}
