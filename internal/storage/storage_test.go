package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp())
	return db
}

func TestMigrateUp(t *testing.T) {
	db := openTestDB(t)

	v, err := db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Idempotent
	require.NoError(t, db.MigrateUp())
	v, err = db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSessions(t *testing.T) {
	db := openTestDB(t)
	sessions := NewSessionRepository(db)

	t.Run("create and get", func(t *testing.T) {
		id, err := sessions.Create("keyboard", "warm up")
		require.NoError(t, err)
		assert.Len(t, id, 36)

		s, err := sessions.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "keyboard", s.Source)
		require.NotNil(t, s.Notes)
		assert.Equal(t, "warm up", *s.Notes)
		assert.Nil(t, s.EndedAt)
		assert.False(t, s.StartedAt.IsZero())

		require.NoError(t, sessions.End(id))
		s, err = sessions.Get(id)
		require.NoError(t, err)
		assert.NotNil(t, s.EndedAt)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := sessions.Get("nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, sessions.End("nope"), ErrSessionNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		first, err := sessions.Create("script", "")
		require.NoError(t, err)
		second, err := sessions.Create("ble", "")
		require.NoError(t, err)

		list, err := sessions.List(2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second, list[0].SessionID)
		assert.Equal(t, first, list[1].SessionID)
		assert.Nil(t, list[0].Notes)
	})
}

func TestRotations(t *testing.T) {
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	rotations := NewRotationRepository(db)

	id, err := sessions.Create("script", "")
	require.NoError(t, err)

	_, err = rotations.Append(RotationRecord{
		SessionID: id, Seq: 1, Token: "R", Slice: "x2", Direction: "down",
		StartTick: 1, CompleteTick: 30,
	})
	require.NoError(t, err)

	require.NoError(t, rotations.AppendBatch([]RotationRecord{
		{SessionID: id, Seq: 2, Token: "U", Slice: "y2", Direction: "down", StartTick: 35, CompleteTick: 64},
		{SessionID: id, Seq: 3, Token: "", Slice: "x1", Direction: "up", StartTick: 69, CompleteTick: 98},
	}))

	recs, err := rotations.GetBySession(id)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"R", "U", ""}, []string{recs[0].Token, recs[1].Token, recs[2].Token})
	assert.Equal(t, uint64(98), recs[2].CompleteTick)
	assert.False(t, recs[0].RecordedAt.IsZero())

	n, err := rotations.Count(id)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	s, err := sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 3, s.RotationCount)

	t.Run("duplicate seq rolls back batch", func(t *testing.T) {
		err := rotations.AppendBatch([]RotationRecord{
			{SessionID: id, Seq: 4, Token: "F", Slice: "z2", Direction: "down"},
			{SessionID: id, Seq: 1, Token: "F", Slice: "z2", Direction: "down"},
		})
		assert.Error(t, err)

		n, err := rotations.Count(id)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("unknown session rejected", func(t *testing.T) {
		_, err := rotations.Append(RotationRecord{SessionID: "nope", Seq: 1, Slice: "x0", Direction: "up"})
		assert.Error(t, err)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, sessions.Delete(id))
		n, err := rotations.Count(id)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}
