// Package storetest holds the conformance suite every Store backend must
// pass.
package storetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftnight/draft-backend/internal/engine"
	"github.com/draftnight/draft-backend/internal/store"
)

func sampleSnapshot(round int) store.Snapshot {
	roster := []engine.Player{
		{ID: "101", Name: "Ada"},
		{ID: "102", Name: "Grace", Attrs: map[string]string{"position": "pitcher"}},
	}
	cfg := engine.DefaultConfig()
	state := engine.NewState(cfg, roster)
	state.Round = round

	return store.Snapshot{
		Players: roster,
		Config:  cfg,
		Session: state,
		SavedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Run exercises the Store contract against a fresh backend per subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("load without prior snapshot is ErrNotFound", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		_, err := s.Load()
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		want := sampleSnapshot(1)
		require.NoError(t, s.Save(want))

		got, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, want.Players, got.Players)
		assert.Equal(t, want.Config, got.Config)
		assert.Equal(t, want.Session, got.Session)
		assert.True(t, want.SavedAt.Equal(got.SavedAt))
	})

	t.Run("save overwrites the previous snapshot", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.Save(sampleSnapshot(1)))
		require.NoError(t, s.Save(sampleSnapshot(7)))

		got, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, 7, got.Session.Round)
	})

	t.Run("append event accepts entries without ids", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.AppendEvent(store.Entry{Type: "draftStarted"}))
		require.NoError(t, s.AppendEvent(store.Entry{Type: "draftUpdated", Context: "pick 101"}))
	})
}
