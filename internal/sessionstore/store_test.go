// File: internal/sessionstore/store_test.go
package sessionstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
	"github.com/inventa-tools/inventa-cli/internal/mocks"
)

func sampleState() *schemas.SessionState {
	return &schemas.SessionState{
		Cookies: []schemas.Cookie{
			{Name: "sid", Value: "abc123", Domain: "hiring.idenhq.com", Path: "/"},
		},
		Origins: []schemas.OriginState{
			{
				Origin: "https://hiring.idenhq.com",
				LocalStorage: []schemas.StorageEntry{
					{Name: "token", Value: "jwt-value"},
				},
			},
		},
	}
}

func writeStateFile(t *testing.T, state *schemas.SessionState) string {
	t.Helper()
	data, err := json.Marshal(state)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "session_data.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestStoreRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file means no session", func(t *testing.T) {
		page := new(mocks.MockPageDriver)
		store := New(filepath.Join(t.TempDir(), "absent.json"), t.TempDir(), zap.NewNop())

		assert.False(t, store.Restore(ctx, page))
		page.AssertNotCalled(t, "SetCookies", mock.Anything, mock.Anything)
	})

	t.Run("corrupt file means no session", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session_data.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		page := new(mocks.MockPageDriver)
		store := New(path, t.TempDir(), zap.NewNop())

		assert.False(t, store.Restore(ctx, page))
		page.AssertNotCalled(t, "SetCookies", mock.Anything, mock.Anything)
	})

	t.Run("valid file installs cookies", func(t *testing.T) {
		state := sampleState()
		path := writeStateFile(t, state)

		page := new(mocks.MockPageDriver)
		page.On("SetCookies", mock.Anything, state.Cookies).Return(nil).Once()

		store := New(path, t.TempDir(), zap.NewNop())
		assert.True(t, store.Restore(ctx, page))
		page.AssertExpectations(t)
	})

	t.Run("cookie failure means no session", func(t *testing.T) {
		path := writeStateFile(t, sampleState())

		page := new(mocks.MockPageDriver)
		page.On("SetCookies", mock.Anything, mock.Anything).
			Return(errors.New("tab gone")).Once()

		store := New(path, t.TempDir(), zap.NewNop())
		assert.False(t, store.Restore(ctx, page))
	})

	t.Run("restore is idempotent", func(t *testing.T) {
		path := writeStateFile(t, sampleState())

		page := new(mocks.MockPageDriver)
		page.On("SetCookies", mock.Anything, mock.Anything).Return(nil).Twice()

		store := New(path, t.TempDir(), zap.NewNop())
		assert.True(t, store.Restore(ctx, page))
		assert.True(t, store.Restore(ctx, page))
		page.AssertExpectations(t)
	})
}

func TestStoreSeedStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to seed without a restored state", func(t *testing.T) {
		page := new(mocks.MockPageDriver)
		store := New(filepath.Join(t.TempDir(), "absent.json"), t.TempDir(), zap.NewNop())

		assert.False(t, store.SeedStorage(ctx, page))
		page.AssertNotCalled(t, "SeedOriginStorage", mock.Anything, mock.Anything)
	})

	t.Run("seeds the restored origins", func(t *testing.T) {
		path := writeStateFile(t, sampleState())

		page := new(mocks.MockPageDriver)
		page.On("SetCookies", mock.Anything, mock.Anything).Return(nil).Once()
		page.On("SeedOriginStorage", mock.Anything, mock.Anything).Return(1, nil).Once()

		store := New(path, t.TempDir(), zap.NewNop())
		require.True(t, store.Restore(ctx, page))
		assert.True(t, store.SeedStorage(ctx, page))
		page.AssertExpectations(t)
	})

	t.Run("seed failure reports not applied", func(t *testing.T) {
		path := writeStateFile(t, sampleState())

		page := new(mocks.MockPageDriver)
		page.On("SetCookies", mock.Anything, mock.Anything).Return(nil).Once()
		page.On("SeedOriginStorage", mock.Anything, mock.Anything).
			Return(0, errors.New("evaluate failed")).Once()

		store := New(path, t.TempDir(), zap.NewNop())
		require.True(t, store.Restore(ctx, page))
		assert.False(t, store.SeedStorage(ctx, page))
	})

	t.Run("origin mismatch reports not applied", func(t *testing.T) {
		path := writeStateFile(t, sampleState())

		page := new(mocks.MockPageDriver)
		page.On("SetCookies", mock.Anything, mock.Anything).Return(nil).Once()
		// The stored origins exist but none matched the current page, so the
		// caller must not bother reloading.
		page.On("SeedOriginStorage", mock.Anything, mock.Anything).Return(0, nil).Once()

		store := New(path, t.TempDir(), zap.NewNop())
		require.True(t, store.Restore(ctx, page))
		assert.False(t, store.SeedStorage(ctx, page))
	})
}

func TestStorePersist(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the captured state with tight permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session_data.json")
		state := sampleState()

		page := new(mocks.MockPageDriver)
		page.On("SessionState", mock.Anything).Return(state, nil).Once()

		store := New(path, t.TempDir(), zap.NewNop())
		require.NoError(t, store.Persist(ctx, page))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got schemas.SessionState
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, state.Cookies, got.Cookies)
		assert.Equal(t, state.Origins, got.Origins)
	})

	t.Run("origins without storage entries still persist", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session_data.json")
		state := &schemas.SessionState{
			Origins: []schemas.OriginState{{Origin: "https://hiring.idenhq.com"}},
		}

		page := new(mocks.MockPageDriver)
		page.On("SessionState", mock.Anything).Return(state, nil).Once()

		store := New(path, t.TempDir(), zap.NewNop())
		require.NoError(t, store.Persist(ctx, page))
		assert.FileExists(t, path)
		page.AssertNotCalled(t, "Screenshot", mock.Anything, mock.Anything)
	})

	t.Run("empty capture is never written", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session_data.json")
		diagDir := t.TempDir()

		page := new(mocks.MockPageDriver)
		page.On("SessionState", mock.Anything).Return(&schemas.SessionState{}, nil).Once()
		page.On("Screenshot", mock.Anything, filepath.Join(diagDir, emptySessionShot)).
			Return(nil).Once()

		store := New(path, diagDir, zap.NewNop())
		require.NoError(t, store.Persist(ctx, page))

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "no session file should exist")
		page.AssertExpectations(t)
	})

	t.Run("capture failure surfaces", func(t *testing.T) {
		page := new(mocks.MockPageDriver)
		page.On("SessionState", mock.Anything).
			Return(nil, errors.New("cdp closed")).Once()

		store := New(filepath.Join(t.TempDir(), "s.json"), t.TempDir(), zap.NewNop())
		assert.Error(t, store.Persist(ctx, page))
	})
}
