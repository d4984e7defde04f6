// File: internal/auth/auth_test.go
package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
	"github.com/inventa-tools/inventa-cli/internal/mocks"
)

func TestIsLoginPage(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name  string
		found bool
		err   error
		want  bool
	}{
		{name: "email field visible", found: true, want: true},
		{name: "email field absent", found: false, want: false},
		{name: "probe error treated as absent", err: errors.New("tab closed"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page := new(mocks.MockPageDriver)
			page.On("WaitVisible", mock.Anything, emailSelector, loginProbeTimeout).
				Return(tc.found, tc.err).Once()

			a := New(t.TempDir(), zap.NewNop())
			assert.Equal(t, tc.want, a.IsLoginPage(ctx, page))
			page.AssertExpectations(t)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("fills, submits and waits for the marker", func(t *testing.T) {
		page := new(mocks.MockPageDriver)
		page.On("WaitVisible", mock.Anything, emailSelector, fieldTimeout).Return(true, nil).Once()
		page.On("WaitVisible", mock.Anything, passwordSelector, fieldTimeout).Return(true, nil).Once()
		page.On("Fill", mock.Anything, emailSelector, "user@example.com").Return(nil).Once()
		page.On("Fill", mock.Anything, passwordSelector, "secret").Return(nil).Once()
		page.On("Click", mock.Anything, submitSelector).Return(nil).Once()
		page.On("WaitVisible", mock.Anything, postLoginMarker, markerTimeout).Return(true, nil).Once()

		a := New(t.TempDir(), zap.NewNop())
		require.NoError(t, a.Authenticate(ctx, page, "user@example.com", "secret"))
		page.AssertExpectations(t)
	})

	t.Run("missing login field fails with diagnostics", func(t *testing.T) {
		diagDir := t.TempDir()

		page := new(mocks.MockPageDriver)
		page.On("WaitVisible", mock.Anything, emailSelector, fieldTimeout).Return(false, nil).Once()
		page.On("Screenshot", mock.Anything, filepath.Join(diagDir, authErrorShot)).Return(nil).Once()

		a := New(diagDir, zap.NewNop())
		err := a.Authenticate(ctx, page, "u", "p")
		require.Error(t, err)

		var authErr *schemas.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Reason, emailSelector)
		page.AssertExpectations(t)
	})

	t.Run("rejected credentials fail when the marker never appears", func(t *testing.T) {
		diagDir := t.TempDir()

		page := new(mocks.MockPageDriver)
		page.On("WaitVisible", mock.Anything, emailSelector, fieldTimeout).Return(true, nil).Once()
		page.On("WaitVisible", mock.Anything, passwordSelector, fieldTimeout).Return(true, nil).Once()
		page.On("Fill", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
		page.On("Click", mock.Anything, submitSelector).Return(nil).Once()
		page.On("WaitVisible", mock.Anything, postLoginMarker, markerTimeout).Return(false, nil).Once()
		page.On("Screenshot", mock.Anything, filepath.Join(diagDir, authErrorShot)).Return(nil).Once()

		a := New(diagDir, zap.NewNop())
		err := a.Authenticate(ctx, page, "u", "p")

		var authErr *schemas.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Reason, "marker")
		page.AssertExpectations(t)
	})

	t.Run("submit failure is fatal", func(t *testing.T) {
		diagDir := t.TempDir()
		cause := errors.New("node detached")

		page := new(mocks.MockPageDriver)
		page.On("WaitVisible", mock.Anything, mock.Anything, fieldTimeout).Return(true, nil).Twice()
		page.On("Fill", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
		page.On("Click", mock.Anything, submitSelector).Return(cause).Once()
		page.On("Screenshot", mock.Anything, mock.Anything).Return(nil).Once()

		a := New(diagDir, zap.NewNop())
		err := a.Authenticate(ctx, page, "u", "p")
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("screenshot failure does not mask the auth error", func(t *testing.T) {
		page := new(mocks.MockPageDriver)
		page.On("WaitVisible", mock.Anything, emailSelector, fieldTimeout).Return(false, nil).Once()
		page.On("Screenshot", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		a := New(t.TempDir(), zap.NewNop())
		var authErr *schemas.AuthError
		assert.ErrorAs(t, a.Authenticate(ctx, page, "u", "p"), &authErr)
	})
}
