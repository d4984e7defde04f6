// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/inventa-tools/inventa-cli/api/schemas"
)

// -- PageDriver Mock --

// MockPageDriver mocks schemas.PageDriver.
type MockPageDriver struct {
	mock.Mock
}

var _ schemas.PageDriver = (*MockPageDriver)(nil)

func (m *MockPageDriver) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockPageDriver) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	args := m.Called(ctx, selector, timeout)
	return args.Bool(0), args.Error(1)
}

func (m *MockPageDriver) Exists(ctx context.Context, selector string) (bool, error) {
	args := m.Called(ctx, selector)
	return args.Bool(0), args.Error(1)
}

func (m *MockPageDriver) Click(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPageDriver) Fill(ctx context.Context, selector, value string) error {
	args := m.Called(ctx, selector, value)
	return args.Error(0)
}

func (m *MockPageDriver) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	args := m.Called(ctx, selector, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Eval copies the value registered via OnEval into out.
func (m *MockPageDriver) Eval(ctx context.Context, expr string, out any) error {
	args := m.Called(ctx, expr, out)
	if fn, ok := args.Get(0).(func(out any)); ok && fn != nil {
		fn(out)
	}
	return args.Error(1)
}

func (m *MockPageDriver) Settle(ctx context.Context, d time.Duration) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockPageDriver) WaitNetworkIdle(ctx context.Context, timeout time.Duration) error {
	args := m.Called(ctx, timeout)
	return args.Error(0)
}

func (m *MockPageDriver) Screenshot(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockPageDriver) Content(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPageDriver) SetCookies(ctx context.Context, cookies []schemas.Cookie) error {
	args := m.Called(ctx, cookies)
	return args.Error(0)
}

func (m *MockPageDriver) SeedOriginStorage(ctx context.Context, state *schemas.SessionState) (int, error) {
	args := m.Called(ctx, state)
	return args.Int(0), args.Error(1)
}

func (m *MockPageDriver) SessionState(ctx context.Context) (*schemas.SessionState, error) {
	args := m.Called(ctx)
	state, _ := args.Get(0).(*schemas.SessionState)
	return state, args.Error(1)
}

// -- Workflow Component Mocks --

type MockBrowser struct {
	mock.Mock
}

func (m *MockBrowser) NewPage(ctx context.Context) (schemas.PageDriver, func(), error) {
	args := m.Called(ctx)
	page, _ := args.Get(0).(schemas.PageDriver)
	release, _ := args.Get(1).(func())
	if release == nil {
		release = func() {}
	}
	return page, release, args.Error(2)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Restore(ctx context.Context, page schemas.PageDriver) bool {
	args := m.Called(ctx, page)
	return args.Bool(0)
}

func (m *MockSessionStore) SeedStorage(ctx context.Context, page schemas.PageDriver) bool {
	args := m.Called(ctx, page)
	return args.Bool(0)
}

func (m *MockSessionStore) Persist(ctx context.Context, page schemas.PageDriver) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) IsLoginPage(ctx context.Context, page schemas.PageDriver) bool {
	args := m.Called(ctx, page)
	return args.Bool(0)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, page schemas.PageDriver, username, password string) error {
	args := m.Called(ctx, page, username, password)
	return args.Error(0)
}

type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Dismiss(ctx context.Context, page schemas.PageDriver) {
	m.Called(ctx, page)
}

type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) ToProductTable(ctx context.Context, page schemas.PageDriver) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, page schemas.PageDriver) (schemas.ResultSet, error) {
	args := m.Called(ctx, page)
	results, _ := args.Get(0).(schemas.ResultSet)
	return results, args.Error(1)
}

type MockResultWriter struct {
	mock.Mock
}

func (m *MockResultWriter) Write(results schemas.ResultSet) (string, error) {
	args := m.Called(results)
	return args.String(0), args.Error(1)
}
