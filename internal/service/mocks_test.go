package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/chat-with-data/internal/llm"
	"github.com/Rrens/chat-with-data/internal/repository"
)

// MockConnector mocks the repository.Connector interface
type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) Connect(ctx context.Context) (repository.Conn, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.Conn), args.Error(1)
}

func (m *MockConnector) Dialect() repository.Dialect {
	return repository.Postgres
}

func (m *MockConnector) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockConnector) Close() {}

// MockConn mocks the repository.Conn interface
type MockConn struct {
	mock.Mock
}

func (m *MockConn) QueryRow(ctx context.Context, query string, args ...any) repository.Row {
	ret := m.Called(ctx, query, args)
	return ret.Get(0).(repository.Row)
}

func (m *MockConn) Query(ctx context.Context, query string, args ...any) (repository.Rows, error) {
	ret := m.Called(ctx, query, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(repository.Rows), ret.Error(1)
}

func (m *MockConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

// stubRow scans a single nullable string column
type stubRow struct {
	value *string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(**string)) = r.value
	return nil
}

// panicRow simulates a driver that blows up mid-scan
type panicRow struct{}

func (panicRow) Scan(...any) error {
	panic("driver exploded")
}

// stubRows serves a fixed result set
type stubRows struct {
	columns []string
	data    [][]any
	pos     int
	closed  bool
}

func (r *stubRows) Columns() []string { return r.columns }

func (r *stubRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Values() ([]any, error) { return r.data[r.pos-1], nil }
func (r *stubRows) Err() error             { return nil }
func (r *stubRows) Close()                 { r.closed = true }

// MockFactory mocks the llm.Factory interface
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) Client(ctx context.Context) (llm.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(llm.Client), args.Error(1)
}

// MockClient mocks the llm.Client interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockQuerier mocks the RowQuerier interface
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) QueryRows(ctx context.Context, query string, maxRows int) ([][]any, error) {
	args := m.Called(ctx, query, maxRows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]any), args.Error(1)
}

func strPtr(s string) *string { return &s }
