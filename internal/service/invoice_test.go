package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/chat-with-data/internal/repository"
)

const nameQuery = `SELECT "invoiceName" FROM invoices WHERE invoices."id" = $1`

func TestInvoiceService_GetInvoiceName(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		row  repository.Row
		want string
	}{
		{"found", stubRow{value: strPtr("Acme Corp")}, "Acme Corp"},
		{"no matching row", stubRow{err: repository.ErrNoRows}, ""},
		{"null value", stubRow{}, ""},
		{"query error", stubRow{err: errors.New("connection reset")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := new(MockConn)
			conn.On("QueryRow", ctx, nameQuery, []any{"ABC123"}).Return(tt.row)
			conn.On("Close").Return(nil)

			store := new(MockConnector)
			store.On("Connect", ctx).Return(conn, nil)

			svc := NewInvoiceService(store)

			assert.Equal(t, tt.want, svc.GetInvoiceName(ctx, "ABC123"))
			conn.AssertNumberOfCalls(t, "Close", 1)
		})
	}
}

func TestInvoiceService_GetInvoiceUpdateHistory(t *testing.T) {
	ctx := context.Background()
	query := `SELECT "updateHistory" FROM invoices WHERE invoices."id" = $1`

	conn := new(MockConn)
	conn.On("QueryRow", ctx, query, []any{"ABC123"}).Return(stubRow{value: strPtr("2024-01-02: paid")})
	conn.On("Close").Return(nil)

	store := new(MockConnector)
	store.On("Connect", ctx).Return(conn, nil)

	svc := NewInvoiceService(store)

	assert.Equal(t, "2024-01-02: paid", svc.GetInvoiceUpdateHistory(ctx, "ABC123"))
	conn.AssertNumberOfCalls(t, "Close", 1)
}

func TestInvoiceService_BindsInvoiceID(t *testing.T) {
	ctx := context.Background()
	hostile := "x' OR '1'='1"

	conn := new(MockConn)
	conn.On("QueryRow", ctx, nameQuery, []any{hostile}).Return(stubRow{err: repository.ErrNoRows})
	conn.On("Close").Return(nil)

	store := new(MockConnector)
	store.On("Connect", ctx).Return(conn, nil)

	assert.Equal(t, "", NewInvoiceService(store).GetInvoiceName(ctx, hostile))
	conn.AssertExpectations(t)
}

func TestInvoiceService_ConnectionFailure(t *testing.T) {
	ctx := context.Background()

	store := new(MockConnector)
	store.On("Connect", ctx).Return(nil, errors.New("login timeout"))

	svc := NewInvoiceService(store)

	assert.Nil(t, svc.GetConnection(ctx))
	assert.Equal(t, "", svc.GetInvoiceName(ctx, "ABC123"))
	assert.Equal(t, "", svc.GetInvoiceUpdateHistory(ctx, "ABC123"))
}

func TestInvoiceService_NilStore(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(nil)

	assert.Nil(t, svc.GetConnection(ctx))
	assert.Equal(t, "", svc.GetInvoiceName(ctx, "ABC123"))
	assert.ErrorIs(t, svc.Ready(ctx), ErrStoreUnavailable)

	_, err := svc.QueryRows(ctx, "SELECT 1", 10)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestInvoiceService_ClosesConnectionOnPanic(t *testing.T) {
	ctx := context.Background()

	conn := new(MockConn)
	conn.On("QueryRow", ctx, nameQuery, []any{"ABC123"}).Return(panicRow{})
	conn.On("Close").Return(nil)

	store := new(MockConnector)
	store.On("Connect", ctx).Return(conn, nil)

	svc := NewInvoiceService(store)

	assert.Panics(t, func() { svc.GetInvoiceName(ctx, "ABC123") })
	conn.AssertNumberOfCalls(t, "Close", 1)
}

func TestInvoiceService_Ready(t *testing.T) {
	ctx := context.Background()

	store := new(MockConnector)
	store.On("Ping", ctx).Return(errors.New("unreachable")).Once()
	store.On("Ping", ctx).Return(nil).Once()

	svc := NewInvoiceService(store)

	assert.Error(t, svc.Ready(ctx))
	assert.NoError(t, svc.Ready(ctx))
}

func TestInvoiceService_QueryRows(t *testing.T) {
	ctx := context.Background()
	query := "SELECT id FROM invoices LIMIT 2"

	rows := &stubRows{
		columns: []string{"id"},
		data:    [][]any{{"A"}, {"B"}, {"C"}},
	}

	conn := new(MockConn)
	conn.On("Query", ctx, query, mock.Anything).Return(rows, nil)
	conn.On("Close").Return(nil)

	store := new(MockConnector)
	store.On("Connect", ctx).Return(conn, nil)

	got, err := NewInvoiceService(store).QueryRows(ctx, query, 2)
	assert.NoError(t, err)
	assert.Equal(t, [][]any{{"A"}, {"B"}}, got)
	assert.True(t, rows.closed)
	conn.AssertNumberOfCalls(t, "Close", 1)
}
