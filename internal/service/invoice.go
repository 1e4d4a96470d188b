package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-with-data/internal/domain"
	"github.com/Rrens/chat-with-data/internal/repository"
)

// ErrStoreUnavailable is returned when the service was started without a store
var ErrStoreUnavailable = errors.New("relational store is not available")

// InvoiceService looks up invoice columns by id. Lookups never fail: any
// problem is logged and collapses to an empty string.
type InvoiceService struct {
	store repository.Connector
}

// NewInvoiceService creates a new invoice service. store may be nil when the
// database could not be opened at startup.
func NewInvoiceService(store repository.Connector) *InvoiceService {
	return &InvoiceService{store: store}
}

// GetConnection opens a connection, or logs the failure and returns nil
func (s *InvoiceService) GetConnection(ctx context.Context) repository.Conn {
	if s.store == nil {
		log.Error().Err(ErrStoreUnavailable).Msg("Failed to connect to database")
		return nil
	}

	conn, err := s.store.Connect(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return nil
	}
	return conn
}

// GetInvoiceName returns the invoice name, or "" when it cannot be read
func (s *InvoiceService) GetInvoiceName(ctx context.Context, invoiceID string) string {
	return s.lookup(ctx, domain.InvoiceNameColumn, invoiceID)
}

// GetInvoiceUpdateHistory returns the update history, or "" when it cannot be read
func (s *InvoiceService) GetInvoiceUpdateHistory(ctx context.Context, invoiceID string) string {
	return s.lookup(ctx, domain.InvoiceHistoryColumn, invoiceID)
}

// Ready pings the store
func (s *InvoiceService) Ready(ctx context.Context) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	return s.store.Ping(ctx)
}

func (s *InvoiceService) lookup(ctx context.Context, column, invoiceID string) string {
	conn := s.GetConnection(ctx)
	if conn == nil {
		return ""
	}
	defer closeConn(conn)

	query := s.store.Dialect().SelectColumnByID(domain.InvoiceTable, column, domain.InvoiceIDColumn)

	var value *string
	err := conn.QueryRow(ctx, query, invoiceID).Scan(&value)
	switch {
	case errors.Is(err, repository.ErrNoRows):
		log.Debug().Str("invoice_id", invoiceID).Str("column", column).Msg("Invoice not found")
		return ""
	case err != nil:
		log.Error().Err(err).Str("invoice_id", invoiceID).Str("column", column).Msg("Invoice lookup failed")
		return ""
	case value == nil:
		return ""
	}
	return *value
}

// QueryRows runs a read-only statement and returns at most maxRows rows
func (s *InvoiceService) QueryRows(ctx context.Context, query string, maxRows int) ([][]any, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	conn, err := s.store.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer closeConn(conn)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var result [][]any
	for rows.Next() && len(result) < maxRows {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return result, nil
}

func closeConn(conn repository.Conn) {
	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database connection")
	}
}
