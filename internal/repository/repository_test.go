package repository_test

import (
	"testing"

	"github.com/Rrens/chat-with-data/internal/repository"
)

func TestDialect_SelectColumnByID(t *testing.T) {
	tests := []struct {
		name     string
		dialect  repository.Dialect
		expected string
	}{
		{"postgres", repository.Postgres, `SELECT "invoiceName" FROM invoices WHERE invoices."id" = $1`},
		{"mysql", repository.MySQL, "SELECT `invoiceName` FROM invoices WHERE invoices.`id` = ?"},
		{"sqlite", repository.SQLite, `SELECT "invoiceName" FROM invoices WHERE invoices."id" = ?`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.dialect.SelectColumnByID("invoices", "invoiceName", "id")
			if got != tt.expected {
				t.Errorf("SelectColumnByID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDialect_QuoteEscapes(t *testing.T) {
	if got := repository.Postgres.Quote(`we"ird`); got != `"we""ird"` {
		t.Errorf("Quote() = %q", got)
	}
}
