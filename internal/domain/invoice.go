package domain

// Columns of the invoices table read by the lookup endpoints
const (
	InvoiceTable         = "invoices"
	InvoiceIDColumn      = "id"
	InvoiceNameColumn    = "invoiceName"
	InvoiceHistoryColumn = "updateHistory"
)

// InvoiceNameResponse is the body of GET /get_invoice_name/{invoice_id}
type InvoiceNameResponse struct {
	InvoiceName string `json:"invoice_name"`
}

// InvoiceHistoryResponse is the body of GET /get_invoice_history/{invoice_id}
type InvoiceHistoryResponse struct {
	InvoiceHistory string `json:"invoice_history"`
}
