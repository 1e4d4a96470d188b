package llm

import (
	"fmt"
	"strings"
)

const (
	// GreetingSystemPrompt frames the greeting/general-question assistant
	GreetingSystemPrompt = "You are a helpful assistant to respond to greetings or general questions."
	// SQLSystemPrompt frames the SQL generation request
	SQLSystemPrompt = "You are a helpful assistant."

	queryPlaceholder     = "{query}"
	invoiceIDPlaceholder = "{invoice_id}"
)

// fallbackSQLTemplate is used when no SQL_SYSTEM_PROMPT is configured.
// Arguments: question, invoice id, invoice id.
const fallbackSQLTemplate = `Generate a valid T-SQL query to find %[1]s for tables and columns provided below:
1. Table: invoices
Columns: id, invoiceName, updateHistory
Assets table has snapshots of values by date. Do not add numbers across different dates for total values.
Do not use client name in filters.
Do not include assets values unless asked for.
ALWAYS use invoices.id = %[2]s in the query filter.
ALWAYS select invoiceName (Column: invoiceName) in the query.
Query filters are IMPORTANT. Add filters if needed.
Only return the generated SQL query. Do not return anything else.
Just using SELECT id, "invoiceName" from invoices where invoices.id = %[2]s is enough.
`

// SQLPrompt resolves the SQL-generation prompt. A configured template has its
// {query} and {invoice_id} placeholders replaced; otherwise the built-in
// template is filled in. The values are interpolated verbatim: this text goes
// to the model, never to the database.
func SQLPrompt(template, query, invoiceID string) string {
	if template != "" {
		return strings.NewReplacer(
			queryPlaceholder, query,
			invoiceIDPlaceholder, invoiceID,
		).Replace(template)
	}
	return fmt.Sprintf(fallbackSQLTemplate, query, invoiceID)
}

// DialectInstruction is appended to the SQL prompt when the generated query is
// executed, so the model writes SQL the configured driver accepts. A row
// limit is added afterwards, so TOP must not be used.
func DialectInstruction(driver string) string {
	name := map[string]string{
		"postgres": "PostgreSQL",
		"mysql":    "MySQL",
		"sqlite":   "SQLite",
	}[driver]
	if name == "" {
		return ""
	}
	return fmt.Sprintf(
		"\nThe query will be executed on %s. Ignore any instruction to write T-SQL: use %s syntax, do not use TOP and do not add a LIMIT clause.\n",
		name, name,
	)
}

// Prompt builds the two-message system/user prompt
func Prompt(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}

// ExtractSQL extracts SQL from LLM response
func ExtractSQL(content string) string {
	if sql, ok := extractFromCodeBlock(content, "```sql"); ok {
		return sql
	}
	if sql, ok := extractFromCodeBlock(content, "```"); ok {
		return sql
	}
	return trimSQL(content)
}

func extractFromCodeBlock(content, startMarker string) (string, bool) {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return "", false
	}

	body := strings.TrimPrefix(content[startIdx+len(startMarker):], "\n")

	endIdx := strings.Index(body, "```")
	if endIdx == -1 {
		return "", false
	}

	return trimSQL(body[:endIdx]), true
}

func trimSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	// Remove trailing semicolon for consistency
	return strings.TrimSpace(strings.TrimSuffix(sql, ";"))
}
