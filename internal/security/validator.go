package security

import (
	"fmt"
	"regexp"
	"strings"
)

// SQLValidator guards model-generated SQL before it reaches the invoice store
type SQLValidator struct {
	blockedPatterns []*regexp.Regexp
}

var limitPattern = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)

// NewSQLValidator creates a new SQL validator
func NewSQLValidator() *SQLValidator {
	patterns := []string{
		// Data and schema modification
		`(?i)\bINSERT\b`,
		`(?i)\bUPDATE\b`,
		`(?i)\bDELETE\b`,
		`(?i)\bMERGE\b`,
		`(?i)\bDROP\b`,
		`(?i)\bTRUNCATE\b`,
		`(?i)\bALTER\b`,
		`(?i)\bCREATE\b`,
		`(?i)\bGRANT\b`,
		`(?i)\bREVOKE\b`,
		`(?i)\bEXEC\b`,
		`(?i)\bEXECUTE\b`,
		`(?i)\bCALL\b`,
		// File and server access
		`(?i)\bCOPY\b`,
		`(?i)\bINTO\s+OUTFILE\b`,
		`(?i)\bINTO\s+DUMPFILE\b`,
		`(?i)\bLOAD_FILE\b`,
		`(?i)\bLOAD\s+DATA\b`,
		`(?i)pg_read_file`,
		`(?i)pg_write_file`,
		`(?i)pg_ls_dir`,
		`(?i)lo_import`,
		`(?i)lo_export`,
		`(?i)dblink`,
		`(?i)\bATTACH\b`,
		`(?i)load_extension`,
		// T-SQL, since the prompt asks the model for T-SQL
		`(?i)xp_cmdshell`,
		`(?i)\bOPENROWSET\b`,
		`(?i)\bOPENQUERY\b`,
		`(?i)\bBULK\b`,
		`(?i)\bSELECT\s+(DISTINCT\s+)?TOP\b`,
		// Injection tricks
		`(?i)--`,
		`(?i)/\*`,
		`(?i)\bUNION\s+ALL\s+SELECT\s+NULL`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return &SQLValidator{blockedPatterns: compiled}
}

// ValidationError represents a SQL validation error
type ValidationError struct {
	Message string
	Pattern string
}

func (e *ValidationError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Pattern)
	}
	return e.Message
}

// Validate accepts a single read-only SELECT (or WITH ... SELECT) statement
func (v *SQLValidator) Validate(sql string) error {
	sql = normalize(sql)
	if sql == "" {
		return &ValidationError{Message: "empty SQL query"}
	}

	if strings.Contains(sql, ";") {
		return &ValidationError{Message: "multiple statements not allowed"}
	}

	upper := strings.ToUpper(sql)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return &ValidationError{Message: "only SELECT statements allowed"}
	}

	for _, pattern := range v.blockedPatterns {
		if pattern.MatchString(sql) {
			return &ValidationError{
				Message: "blocked SQL pattern detected",
				Pattern: pattern.String(),
			}
		}
	}

	return nil
}

// EnforceLimit ensures the query has a LIMIT clause
func (v *SQLValidator) EnforceLimit(sql string, maxRows int) string {
	sql = normalize(sql)
	if limitPattern.MatchString(sql) {
		return sql
	}
	return fmt.Sprintf("%s LIMIT %d", sql, maxRows)
}

// ValidateAndPrepare validates and prepares a SQL query for execution
func (v *SQLValidator) ValidateAndPrepare(sql string, maxRows int) (string, error) {
	if err := v.Validate(sql); err != nil {
		return "", err
	}
	return v.EnforceLimit(sql, maxRows), nil
}

// normalize trims whitespace and a single trailing semicolon
func normalize(sql string) string {
	sql = strings.TrimSpace(sql)
	return strings.TrimSpace(strings.TrimSuffix(sql, ";"))
}
