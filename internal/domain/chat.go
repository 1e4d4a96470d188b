package domain

// ChatRequest is the body of POST /chat_with_data
type ChatRequest struct {
	Query     string `json:"query"`
	InvoiceID string `json:"invoice_id"`
}

// GreetingRequest is the body of POST /greeting
type GreetingRequest struct {
	Query string `json:"query"`
}

// ChatResponse wraps every assistant answer, successful or not
type ChatResponse struct {
	Response string `json:"response"`
}

// ResultKind tells callers which branch produced a ChatResult
type ResultKind string

const (
	ResultOK         ResultKind = "ok"
	ResultValidation ResultKind = "validation"
	ResultUpstream   ResultKind = "upstream"
)

// Validation messages returned before any external call is made
const (
	ErrInvoiceIDRequired = "Error: invoice_id is required"
	ErrQueryRequired     = "Error: Query input is required"
)

// Prefixes used when an upstream call fails
const (
	GreetingErrorPrefix = "Error retrieving greeting response: "
	SQLErrorPrefix      = "Error retrieving data from SQL: "
)

// ChatResult is the outcome of a dispatch to the completion client
type ChatResult struct {
	Kind ResultKind
	// Text is the model output for ResultOK, the validation message for
	// ResultValidation and the rendered upstream error for ResultUpstream
	Text string
	// Err is the underlying failure for ResultUpstream
	Err error
}

// Message renders the result in the string form served over HTTP
func (r ChatResult) Message() string {
	return r.Text
}

// OK reports whether the model produced an answer
func (r ChatResult) OK() bool {
	return r.Kind == ResultOK
}

func Answer(text string) ChatResult {
	return ChatResult{Kind: ResultOK, Text: text}
}

func Invalid(message string) ChatResult {
	return ChatResult{Kind: ResultValidation, Text: message}
}

// Upstream renders err behind prefix, matching the wire format clients already parse
func Upstream(prefix string, err error) ChatResult {
	return ChatResult{Kind: ResultUpstream, Text: prefix + err.Error(), Err: err}
}
