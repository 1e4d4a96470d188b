package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-with-data/internal/config"
	"github.com/Rrens/chat-with-data/internal/domain"
	"github.com/Rrens/chat-with-data/internal/llm"
	"github.com/Rrens/chat-with-data/internal/security"
)

// NoDataMessage is returned in execute mode when the generated query matched nothing
const NoDataMessage = "No data found for that client."

// RowQuerier runs generated SQL against the invoice store
type RowQuerier interface {
	QueryRows(ctx context.Context, query string, maxRows int) ([][]any, error)
}

// ChatService builds prompts and dispatches them to the completion client
type ChatService struct {
	model     string
	driver    string
	sql       config.SQLConfig
	factory   llm.Factory
	querier   RowQuerier
	validator *security.SQLValidator
}

// NewChatService creates a new chat service. querier is only used when
// cfg.SQL.ExecuteGenerated is set and may be nil otherwise.
func NewChatService(cfg *config.Config, factory llm.Factory, querier RowQuerier) *ChatService {
	return &ChatService{
		model:     cfg.OpenAI.Model,
		driver:    cfg.Database.Driver,
		sql:       cfg.SQL,
		factory:   factory,
		querier:   querier,
		validator: security.NewSQLValidator(),
	}
}

// Greeting answers greetings and general questions
func (s *ChatService) Greeting(ctx context.Context, input string) domain.ChatResult {
	answer, err := s.dispatch(ctx, "greeting", llm.GreetingSystemPrompt, input)
	if err != nil {
		return domain.Upstream(domain.GreetingErrorPrefix, err)
	}
	return domain.Answer(answer)
}

// AnswerSQLQuestion asks the model for a SQL query answering input for one
// invoice. The generated text is returned as is unless execution is enabled.
func (s *ChatService) AnswerSQLQuestion(ctx context.Context, input, invoiceID string) domain.ChatResult {
	if strings.TrimSpace(invoiceID) == "" {
		return domain.Invalid(domain.ErrInvoiceIDRequired)
	}
	if strings.TrimSpace(input) == "" {
		return domain.Invalid(domain.ErrQueryRequired)
	}

	prompt := llm.SQLPrompt(s.sql.SystemPrompt, input, invoiceID)
	if s.sql.ExecuteGenerated {
		prompt += llm.DialectInstruction(s.driver)
	}

	generated, err := s.dispatch(ctx, "sql", llm.SQLSystemPrompt, prompt)
	if err != nil {
		return domain.Upstream(domain.SQLErrorPrefix, err)
	}

	if !s.sql.ExecuteGenerated {
		return domain.Answer(generated)
	}

	answer, err := s.execute(ctx, generated)
	if err != nil {
		return domain.Upstream(domain.SQLErrorPrefix, err)
	}
	return domain.Answer(answer)
}

func (s *ChatService) dispatch(ctx context.Context, kind, system, user string) (string, error) {
	requestID := uuid.New().String()
	start := time.Now()

	client, err := s.factory.Client(ctx)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Str("kind", kind).Msg("Failed to create completion client")
		return "", err
	}

	answer, err := client.Complete(ctx, llm.CompletionRequest{
		Model:       s.model,
		Messages:    llm.Prompt(system, user),
		Temperature: 0,
		TopP:        1,
		N:           1,
	})
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Str("kind", kind).Msg("Completion failed")
		return "", err
	}

	log.Info().
		Str("request_id", requestID).
		Str("kind", kind).
		Dur("duration", time.Since(start)).
		Msg("Completion succeeded")
	return answer, nil
}

func (s *ChatService) execute(ctx context.Context, generated string) (string, error) {
	if s.querier == nil {
		return "", ErrStoreUnavailable
	}

	query, err := s.validator.ValidateAndPrepare(llm.ExtractSQL(generated), s.sql.MaxRows)
	if err != nil {
		return "", err
	}

	rows, err := s.querier.QueryRows(ctx, query, s.sql.MaxRows)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return NoDataMessage, nil
	}

	return truncate(renderRows(rows), s.sql.MaxResultChars), nil
}

// renderRows writes one parenthesized row per line
func renderRows(rows [][]any) string {
	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		b.WriteString("(")
		b.WriteString(strings.Join(cells, ", "))
		b.WriteString(")\n")
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

