package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/modelhub-api/apiserver/types"
)

// maxRelevantDocuments bounds how many documents feed the prompt.
const maxRelevantDocuments = 3

const chatSystemInstruction = "You are a friendly AI assistant for a website that provides AI models. " +
	"Respond in a conversational, human-like tone. Be concise and focus only on the most important information. " +
	"Keep your response under 3 sentences when possible. Do not use HTML tags in your response."

// ChatLogRepository defines persistence operations for chat history.
type ChatLogRepository interface {
	Create(ctx context.Context, log types.ChatLog) (types.ChatLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]types.ChatLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Completer generates text for a prompt. Satisfied by llm.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatService answers user questions with the knowledge-base documents
// as retrieval context and records the exchange.
type ChatService struct {
	documents DocumentRepository
	logs      ChatLogRepository
	completer Completer
}

func NewChatService(documents DocumentRepository, logs ChatLogRepository, completer Completer) *ChatService {
	return &ChatService{documents: documents, logs: logs, completer: completer}
}

// Chat retrieves relevant documents for the message, asks the model and
// logs the exchange for the user's history.
func (s *ChatService) Chat(ctx context.Context, user types.User, message string) (string, error) {
	docs, err := s.documents.ListWithContent(ctx)
	if err != nil {
		return "", err
	}

	relevant := retrieveRelevant(message, docs, maxRelevantDocuments)
	prompt := buildPrompt(message, relevant)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	response := cleanResponse(raw)

	if _, err := s.logs.Create(ctx, types.ChatLog{
		UserID:   user.ID,
		Message:  message,
		Response: response,
	}); err != nil {
		return "", err
	}
	return response, nil
}

// History returns the user's most recent chat exchanges, newest first.
func (s *ChatService) History(ctx context.Context, user types.User, limit int) ([]types.ChatLog, error) {
	return s.logs.ListByUser(ctx, user.ID, limit)
}

type scoredDocument struct {
	doc   types.Document
	score int
}

// retrieveRelevant scores documents by word overlap with the query and
// returns the top max matches. Documents with no overlap are dropped.
func retrieveRelevant(query string, docs []types.Document, max int) []types.Document {
	queryWords := wordSet(query)

	scored := make([]scoredDocument, 0, len(docs))
	for _, doc := range docs {
		overlap := 0
		for word := range wordSet(doc.TextContent) {
			if _, ok := queryWords[word]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			scored = append(scored, scoredDocument{doc: doc, score: overlap})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > max {
		scored = scored[:max]
	}
	relevant := make([]types.Document, len(scored))
	for i, s := range scored {
		relevant[i] = s.doc
	}
	return relevant
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func buildPrompt(message string, relevant []types.Document) string {
	if len(relevant) == 0 {
		return fmt.Sprintf("<s>[INST] %s Answer the following question: %s [/INST]</s>", chatSystemInstruction, message)
	}

	parts := make([]string, len(relevant))
	for i, doc := range relevant {
		parts[i] = fmt.Sprintf("Document: %s\n%s", doc.Name, doc.TextContent)
	}
	context := strings.Join(parts, "\n\n")
	return fmt.Sprintf("<s>[INST] %s\n\nDocuments:\n%s\n\nUser Question: %s [/INST]</s>", chatSystemInstruction, context, message)
}

var (
	htmlTagPattern    = regexp.MustCompile(`</?[a-z][^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// cleanResponse strips stray HTML-like tags from the model output and
// collapses whitespace.
func cleanResponse(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
