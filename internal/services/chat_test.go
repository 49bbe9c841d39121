package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelhub-api/apiserver/types"
)

func TestRetrieveRelevant(t *testing.T) {
	docs := []types.Document{
		{ID: "1", Name: "pricing", TextContent: "our pricing is simple and transparent"},
		{ID: "2", Name: "models", TextContent: "upload models in json csv or text format"},
		{ID: "3", Name: "unrelated", TextContent: "completely different topic"},
		{ID: "4", Name: "limits", TextContent: "users can upload three models before hitting the limit"},
	}

	relevant := retrieveRelevant("how do I upload models", docs, 3)

	require.Len(t, relevant, 2)
	// Both matching docs overlap on "upload" and "models"; order is stable.
	assert.Equal(t, "models", relevant[0].Name)
	assert.Equal(t, "limits", relevant[1].Name)
}

func TestRetrieveRelevantCapped(t *testing.T) {
	docs := []types.Document{
		{ID: "1", TextContent: "alpha beta"},
		{ID: "2", TextContent: "alpha beta gamma"},
		{ID: "3", TextContent: "alpha"},
		{ID: "4", TextContent: "alpha beta gamma delta"},
	}

	relevant := retrieveRelevant("alpha beta gamma delta", docs, 3)

	require.Len(t, relevant, 3)
	assert.Equal(t, "4", relevant[0].ID)
	assert.Equal(t, "2", relevant[1].ID)
	assert.Equal(t, "1", relevant[2].ID)
}

func TestRetrieveRelevantNoOverlap(t *testing.T) {
	docs := []types.Document{{ID: "1", TextContent: "nothing in common"}}
	assert.Empty(t, retrieveRelevant("totally different words", docs, 3))
}

func TestBuildPrompt(t *testing.T) {
	withDocs := buildPrompt("what models exist?", []types.Document{
		{Name: "catalog", TextContent: "we host several models"},
	})
	assert.Contains(t, withDocs, "Documents:")
	assert.Contains(t, withDocs, "Document: catalog")
	assert.Contains(t, withDocs, "User Question: what models exist?")

	withoutDocs := buildPrompt("hello", nil)
	assert.NotContains(t, withoutDocs, "Documents:")
	assert.Contains(t, withoutDocs, "Answer the following question: hello")
}

func TestCleanResponse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<t>hello</t>", "hello"},
		{"plain text", "plain text"},
		{"  spaced \n out\tanswer  ", "spaced out answer"},
		{"<p>one</p> <br/>two", "one two"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanResponse(tc.in))
	}
}

func TestChatLogsExchange(t *testing.T) {
	docs := &fakeDocumentRepo{docs: []types.Document{
		{ID: "1", Name: "faq", TextContent: "models are uploaded from the models page"},
	}}
	logs := &fakeChatLogRepo{}
	completer := &fakeCompleter{response: "<t>Use the models page.</t>"}
	svc := NewChatService(docs, logs, completer)

	user := types.User{ID: "user-1"}
	response, err := svc.Chat(context.Background(), user, "where do I upload models")
	require.NoError(t, err)

	assert.Equal(t, "Use the models page.", response)
	assert.Contains(t, completer.prompt, "Document: faq")

	history, err := svc.History(context.Background(), user, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "where do I upload models", history[0].Message)
	assert.Equal(t, "Use the models page.", history[0].Response)
}

func TestChatWithoutDocuments(t *testing.T) {
	logs := &fakeChatLogRepo{}
	completer := &fakeCompleter{response: "General answer."}
	svc := NewChatService(&fakeDocumentRepo{}, logs, completer)

	user := types.User{ID: "user-1"}
	response, err := svc.Chat(context.Background(), user, "hello there")
	require.NoError(t, err)
	assert.Equal(t, "General answer.", response)
	assert.NotContains(t, completer.prompt, "Documents:")

	// The exchange is logged even with an empty repository.
	history, err := svc.History(context.Background(), user, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestSweeper(t *testing.T) {
	revocation := newFakeRevocationRepo()
	logs := &fakeChatLogRepo{}

	now := time.Now().UTC()
	require.NoError(t, revocation.Insert(context.Background(), "user-1", now.Add(-time.Hour)))
	require.NoError(t, revocation.Insert(context.Background(), "user-2", now.Add(time.Hour)))
	logs.logs = append(logs.logs,
		types.ChatLog{ID: "old", UserID: "user-1", CreatedAt: now.Add(-200 * 24 * time.Hour)},
		types.ChatLog{ID: "fresh", UserID: "user-1", CreatedAt: now},
	)

	sweeper := NewSweeper(revocation, logs, time.Hour, testLogger())
	sweeper.sweep(context.Background())

	// Expired revocation entries are gone, live ones stay.
	_, ok := revocation.entries["user-1"]
	assert.False(t, ok)
	assert.Len(t, revocation.entries["user-2"], 1)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, "fresh", logs.logs[0].ID)
}
