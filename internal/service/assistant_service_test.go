package service

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/internal/testdb"
	"effisense-go/pkg/llm"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubLLM struct {
	answer   string
	err      error
	calls    int
	messages []llm.Message
}

func (s *stubLLM) ChatCompletion(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	s.calls++
	s.messages = messages
	return s.answer, s.err
}

func newAssistant(t *testing.T, db *gorm.DB, client llm.Client, now time.Time) *assistantService {
	svc := NewAssistantService(
		repository.NewHomeRepository(db),
		repository.NewUsageRepository(db),
		repository.NewChatRepository(db),
		client,
		config.AssistantConfig{MaxHomes: 2, MaxUsages: 3, MaxSnippetLen: 120},
		"",
	).(*assistantService)
	svc.now = func() time.Time { return now }
	return svc
}

func chatLogs(t *testing.T, db *gorm.DB) []model.ChatMessageLog {
	var logs []model.ChatMessageLog
	require.NoError(t, db.Order("timestamp").Order("id").Find(&logs).Error)
	return logs
}

func TestAssistant_LogsQuestionBeforeAnswer(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db)
	testdb.Usage(t, db, testdb.Appliance(t, db, testdb.Home(t, db, owner.ID, "Flat"), "Heater"), time.Now().UTC(), 4)
	client := &stubLLM{answer: "  Lower the thermostat by one degree.  "}
	frozen := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC)

	answer, err := newAssistant(t, db, client, frozen).Ask(ctx, owner.ID, "How do I save on heating?")
	require.NoError(t, err)
	assert.Equal(t, "Lower the thermostat by one degree.", answer)

	require.Equal(t, 2, len(client.messages))
	assert.Equal(t, DefaultSystemPrompt, client.messages[0].Content)
	assert.Contains(t, client.messages[1].Content, "Heater (1000W, used 4.00 kWh)")
	assert.True(t, strings.HasSuffix(client.messages[1].Content, "My question is: How do I save on heating?"))

	logs := chatLogs(t, db)
	require.Len(t, logs, 2)
	assert.Equal(t, model.SenderUser, logs[0].Sender)
	assert.Equal(t, model.SenderBot, logs[1].Sender)
	assert.True(t, logs[1].Timestamp.After(logs[0].Timestamp))
	assert.Equal(t, time.Millisecond, logs[1].Timestamp.Sub(logs[0].Timestamp))
}

func TestAssistant_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		client   *stubLLM
		expected string
	}{
		{"missing key", &stubLLM{err: llm.ErrMissingAPIKey}, FallbackNotConfigured},
		{"unreachable", &stubLLM{err: errors.New("dial tcp: connection refused")}, FallbackUnavailable},
		{"no choices", &stubLLM{err: llm.ErrNoChoices}, FallbackNoAnswer},
		{"blank answer", &stubLLM{answer: "   "}, FallbackNoAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testdb.New(t)
			owner := testdb.User(t, db)

			answer, err := newAssistant(t, db, tt.client, time.Now()).Ask(ctx, owner.ID, "Any tips?")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, answer)

			logs := chatLogs(t, db)
			require.Len(t, logs, 2, "the exchange is logged even when the service fails")
			assert.Equal(t, tt.expected, logs[1].MessageText)
		})
	}
}

func TestAssistant_EmptyQuestionRejected(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db)
	client := &stubLLM{answer: "unused"}

	_, err := newAssistant(t, db, client, time.Now()).Ask(ctx, owner.ID, "   ")
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation)
	assert.Zero(t, client.calls)
	assert.Empty(t, chatLogs(t, db))
}

func TestAssistant_HistoryLatestFiftyOldestFirst(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db)
	svc := newAssistant(t, db, &stubLLM{answer: "ok"}, time.Now())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		_, err := svc.Ask(ctx, owner.ID, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, history, ChatHistoryLimit)
	assert.Equal(t, "question 5", history[0].Text)
	assert.Equal(t, "user", history[0].SenderType)
	assert.Equal(t, "bot", history[len(history)-1].SenderType)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestBuildPrompt_Bounded(t *testing.T) {
	homes := []model.Home{{HouseName: strings.Repeat("x", 500), BuildingType: "House", Size: 120, InsulationLevel: "High", HeatingType: "Gas"}}
	usages := []model.Usage{{Appliance: &model.Appliance{Name: "Oven", PowerRating: "2kW"}, EnergyUsed: 3.5}}

	prompt := BuildPrompt(homes, usages, "Why?", 40)
	assert.True(t, strings.HasPrefix(prompt, "Context: My home setup: a House ('xxxx"))
	assert.NotContains(t, prompt, strings.Repeat("x", 41))
	assert.Contains(t, prompt, "Key appliances by usage: Oven (2kW, used 3.50 kWh)")

	empty := BuildPrompt(nil, nil, "Why?", 40)
	assert.Equal(t, "Context: My home setup: general household. Key appliances by usage: no specific appliance data to share for this query. My question is: Why?", empty)
}
