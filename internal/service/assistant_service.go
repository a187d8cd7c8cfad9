package service

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/pkg/llm"
	"effisense-go/pkg/log"
	"effisense-go/pkg/metrics"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultSystemPrompt constrains the assistant to energy-efficiency advice in plain prose.
const DefaultSystemPrompt = "You are an assistant that provides energy-efficiency tips. " +
	"Your clients are European and use EU standards for measuring energy usage, as well as Celsius instead of Fahrenheit. " +
	"Do not answer any questions that do not regard energy-efficiency. " +
	"Try to use the data provided about specific appliances as much as possible. " +
	"When outputing, DO NOT bold text and DO NOT use lists!"

// Replies logged in place of a completion.
const (
	FallbackNotConfigured = "The energy assistant is not configured yet. Please try again later."
	FallbackUnavailable   = "Sorry, I couldn't reach the energy assistant right now. Please try again in a moment."
	FallbackNoAnswer      = "Sorry, I don't have a suggestion for that right now. Try rephrasing your question."
)

// ChatHistoryLimit is the number of messages returned by History.
const ChatHistoryLimit = 50

// ChatEntry is one chat message as shown in the assistant panel.
type ChatEntry struct {
	Text       string    `json:"text"`
	SenderType string    `json:"senderType"`
	Timestamp  time.Time `json:"timestamp"`
}

// AssistantService answers energy questions with the user's own data as context.
type AssistantService interface {
	Ask(ctx context.Context, userID uint, question string) (string, error)
	History(ctx context.Context, userID uint) ([]ChatEntry, error)
}

type assistantService struct {
	homes        repository.HomeRepository
	usages       repository.UsageRepository
	chats        repository.ChatRepository
	client       llm.Client
	cfg          config.AssistantConfig
	systemPrompt string
	now          func() time.Time
}

// NewAssistantService creates an AssistantService. An empty systemPrompt selects DefaultSystemPrompt.
func NewAssistantService(homes repository.HomeRepository, usages repository.UsageRepository, chats repository.ChatRepository,
	client llm.Client, cfg config.AssistantConfig, systemPrompt string) AssistantService {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxHomes <= 0 {
		cfg.MaxHomes = 2
	}
	if cfg.MaxUsages <= 0 {
		cfg.MaxUsages = 3
	}
	if cfg.MaxSnippetLen <= 0 {
		cfg.MaxSnippetLen = 120
	}
	return &assistantService{
		homes:        homes,
		usages:       usages,
		chats:        chats,
		client:       client,
		cfg:          cfg,
		systemPrompt: systemPrompt,
		now:          time.Now,
	}
}

// Ask logs the question, asks the completion service and logs the reply.
// Service failures become a fallback reply; only an empty question or a storage error is returned.
func (s *assistantService) Ask(ctx context.Context, userID uint, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", NewValidationError("question", "Prompt cannot be empty.")
	}
	askedAt := s.now().UTC().Truncate(time.Millisecond)

	// 1. Context
	homes, err := s.homes.ListByUser(ctx, userID, 0, s.cfg.MaxHomes)
	if err != nil {
		return "", fmt.Errorf("load homes for prompt: %w", err)
	}
	top, err := s.usages.TopByEnergy(ctx, userID, s.cfg.MaxUsages)
	if err != nil {
		return "", fmt.Errorf("load usages for prompt: %w", err)
	}
	prompt := BuildPrompt(homes, top, question, s.cfg.MaxSnippetLen)

	// 2. Completion
	answer := s.complete(ctx, userID, prompt)

	// 3. Log both sides, the reply strictly after the question.
	answeredAt := s.now().UTC().Truncate(time.Millisecond)
	if !answeredAt.After(askedAt) {
		answeredAt = askedAt.Add(time.Millisecond)
	}
	err = s.chats.AppendExchange(ctx,
		&model.ChatMessageLog{UserID: userID, MessageText: question, Sender: model.SenderUser, Timestamp: askedAt},
		&model.ChatMessageLog{UserID: userID, MessageText: answer, Sender: model.SenderBot, Timestamp: answeredAt},
	)
	if err != nil {
		return "", fmt.Errorf("save chat messages: %w", err)
	}
	return answer, nil
}

func (s *assistantService) complete(ctx context.Context, userID uint, prompt string) string {
	answer, err := s.client.ChatCompletion(ctx, []llm.Message{
		{Role: "system", Content: s.systemPrompt},
		{Role: "user", Content: prompt},
	}, nil)

	switch {
	case err == nil && strings.TrimSpace(answer) != "":
		metrics.AssistantRequests.WithLabelValues("answered").Inc()
		return strings.TrimSpace(answer)
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Errorw("assistant: completion API key is not configured", "userId", userID)
		answer = FallbackNotConfigured
	case err == nil, errors.Is(err, llm.ErrNoChoices):
		log.Warnw("assistant: completion returned no answer", "userId", userID)
		answer = FallbackNoAnswer
	default:
		log.Warnw("assistant: completion failed", "userId", userID, "error", err)
		answer = FallbackUnavailable
	}
	metrics.AssistantRequests.WithLabelValues("fallback").Inc()
	return answer
}

// History returns the latest ChatHistoryLimit messages, oldest first.
func (s *assistantService) History(ctx context.Context, userID uint) ([]ChatEntry, error) {
	logs, err := s.chats.Latest(ctx, userID, ChatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	entries := make([]ChatEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, ChatEntry{
			Text:       l.MessageText,
			SenderType: strings.ToLower(string(l.Sender)),
			Timestamp:  l.Timestamp.UTC(),
		})
	}
	return entries, nil
}

// BuildPrompt renders the homes and top usages as context followed by the question.
// Each home or appliance snippet is cut to maxSnippet runes.
func BuildPrompt(homes []model.Home, usages []model.Usage, question string, maxSnippet int) string {
	var b strings.Builder
	b.WriteString("Context: My home setup: ")
	if len(homes) == 0 {
		b.WriteString("general household")
	} else {
		parts := make([]string, 0, len(homes))
		for _, h := range homes {
			parts = append(parts, truncate(fmt.Sprintf("a %s ('%s') of %dm^2, insulation: %s, heating: %s",
				h.BuildingType, h.HouseName, h.Size, h.InsulationLevel, h.HeatingType), maxSnippet))
		}
		b.WriteString(strings.Join(parts, "; "))
	}

	b.WriteString(". Key appliances by usage: ")
	if len(usages) == 0 {
		b.WriteString("no specific appliance data to share for this query")
	} else {
		parts := make([]string, 0, len(usages))
		for i := range usages {
			u := &usages[i]
			name, rating := "Unknown appliance", ""
			if u.Appliance != nil {
				name, rating = u.Appliance.Name, u.Appliance.PowerRating
			}
			parts = append(parts, truncate(fmt.Sprintf("%s (%s, used %.2f kWh)", name, rating, u.EnergyUsed), maxSnippet))
		}
		b.WriteString(strings.Join(parts, "; "))
	}

	b.WriteString(". My question is: ")
	b.WriteString(question)
	return b.String()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
