// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chat

import (
	"context"
	"log/slog"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/search"
	"github.com/poiesic/askit/storage"
)

// NoHitAnswer is returned when no chunk clears the similarity threshold.
// The language model is never called in that case, so the turn costs
// nothing.
const NoHitAnswer = "No relevant documents found."

// Defaults applied when a conversation leaves settings unset.
const (
	DefaultModel        = "gpt-4o-mini"
	DefaultTemperature  = 0.2
	DefaultTopK         = 5
	DefaultThreshold    = 0.7
	DefaultHistoryLimit = 10
)

// Orchestrator manages retrieval-grounded conversations.
type Orchestrator struct {
	conversations storage.ConversationRepository
	searcher      *search.Searcher
	chatModel     ai.ChatModel
	pricing       ai.PriceTable
	historyLimit  int
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithPricing sets the price table used for completion cost accounting.
// Default is ai.DefaultPriceTable().
func WithPricing(pricing ai.PriceTable) Option {
	return func(o *Orchestrator) error {
		if pricing == nil {
			pricing = ai.DefaultPriceTable()
		}
		o.pricing = pricing
		return nil
	}
}

// WithHistoryLimit sets how many prior messages are included in each
// prompt. Default is DefaultHistoryLimit.
func WithHistoryLimit(limit int) Option {
	return func(o *Orchestrator) error {
		if limit < 0 {
			limit = 0
		}
		o.historyLimit = limit
		return nil
	}
}

// NewOrchestrator creates a conversation orchestrator.
func NewOrchestrator(conversations storage.ConversationRepository, searcher *search.Searcher, chatModel ai.ChatModel, opts ...Option) (*Orchestrator, error) {
	if conversations == nil {
		return nil, ErrConversationRepositoryRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if chatModel == nil {
		return nil, ErrChatModelRequired
	}

	o := &Orchestrator{
		conversations: conversations,
		searcher:      searcher,
		chatModel:     chatModel,
		pricing:       ai.DefaultPriceTable(),
		historyLimit:  DefaultHistoryLimit,
		logger:        slog.Default().With("component", "chat"),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// CreateConversation stores a new conversation, filling unset retrieval
// and model settings with defaults.
func (o *Orchestrator) CreateConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error) {
	if conversation.Model == "" {
		conversation.Model = DefaultModel
	}
	if conversation.Temperature == 0 {
		conversation.Temperature = DefaultTemperature
	}
	if conversation.TopK == 0 {
		conversation.TopK = DefaultTopK
	}
	if conversation.Threshold == 0 {
		conversation.Threshold = DefaultThreshold
	}
	if conversation.VectorWeight == 0 && conversation.KeywordWeight == 0 {
		conversation.VectorWeight = 1
	}
	if conversation.Status == 0 {
		conversation.Status = core.ConversationStatusActive
	}
	return o.conversations.AddConversation(ctx, conversation)
}

// GetConversation retrieves a conversation by ID.
func (o *Orchestrator) GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error) {
	return o.conversations.GetConversation(ctx, id)
}

// ListConversations returns a tenant's conversations, most recent first.
func (o *Orchestrator) ListConversations(ctx context.Context, tenantID string, limit int) ([]*core.Conversation, error) {
	return o.conversations.ListConversations(ctx, tenantID, limit)
}

// DeleteConversation removes a conversation and all of its messages.
func (o *Orchestrator) DeleteConversation(ctx context.Context, id core.ID) error {
	return o.conversations.DeleteConversation(ctx, id)
}

// GetMessages retrieves a conversation's messages in creation order.
func (o *Orchestrator) GetMessages(ctx context.Context, conversationID core.ID, limit int) ([]*core.Message, error) {
	return o.conversations.GetMessages(ctx, conversationID, limit)
}

// Result is the outcome of one answered turn.
type Result struct {
	// Message is the persisted assistant message, including provenance
	// and cost. For stateless queries it is populated but not persisted.
	Message *core.Message

	// Retrieved is the chunks that grounded the answer, in rank order.
	Retrieved []*core.ScoredChunk
}

// Chat runs one conversational turn. The user message is persisted before
// retrieval so it survives any later failure. A language-model failure
// after successful retrieval returns a *GenerationError carrying the
// retrieved chunks; no assistant message is persisted for that turn.
func (o *Orchestrator) Chat(ctx context.Context, conversationID core.ID, userText string) (*Result, error) {
	conversation, err := o.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conversation.Title == "" {
		conversation.Title = deriveTitle(userText)
		if _, err := o.conversations.UpdateConversation(ctx, conversation); err != nil {
			return nil, err
		}
	}

	// History is read before the new user message lands so the prompt
	// holds only prior turns.
	history, err := o.conversations.GetMessages(ctx, conversationID, o.historyLimit)
	if err != nil {
		return nil, err
	}

	userMessage := &core.Message{
		ConversationID: conversationID,
		Role:           core.MessageRoleUser,
		Content:        userText,
	}
	if _, err := o.conversations.AppendMessage(ctx, userMessage); err != nil {
		return nil, err
	}

	retrieved, err := o.retrieve(ctx, conversation, userText)
	if err != nil {
		return nil, err
	}

	assistant := &core.Message{
		ConversationID: conversationID,
		Role:           core.MessageRoleAssistant,
		Retrieved:      retrievedRefs(retrieved),
	}

	if len(retrieved) == 0 {
		assistant.Content = NoHitAnswer
	} else {
		response, err := o.chatModel.Complete(ctx, ai.ChatRequest{
			Model:       conversation.Model,
			Messages:    buildMessages(retrieved, history, userText),
			Temperature: conversation.Temperature,
			MaxTokens:   conversation.MaxTokens,
		})
		if err != nil {
			o.logger.Error("completion failed after retrieval",
				"conversation", conversationID, "retrieved", len(retrieved), "err", err)
			return nil, &GenerationError{Retrieved: retrieved, Err: err}
		}
		assistant.Content = response.Content
		assistant.PromptTokens = response.Usage.PromptTokens
		assistant.CompletionTokens = response.Usage.CompletionTokens
		assistant.TotalTokens = response.Usage.TotalTokens
		assistant.Cost = o.pricing.CompletionCost(conversation.Model, response.Usage)
	}

	if _, err := o.conversations.AppendMessage(ctx, assistant); err != nil {
		return nil, err
	}

	return &Result{Message: assistant, Retrieved: retrieved}, nil
}

// QueryOptions configures a stateless one-shot query.
type QueryOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int

	TopK          int
	Threshold     float32
	TenantID      string
	CategoryID    string
	DocumentIDs   []string
	VectorWeight  float32
	KeywordWeight float32
}

// Query answers a one-shot question without touching any conversation.
// When no chunk clears the threshold it returns the fixed no-hit answer at
// zero cost without calling the language model.
func (o *Orchestrator) Query(ctx context.Context, text string, opts QueryOptions) (*Result, error) {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}

	conversation := &core.Conversation{
		Model:         opts.Model,
		Temperature:   opts.Temperature,
		MaxTokens:     opts.MaxTokens,
		TopK:          opts.TopK,
		Threshold:     opts.Threshold,
		TenantID:      opts.TenantID,
		CategoryID:    opts.CategoryID,
		DocumentIDs:   opts.DocumentIDs,
		VectorWeight:  opts.VectorWeight,
		KeywordWeight: opts.KeywordWeight,
	}

	retrieved, err := o.retrieve(ctx, conversation, text)
	if err != nil {
		return nil, err
	}

	answer := &core.Message{
		Role:      core.MessageRoleAssistant,
		Retrieved: retrievedRefs(retrieved),
	}

	if len(retrieved) == 0 {
		answer.Content = NoHitAnswer
		return &Result{Message: answer, Retrieved: retrieved}, nil
	}

	response, err := o.chatModel.Complete(ctx, ai.ChatRequest{
		Model:       opts.Model,
		Messages:    buildMessages(retrieved, nil, text),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		o.logger.Error("completion failed after retrieval", "retrieved", len(retrieved), "err", err)
		return nil, &GenerationError{Retrieved: retrieved, Err: err}
	}

	answer.Content = response.Content
	answer.PromptTokens = response.Usage.PromptTokens
	answer.CompletionTokens = response.Usage.CompletionTokens
	answer.TotalTokens = response.Usage.TotalTokens
	answer.Cost = o.pricing.CompletionCost(opts.Model, response.Usage)

	return &Result{Message: answer, Retrieved: retrieved}, nil
}

// RateMessage records a user rating and optional feedback on an assistant
// message.
func (o *Orchestrator) RateMessage(ctx context.Context, conversationID, messageID core.ID, rating int, feedback string) error {
	message, err := o.conversations.GetMessage(ctx, conversationID, messageID)
	if err != nil {
		return err
	}
	if message.Role != core.MessageRoleAssistant {
		return ErrNotAssistantMessage
	}

	message.Rating = rating
	message.Feedback = feedback

	_, err = o.conversations.UpdateMessage(ctx, message)
	return err
}

// retrieve runs the conversation's configured search. A keyword weight
// above zero selects hybrid ranking.
func (o *Orchestrator) retrieve(ctx context.Context, conversation *core.Conversation, query string) ([]*core.ScoredChunk, error) {
	searchOpts := search.Options{
		TopK:        conversation.TopK,
		Threshold:   conversation.Threshold,
		TenantID:    conversation.TenantID,
		CategoryID:  conversation.CategoryID,
		DocumentIDs: conversation.DocumentIDs,
	}

	if conversation.KeywordWeight > 0 {
		return o.searcher.HybridSearch(ctx, query, search.HybridOptions{
			Options:       searchOpts,
			VectorWeight:  conversation.VectorWeight,
			KeywordWeight: conversation.KeywordWeight,
		})
	}
	return o.searcher.Search(ctx, query, searchOpts)
}
