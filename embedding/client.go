package embedding

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/ai"
)

// DefaultBatchSize is the maximum number of texts sent to the provider in
// one embedding request.
const DefaultBatchSize = 100

// Result holds the embedding produced for one text along with its token
// count and computed cost.
type Result struct {
	Vector []float32
	Tokens int
	Cost   float64
}

// Client generates embeddings with batching and cost accounting.
type Client struct {
	embedder  ai.Embedder
	counter   ai.TokenCounter
	pricing   ai.PriceTable
	model     string
	batchSize int
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithBatchSize sets the maximum texts per provider request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(c *Client) error {
		if size < 1 {
			size = 1
		}
		c.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent batch requests.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Client) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithPricing sets the price table used for cost computation.
// Default is ai.DefaultPriceTable().
func WithPricing(pricing ai.PriceTable) Option {
	return func(c *Client) error {
		if pricing == nil {
			pricing = ai.DefaultPriceTable()
		}
		c.pricing = pricing
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates an embedding client for the given model.
func NewClient(embedder ai.Embedder, counter ai.TokenCounter, model string, opts ...Option) (*Client, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if counter == nil {
		return nil, ErrTokenCounterRequired
	}
	if model == "" {
		return nil, ErrModelRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Client{
		embedder:  embedder,
		counter:   counter,
		pricing:   ai.DefaultPriceTable(),
		model:     model,
		batchSize: DefaultBatchSize,
		pool:      pool,
		logger:    slog.Default().With("component", "embedding-client"),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}

	return c, nil
}

// Model returns the embedding model name results are priced against.
func (c *Client) Model() string {
	return c.model
}

// Generate embeds a single text. A failure here is surfaced directly since
// there is no batch to isolate it from.
func (c *Client) Generate(ctx context.Context, text string) (*Result, error) {
	vector, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		c.logger.Error("failed to generate embedding", "model", c.model, "err", err)
		return nil, err
	}

	tokens := c.counter.CountTokens(text)
	return &Result{
		Vector: vector,
		Tokens: tokens,
		Cost:   c.pricing.EmbeddingCost(c.model, tokens),
	}, nil
}

// GenerateBatch embeds texts in pages of at most the configured batch size,
// running pages on the worker pool. The returned slice matches the input
// order; items from a failed page are nil so the caller can mark exactly
// those as failed while the rest proceed. Page failures are a normal
// outcome, not an error.
func (c *Client) GenerateBatch(ctx context.Context, texts []string) []*Result {
	results := make([]*Result, len(texts))
	if len(texts) == 0 {
		return results
	}

	var wg sync.WaitGroup
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		start, end := start, end
		wg.Add(1)
		submitErr := c.pool.Submit(func() {
			defer wg.Done()
			c.embedPage(ctx, texts, results, start, end)
		})
		if submitErr != nil {
			wg.Done()
			c.logger.Error("failed to submit embedding page",
				"start", start, "end", end, "err", submitErr)
		}
	}
	wg.Wait()

	return results
}

// embedPage fills results[start:end] from one provider request. On failure
// the slots stay nil.
func (c *Client) embedPage(ctx context.Context, texts []string, results []*Result, start, end int) {
	if ctx.Err() != nil {
		c.logger.Warn("skipping embedding page, context done",
			"start", start, "end", end, "err", ctx.Err())
		return
	}

	vectors, err := c.embedder.EmbedTexts(ctx, texts[start:end])
	if err != nil {
		c.logger.Warn("embedding page failed",
			"start", start, "end", end, "err", err)
		return
	}
	if len(vectors) != end-start {
		c.logger.Warn("embedding page returned wrong count",
			"start", start, "end", end, "got", len(vectors))
		return
	}

	for i, vector := range vectors {
		tokens := c.counter.CountTokens(texts[start+i])
		results[start+i] = &Result{
			Vector: vector,
			Tokens: tokens,
			Cost:   c.pricing.EmbeddingCost(c.model, tokens),
		}
	}
}

// Release releases the worker pool. The client should not be used after
// calling Release.
func (c *Client) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}
