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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/askit"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/chat"
	"github.com/poiesic/askit/chunker"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/index"
	"github.com/poiesic/askit/search"
	"github.com/urfave/cli/v2"
)

func main() {
	// Credentials come from the environment; a .env file is a convenience
	// for local runs and its absence is not an error.
	godotenv.Load()

	app := &cli.App{
		Name:  "askit",
		Usage: "Retrieval-augmented question answering over your documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./askit-data",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL",
				Value: "https://api.openai.com/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "text-embedding-3-small",
			},
			&cli.StringFlag{
				Name:  "chat-model",
				Usage: "Completion model name",
				Value: "gpt-4o-mini",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Chunk and embed a document into the index",
				ArgsUsage: "FILE (reads stdin when omitted)",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "doc",
						Usage:    "Document identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "tenant",
						Usage: "Tenant identifier",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category identifier",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk size in characters",
						Value: chunker.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Overlap between consecutive chunks in characters",
						Value: chunker.DefaultOverlap,
					},
					&cli.StringFlag{
						Name:  "method",
						Usage: "Chunking method (fixed_size, sentence, paragraph)",
						Value: chunker.MethodFixedSize,
					},
					&cli.BoolFlag{
						Name:  "reindex",
						Usage: "Replace an existing index for the document",
					},
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a document from the index",
				ArgsUsage: "DOCUMENT_ID",
				Action:    removeCommand,
			},
			{
				Name:      "status",
				Usage:     "Show a document's index status",
				ArgsUsage: "DOCUMENT_ID",
				Action:    statusCommand,
			},
			{
				Name:      "search",
				Usage:     "Find the chunks most similar to a query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "tenant",
						Usage: "Tenant identifier",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict results to a category",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score",
						Value: 0.7,
					},
					&cli.Float64Flag{
						Name:  "keyword-weight",
						Usage: "Keyword weight for hybrid ranking (0 disables)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a one-shot question from the indexed documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "tenant",
						Usage: "Tenant identifier",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict retrieval to a category",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of retrieved chunks",
						Value: chat.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score",
						Value: chat.DefaultThreshold,
					},
					&cli.BoolFlag{
						Name:  "sources",
						Usage: "Print the retrieved sources after the answer",
					},
				},
			},
			{
				Name:   "conversations",
				Usage:  "List stored conversations for a tenant",
				Action: conversationsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "tenant",
						Usage: "Tenant identifier",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of conversations to list",
						Value: 20,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openEngine(c *cli.Context) (*askit.Engine, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
	)
	if token := os.Getenv("OPENAI_API_KEY"); token != "" {
		config.Token = token
	}

	engine, err := askit.NewEngine(c.String("db"), askit.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func indexCommand(c *cli.Context) error {
	text, err := readDocument(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.Index().IndexDocument(context.Background(), index.Request{
		DocumentID: c.String("doc"),
		TenantID:   c.String("tenant"),
		CategoryID: c.String("category"),
		Text:       text,
		Chunking: chunker.Options{
			ChunkSize: c.Int("chunk-size"),
			Overlap:   c.Int("overlap"),
			Method:    c.String("method"),
		},
		Reindex: c.Bool("reindex"),
	})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("indexed %q: %d chunks, %d embedded, %d failed, %d tokens, $%.6f\n",
		c.String("doc"), report.TotalChunks, report.Embedded, report.Failed,
		report.TotalTokens, report.TotalCost)
	return nil
}

func removeCommand(c *cli.Context) error {
	documentID := c.Args().First()
	if documentID == "" {
		return fmt.Errorf("document id is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	removed, err := engine.Index().RemoveDocumentIndex(context.Background(), documentID)
	if err != nil {
		return fmt.Errorf("removal failed: %w", err)
	}

	fmt.Printf("removed %q: %d chunks\n", documentID, removed)
	return nil
}

func statusCommand(c *cli.Context) error {
	documentID := c.Args().First()
	if documentID == "" {
		return fmt.Errorf("document id is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	status, err := engine.Index().GetIndexStatus(context.Background(), documentID)
	if err != nil {
		return fmt.Errorf("status lookup failed: %w", err)
	}

	if !status.Indexed {
		fmt.Printf("%q is not indexed\n", documentID)
		return nil
	}
	fmt.Printf("%q: %d chunks (%d embedded, %d pending, %d failed)\n",
		documentID, status.TotalChunks, status.Embedded, status.Pending, status.Failed)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := search.Options{
		TopK:       c.Int("top-k"),
		Threshold:  float32(c.Float64("threshold")),
		TenantID:   c.String("tenant"),
		CategoryID: c.String("category"),
	}

	var results []*core.ScoredChunk
	if keywordWeight := float32(c.Float64("keyword-weight")); keywordWeight > 0 {
		results, err = engine.Searcher().HybridSearch(context.Background(), query, search.HybridOptions{
			Options:       opts,
			VectorWeight:  1 - keywordWeight,
			KeywordWeight: keywordWeight,
		})
	} else {
		results, err = engine.Searcher().Search(context.Background(), query, opts)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, scored := range results {
		fmt.Printf("%d. [%.4f] document %s, chunk %d\n%s\n\n",
			i+1, scored.Score, scored.Chunk.DocumentID, scored.Chunk.Ordinal, scored.Chunk.Content)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if question == "" {
		return fmt.Errorf("question is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Chat().Query(context.Background(), question, chat.QueryOptions{
		Model:      c.String("chat-model"),
		TopK:       c.Int("top-k"),
		Threshold:  float32(c.Float64("threshold")),
		TenantID:   c.String("tenant"),
		CategoryID: c.String("category"),
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(result.Message.Content)
	if c.Bool("sources") && len(result.Retrieved) > 0 {
		fmt.Println()
		for _, scored := range result.Retrieved {
			fmt.Printf("[%.4f] document %s, chunk %d\n",
				scored.Score, scored.Chunk.DocumentID, scored.Chunk.Ordinal)
		}
	}
	return nil
}

func conversationsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	conversations, err := engine.Chat().ListConversations(context.Background(), c.String("tenant"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}

	if len(conversations) == 0 {
		fmt.Println("no conversations")
		return nil
	}
	for _, conversation := range conversations {
		fmt.Printf("%d\t%s\t%d messages\t%d tokens\t$%.6f\t%s\n",
			conversation.Id, conversation.UpdatedAt.Format("2006-01-02 15:04"),
			conversation.MessageCount, conversation.TotalTokens, conversation.TotalCost,
			conversation.Title)
	}
	return nil
}

func readDocument(c *cli.Context) (string, error) {
	if path := c.Args().First(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
