// Package openai implements the classification collaborators against an
// OpenAI-compatible chat completion API. One Collaborator serves all
// three capabilities: filing placement, reorganization proposals, and
// relevance ranking.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/entrhq/stacks/pkg/category"
	"github.com/entrhq/stacks/pkg/classify"
	"github.com/entrhq/stacks/pkg/logging"
)

// DefaultBaseURL is the default OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Collaborator implements classify.Classifier, classify.Reorganizer, and
// classify.Ranker over an OpenAI-compatible API.
type Collaborator struct {
	client    openai.Client
	model     string
	baseURL   string
	tokenizer *Tokenizer
	log       *logging.Logger
}

// Option configures a Collaborator.
type Option func(*Collaborator)

// WithModel sets the model used for all collaborator calls.
func WithModel(model string) Option {
	return func(c *Collaborator) {
		c.model = model
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
// This enables using Azure OpenAI, local models, or other compatible services.
func WithBaseURL(baseURL string) Option {
	return func(c *Collaborator) {
		c.baseURL = baseURL
	}
}

// WithLogger attaches a session logger for prompt and failure diagnostics.
func WithLogger(log *logging.Logger) Option {
	return func(c *Collaborator) {
		c.log = log
	}
}

// NewCollaborator creates a collaborator with the given API key.
//
// If apiKey is empty, it falls back to the OPENAI_API_KEY environment
// variable. If no base URL is configured, OPENAI_BASE_URL is consulted
// before the default.
func NewCollaborator(apiKey string, opts ...Option) (*Collaborator, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	c := &Collaborator{
		model:   "gpt-4o",
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			c.baseURL = envBaseURL
		}
	}

	c.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(c.baseURL),
	)
	c.tokenizer = NewTokenizer(c.model)
	return c, nil
}

// Model returns the configured model name.
func (c *Collaborator) Model() string { return c.model }

// complete runs one system+user exchange and returns the raw assistant
// text. Transport and empty-response failures come back as collaborator
// errors so callers can fall through to their soft-failure paths.
func (c *Collaborator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", classify.Timeoutf("chat completion: %v", err)
		}
		return "", classify.Transportf("chat completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", classify.Malformedf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Classify asks the model where an item belongs in the current tree.
func (c *Collaborator) Classify(ctx context.Context, req classify.Request) (*classify.Placement, error) {
	user := categorizeUserPrompt(req, c.tokenizer)
	c.debugf("classify prompt for %q (%d tokens)", req.Title, c.tokenizer.Count(user))

	raw, err := c.complete(ctx, categorizeSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parsePlacement(raw)
}

// ProposeReorganization asks the model for an ordered batch of structural
// edits to the tree.
func (c *Collaborator) ProposeReorganization(ctx context.Context, tree []category.SnapshotNode, itemTitles map[string]string) ([]category.Op, error) {
	user := reorganizeUserPrompt(tree, itemTitles, c.tokenizer)
	c.debugf("reorganize prompt (%d tokens)", c.tokenizer.Count(user))

	raw, err := c.complete(ctx, reorganizeSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parseOps(raw)
}

// Rank asks the model to score candidate items 1-5 against a query.
func (c *Collaborator) Rank(ctx context.Context, query string, items []classify.SearchItem) ([]classify.RankedItem, error) {
	user := rankUserPrompt(query, items, c.tokenizer)
	c.debugf("rank prompt for %q over %d items", query, len(items))

	raw, err := c.complete(ctx, rankSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parseRanked(raw)
}

func (c *Collaborator) debugf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}

var (
	_ classify.Classifier  = (*Collaborator)(nil)
	_ classify.Reorganizer = (*Collaborator)(nil)
	_ classify.Ranker      = (*Collaborator)(nil)
)
