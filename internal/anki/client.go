package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// rpcVersion is the AnkiConnect API version every request declares.
const rpcVersion = 6

// Client talks to a single AnkiConnect endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger. Without one the client stays silent.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an AnkiConnect client.
func New(rawURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("ankiconnect url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		url:        rawURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type rpcRequest struct {
	Action  string         `json:"action"`
	Params  map[string]any `json:"params"`
	Version int            `json:"version"`
}

// invoke posts one action and validates the reply envelope. The envelope must
// carry exactly an "error" slot and a "result" slot; a non-null error slot is
// journaled and the result returned as-is, so callers see the same outcome the
// store chose to report in-band.
func (c *Client) invoke(ctx context.Context, action string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(rpcRequest{Action: action, Params: params, Version: rpcVersion})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{
			URL:     c.url,
			Refused: errors.Is(err, syscall.ECONNREFUSED),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{Action: action, Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{URL: c.url, Err: err}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &ProtocolError{Action: action, Reason: "response is not a JSON object"}
	}
	if len(envelope) != 2 {
		return nil, &ProtocolError{Action: action, Reason: "response has an unexpected number of fields"}
	}
	errSlot, ok := envelope["error"]
	if !ok {
		return nil, &ProtocolError{Action: action, Reason: "response is missing required error field"}
	}
	result, ok := envelope["result"]
	if !ok {
		return nil, &ProtocolError{Action: action, Reason: "response is missing required result field"}
	}

	if !bytes.Equal(bytes.TrimSpace(errSlot), []byte("null")) {
		c.logger.Warn("store reported an error",
			zap.String("action", action),
			zap.ByteString("error", errSlot),
		)
	}
	return result, nil
}

// DeckNames lists every deck in the collection.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	result, err := c.invoke(ctx, "deckNames", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(result, &names); err != nil {
		return nil, &ProtocolError{Action: "deckNames", Reason: "result is not a list of strings"}
	}
	return names, nil
}

// CreateDeck creates a deck, including any missing :: ancestors.
func (c *Client) CreateDeck(ctx context.Context, name string) error {
	_, err := c.invoke(ctx, "createDeck", map[string]any{"deck": name})
	return err
}

// DeleteDecks removes the named decks and every card in them.
func (c *Client) DeleteDecks(ctx context.Context, names []string) error {
	_, err := c.invoke(ctx, "deleteDecks", map[string]any{"decks": names})
	return err
}

// ListTags returns every tag currently known to the collection.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	result, err := c.invoke(ctx, "getTags", nil)
	if err != nil {
		return nil, err
	}
	var tags []string
	if err := json.Unmarshal(result, &tags); err != nil {
		return nil, &ProtocolError{Action: "getTags", Reason: "result is not a list of strings"}
	}
	return tags, nil
}

// AddNote submits one note. The full payload and the store's reply both go to
// the journal so a run can be audited afterwards.
func (c *Client) AddNote(ctx context.Context, note Note) error {
	c.logger.Info("adding note",
		zap.String("deck", note.DeckName),
		zap.Strings("tags", note.Tags),
		zap.Any("note", note),
	)
	result, err := c.invoke(ctx, "addNote", map[string]any{"note": note})
	if err != nil {
		return err
	}
	c.logger.Info("store response",
		zap.String("action", "addNote"),
		zap.ByteString("result", result),
	)
	return nil
}
