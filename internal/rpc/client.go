package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DoyleJ11/woogles-client/internal/wire"
)

var ErrStatus = errors.New("rpc: unexpected status")

const historyPath = "/game_service.GameMetadataService/GetGameHistoryRefresher"

type Client struct {
	base string
	http *http.Client
}

// NewClient talks to the API rooted at base. A nil hc uses http.DefaultClient.
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), http: hc}
}

type historyRequest struct {
	GameID string `json:"game_id"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetGameHistory fetches a full snapshot of a game.
func (c *Client) GetGameHistory(ctx context.Context, gameID string) (*wire.HistoryRefresher, error) {
	var out wire.HistoryRefresher
	if err := c.call(ctx, historyPath, historyRequest{GameID: gameID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
			return fmt.Errorf("%w %d: %s: %s", ErrStatus, resp.StatusCode, eb.Code, eb.Message)
		}
		return fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
