// Package vk implements the transport client for the VK messages API.
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vkblast/vkblast/core/factory"
	"github.com/vkblast/vkblast/core/logger"
	"github.com/vkblast/vkblast/core/transport"
	infralogger "github.com/vkblast/vkblast/infra/logger"
)

const (
	// DefaultBaseURL is the public VK API endpoint.
	DefaultBaseURL = "https://api.vk.com/method"
	// DefaultAPIVersion pins the messages.send contract.
	DefaultAPIVersion = "5.131"
)

// Config holds the client settings.
type Config struct {
	BaseURL    string `json:"base_url"`
	APIVersion string `json:"api_version"`
	// TimeoutSeconds bounds the underlying HTTP client. The orchestrator
	// applies its own per-send deadline on top of this.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

// Client sends messages through the VK messages.send method.
type Client struct {
	base    string
	version string
	http    *http.Client
	log     logger.Logger
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	if log == nil {
		log = infralogger.NopLogger{}
	}
	return &Client{
		base:    strings.TrimSuffix(cfg.BaseURL, "/"),
		version: cfg.APIVersion,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     log,
	}
}

// apiResponse is the envelope every VK method returns: exactly one of the
// two fields is set.
type apiResponse struct {
	Response json.RawMessage     `json:"response"`
	Error    *transport.APIError `json:"error"`
}

// Send performs one messages.send call. A non-2xx status or an undecodable
// body is a transport error; a decoded error envelope is returned in the
// receipt so the caller can distinguish API-level rejections.
func (c *Client) Send(ctx context.Context, msg transport.Message) (transport.Receipt, error) {
	form := url.Values{
		"user_id":      {msg.RecipientID},
		"message":      {msg.Text},
		"random_id":    {strconv.FormatInt(msg.Nonce, 10)},
		"access_token": {msg.Token},
		"v":            {c.version},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/messages.send", strings.NewReader(form.Encode()))
	if err != nil {
		return transport.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return transport.Receipt{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transport.Receipt{}, fmt.Errorf("vk: unexpected status %d", resp.StatusCode)
	}
	// The VK envelope is small; the cap only guards against a misbehaving
	// endpoint streaming an unbounded body.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return transport.Receipt{}, err
	}

	var env apiResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return transport.Receipt{}, fmt.Errorf("vk: decode response: %w", err)
	}
	if env.Error != nil {
		c.log.Debugw("messages.send rejected", map[string]any{
			"recipient": msg.RecipientID,
			"code":      env.Error.Code,
		})
		return transport.Receipt{Error: env.Error}, nil
	}
	return transport.Receipt{}, nil
}

// init registers the client with the transport factory.
func init() {
	_ = transport.RegisterClient("vk", func(conf map[string]any) (transport.Client, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewClient(c, infralogger.New("vk-client")), nil
	})
}
