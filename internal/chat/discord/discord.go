// Package discord implements the chat.Client interface over the Discord
// REST API and delivers gateway events to the bot.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/graaaaa/pomwars/internal/chat"
	"github.com/graaaaa/pomwars/internal/config"
)

const defaultBaseURL = "https://discord.com/api/v10"

// guild text channel type in the Discord API.
const channelTypeGuildText = 0

// Client is a Discord REST client. The bot token is stored as a Secret and
// appears as [REDACTED] in logs.
type Client struct {
	token   config.Secret
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	botID   int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Client) { d.http = c }
}

// WithBaseURL overrides the API base URL, for testing.
func WithBaseURL(u string) Option {
	return func(d *Client) { d.baseURL = u }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Client) { d.logger = logger }
}

// New creates a Client and verifies the token by fetching the bot user.
func New(ctx context.Context, token config.Secret, opts ...Option) (*Client, error) {
	d := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	var me struct {
		ID snowflake `json:"id"`
	}
	if err := d.do(ctx, http.MethodGet, "/users/@me", nil, &me); err != nil {
		return nil, fmt.Errorf("fetch bot user: %w", err)
	}
	d.botID = int64(me.ID)
	return d, nil
}

// BotUserID implements chat.Client.
func (d *Client) BotUserID() int64 { return d.botID }

// snowflake is a Discord ID, transported as a decimal string.
type snowflake int64

func (s *snowflake) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	if str == "" {
		*s = 0
		return nil
	}
	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("parse snowflake %q: %w", str, err)
	}
	*s = snowflake(v)
	return nil
}

func (s snowflake) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(s), 10))
}

// do performs one API request, retrying once on a rate limit. A 403 maps to
// chat.ErrForbidden.
func (d *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bot "+d.token.Value())
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := d.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests && attempt == 0:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			d.logger.Warn("rate limited", "path", path, "retry_after", retryAfter)
			select {
			case <-time.After(retryAfter):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue

		case resp.StatusCode == http.StatusForbidden:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return chat.ErrForbidden

		default:
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
		}
	}
}

func parseRetryAfter(header string) time.Duration {
	if secs, err := strconv.ParseFloat(header, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return time.Second
}

type apiMessage struct {
	ID        snowflake `json:"id"`
	ChannelID snowflake `json:"channel_id"`
	Content   string    `json:"content"`
	Author    struct {
		ID snowflake `json:"id"`
	} `json:"author"`
}

func (m apiMessage) toMessage() chat.Message {
	return chat.Message{
		ID:        int64(m.ID),
		ChannelID: int64(m.ChannelID),
		AuthorID:  int64(m.Author.ID),
		Content:   m.Content,
	}
}

// SendMessage implements chat.Client.
func (d *Client) SendMessage(ctx context.Context, channelID int64, content string) (int64, error) {
	in := map[string]string{"content": content}
	var out apiMessage
	path := fmt.Sprintf("/channels/%d/messages", channelID)
	if err := d.do(ctx, http.MethodPost, path, in, &out); err != nil {
		return 0, err
	}
	return int64(out.ID), nil
}

// SendDirectMessage implements chat.Client. Discord requires opening a DM
// channel first; a user who blocks DMs yields ErrForbidden on the send.
func (d *Client) SendDirectMessage(ctx context.Context, userID int64, content string) error {
	in := map[string]snowflake{"recipient_id": snowflake(userID)}
	var dm struct {
		ID snowflake `json:"id"`
	}
	if err := d.do(ctx, http.MethodPost, "/users/@me/channels", in, &dm); err != nil {
		return err
	}
	_, err := d.SendMessage(ctx, int64(dm.ID), content)
	return err
}

// EditMessage implements chat.Client.
func (d *Client) EditMessage(ctx context.Context, channelID, messageID int64, content string) error {
	in := map[string]string{"content": content}
	path := fmt.Sprintf("/channels/%d/messages/%d", channelID, messageID)
	return d.do(ctx, http.MethodPatch, path, in, nil)
}

// AddReaction implements chat.Client.
func (d *Client) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	path := fmt.Sprintf("/channels/%d/messages/%d/reactions/%s/@me",
		channelID, messageID, url.PathEscape(emoji))
	return d.do(ctx, http.MethodPut, path, nil, nil)
}

// OldestMessage implements chat.Client. Asking for messages after ID 0
// returns them oldest-first.
func (d *Client) OldestMessage(ctx context.Context, channelID int64) (*chat.Message, error) {
	var out []apiMessage
	path := fmt.Sprintf("/channels/%d/messages?after=0&limit=1", channelID)
	if err := d.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	m := out[0].toMessage()
	return &m, nil
}

type apiChannel struct {
	ID      snowflake `json:"id"`
	GuildID snowflake `json:"guild_id"`
	Name    string    `json:"name"`
	Type    int       `json:"type"`
}

// ChannelsNamed implements chat.Client, scanning every guild the bot is in.
func (d *Client) ChannelsNamed(ctx context.Context, name string) ([]chat.Channel, error) {
	var guilds []struct {
		ID snowflake `json:"id"`
	}
	if err := d.do(ctx, http.MethodGet, "/users/@me/guilds", nil, &guilds); err != nil {
		return nil, err
	}

	var out []chat.Channel
	for _, g := range guilds {
		var channels []apiChannel
		path := fmt.Sprintf("/guilds/%d/channels", int64(g.ID))
		if err := d.do(ctx, http.MethodGet, path, nil, &channels); err != nil {
			return nil, err
		}
		for _, ch := range channels {
			if ch.Type == channelTypeGuildText && ch.Name == name {
				out = append(out, chat.Channel{ID: int64(ch.ID), GuildID: int64(g.ID), Name: ch.Name})
			}
		}
	}
	return out, nil
}

// ChannelByID implements chat.Client. DM channels report no guild and map
// to nil.
func (d *Client) ChannelByID(ctx context.Context, channelID int64) (*chat.Channel, error) {
	var ch apiChannel
	path := fmt.Sprintf("/channels/%d", channelID)
	if err := d.do(ctx, http.MethodGet, path, nil, &ch); err != nil {
		return nil, err
	}
	if ch.GuildID == 0 {
		return nil, nil
	}
	return &chat.Channel{ID: int64(ch.ID), GuildID: int64(ch.GuildID), Name: ch.Name}, nil
}

type apiRole struct {
	ID   snowflake `json:"id"`
	Name string    `json:"name"`
}

func (d *Client) guildRoles(ctx context.Context, guildID int64) ([]apiRole, error) {
	var roles []apiRole
	path := fmt.Sprintf("/guilds/%d/roles", guildID)
	if err := d.do(ctx, http.MethodGet, path, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// UserRoles implements chat.Client, resolving role IDs to names.
func (d *Client) UserRoles(ctx context.Context, guildID, userID int64) ([]string, error) {
	var member struct {
		Roles []snowflake `json:"roles"`
	}
	path := fmt.Sprintf("/guilds/%d/members/%d", guildID, userID)
	if err := d.do(ctx, http.MethodGet, path, nil, &member); err != nil {
		return nil, err
	}

	roles, err := d.guildRoles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	names := make(map[snowflake]string, len(roles))
	for _, r := range roles {
		names[r.ID] = r.Name
	}

	out := make([]string, 0, len(member.Roles))
	for _, id := range member.Roles {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// EnsureRole implements chat.Client.
func (d *Client) EnsureRole(ctx context.Context, guildID int64, name string) error {
	roles, err := d.guildRoles(ctx, guildID)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r.Name == name {
			return nil
		}
	}

	in := map[string]string{"name": name}
	path := fmt.Sprintf("/guilds/%d/roles", guildID)
	return d.do(ctx, http.MethodPost, path, in, nil)
}

// AssignRole implements chat.Client.
func (d *Client) AssignRole(ctx context.Context, guildID, userID int64, name string) error {
	roles, err := d.guildRoles(ctx, guildID)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r.Name == name {
			path := fmt.Sprintf("/guilds/%d/members/%d/roles/%d", guildID, userID, int64(r.ID))
			return d.do(ctx, http.MethodPut, path, nil, nil)
		}
	}
	return fmt.Errorf("role %q not found in guild %d", name, guildID)
}
