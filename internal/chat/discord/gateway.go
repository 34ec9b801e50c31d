package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/websocket"

	"github.com/graaaaa/pomwars/internal/chat"
)

// Gateway intents the bot subscribes to.
const gatewayIntents = 1<<0 | // GUILDS
	1<<9 | // GUILD_MESSAGES
	1<<10 | // GUILD_MESSAGE_REACTIONS
	1<<12 | // DIRECT_MESSAGES
	1<<15 // MESSAGE_CONTENT

// Gateway opcodes.
const (
	opDispatch  = 0
	opHeartbeat = 1
	opIdentify  = 2
	opReconnect = 7
	opInvalid   = 9
	opHello     = 10
	opAck       = 11
)

// Events receives gateway dispatches. Nil handlers are skipped.
type Events struct {
	OnMessage  func(ctx context.Context, m chat.Message)
	OnReaction func(ctx context.Context, r chat.Reaction)
}

type gatewayPayload struct {
	Op   int             `json:"op"`
	Data json.RawMessage `json:"d"`
	Seq  *int64          `json:"s"`
	Type string          `json:"t"`
}

// Listen connects to the gateway and dispatches events until ctx is done.
// Dropped connections are re-established with exponential backoff.
func (d *Client) Listen(ctx context.Context, ev Events) error {
	delay := time.Second
	for {
		err := d.runGateway(ctx, ev)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.logger.Warn("gateway connection lost", "error", err, "retry_in", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
		if delay > time.Minute {
			delay = time.Minute
		}
	}
}

func (d *Client) runGateway(ctx context.Context, ev Events) error {
	var gw struct {
		URL string `json:"url"`
	}
	if err := d.do(ctx, http.MethodGet, "/gateway/bot", nil, &gw); err != nil {
		return fmt.Errorf("fetch gateway url: %w", err)
	}

	conn, err := websocket.Dial(gw.URL+"?v=10&encoding=json", "", "https://discord.com")
	if err != nil {
		return fmt.Errorf("dial gateway: %w", err)
	}
	defer conn.Close()

	// Close the socket when ctx ends so Receive unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	var (
		sendMu sync.Mutex
		seq    atomic.Int64
	)
	send := func(op int, data any) error {
		sendMu.Lock()
		defer sendMu.Unlock()
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		return websocket.JSON.Send(conn, gatewayPayload{Op: op, Data: raw})
	}

	// Hello comes first and carries the heartbeat interval.
	var hello gatewayPayload
	if err := websocket.JSON.Receive(conn, &hello); err != nil {
		return fmt.Errorf("receive hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected hello, got op %d", hello.Op)
	}
	var helloData struct {
		HeartbeatInterval int64 `json:"heartbeat_interval"`
	}
	if err := json.Unmarshal(hello.Data, &helloData); err != nil {
		return fmt.Errorf("decode hello: %w", err)
	}

	identify := map[string]any{
		"token":   d.token.Value(),
		"intents": gatewayIntents,
		"properties": map[string]string{
			"os":      "linux",
			"browser": "pomwars",
			"device":  "pomwars",
		},
	}
	if err := send(opIdentify, identify); err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	go func() {
		ticker := time.NewTicker(time.Duration(helloData.HeartbeatInterval) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := send(opHeartbeat, seq.Load()); err != nil {
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var payload gatewayPayload
		if err := websocket.JSON.Receive(conn, &payload); err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		if payload.Seq != nil {
			seq.Store(*payload.Seq)
		}

		switch payload.Op {
		case opDispatch:
			d.dispatch(ctx, ev, payload)
		case opHeartbeat:
			if err := send(opHeartbeat, seq.Load()); err != nil {
				return fmt.Errorf("heartbeat: %w", err)
			}
		case opReconnect, opInvalid:
			return fmt.Errorf("gateway requested reconnect (op %d)", payload.Op)
		case opAck:
			// heartbeat acknowledged
		}
	}
}

func (d *Client) dispatch(ctx context.Context, ev Events, payload gatewayPayload) {
	switch payload.Type {
	case "MESSAGE_CREATE":
		if ev.OnMessage == nil {
			return
		}
		var m apiMessage
		if err := json.Unmarshal(payload.Data, &m); err != nil {
			d.logger.Warn("bad message event", "error", err)
			return
		}
		ev.OnMessage(ctx, m.toMessage())

	case "MESSAGE_REACTION_ADD":
		if ev.OnReaction == nil {
			return
		}
		var r struct {
			UserID    snowflake `json:"user_id"`
			ChannelID snowflake `json:"channel_id"`
			MessageID snowflake `json:"message_id"`
			GuildID   snowflake `json:"guild_id"`
			Emoji     struct {
				Name string `json:"name"`
			} `json:"emoji"`
		}
		if err := json.Unmarshal(payload.Data, &r); err != nil {
			d.logger.Warn("bad reaction event", "error", err)
			return
		}
		ev.OnReaction(ctx, chat.Reaction{
			GuildID:   int64(r.GuildID),
			ChannelID: int64(r.ChannelID),
			MessageID: int64(r.MessageID),
			UserID:    int64(r.UserID),
			Emoji:     r.Emoji.Name,
		})
	}
}
