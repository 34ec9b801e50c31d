// Package chattest provides an in-memory fake of the chat platform for tests.
package chattest

import (
	"context"
	"sync"

	"github.com/graaaaa/pomwars/internal/chat"
)

// Fake is an in-memory chat.Client. Safe for concurrent use.
type Fake struct {
	botID  int64
	nextID int64

	mu        sync.Mutex
	messages  map[int64][]chat.Message // channelID -> messages, oldest first
	dms       map[int64][]string       // userID -> DM contents
	reactions map[int64][]string       // messageID -> emoji
	channels  []chat.Channel
	roles     map[int64]map[int64][]string // guildID -> userID -> role names
	guildRole map[int64][]string           // guildID -> created role names

	// DenyDM simulates a user blocking DMs.
	DenyDM map[int64]bool
	// DenyWrite simulates channels without write permission.
	DenyWrite map[int64]bool
}

// New creates a Fake whose bot user has the given ID.
func New(botID int64) *Fake {
	return &Fake{
		botID:     botID,
		nextID:    1000,
		messages:  make(map[int64][]chat.Message),
		dms:       make(map[int64][]string),
		reactions: make(map[int64][]string),
		roles:     make(map[int64]map[int64][]string),
		guildRole: make(map[int64][]string),
		DenyDM:    make(map[int64]bool),
		DenyWrite: make(map[int64]bool),
	}
}

// BotUserID implements chat.Client.
func (f *Fake) BotUserID() int64 { return f.botID }

// AddChannel registers a channel the fake knows about.
func (f *Fake) AddChannel(ch chat.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, ch)
}

// SeedMessage places a pre-existing message in a channel.
func (f *Fake) SeedMessage(channelID, authorID int64, content string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := chat.Message{ID: f.nextID, ChannelID: channelID, AuthorID: authorID, Content: content}
	f.messages[channelID] = append(f.messages[channelID], m)
	return m.ID
}

// SendMessage implements chat.Client.
func (f *Fake) SendMessage(ctx context.Context, channelID int64, content string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DenyWrite[channelID] {
		return 0, chat.ErrForbidden
	}
	f.nextID++
	m := chat.Message{ID: f.nextID, ChannelID: channelID, AuthorID: f.botID, Content: content}
	f.messages[channelID] = append(f.messages[channelID], m)
	return m.ID, nil
}

// SendDirectMessage implements chat.Client.
func (f *Fake) SendDirectMessage(ctx context.Context, userID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DenyDM[userID] {
		return chat.ErrForbidden
	}
	f.dms[userID] = append(f.dms[userID], content)
	return nil
}

// EditMessage implements chat.Client.
func (f *Fake) EditMessage(ctx context.Context, channelID, messageID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[channelID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Content = content
			return nil
		}
	}
	return chat.ErrForbidden
}

// AddReaction implements chat.Client.
func (f *Fake) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[messageID] = append(f.reactions[messageID], emoji)
	return nil
}

// OldestMessage implements chat.Client.
func (f *Fake) OldestMessage(ctx context.Context, channelID int64) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[channelID]
	if len(msgs) == 0 {
		return nil, nil
	}
	m := msgs[0]
	return &m, nil
}

// ChannelsNamed implements chat.Client.
func (f *Fake) ChannelsNamed(ctx context.Context, name string) ([]chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Channel
	for _, ch := range f.channels {
		if ch.Name == name {
			out = append(out, ch)
		}
	}
	return out, nil
}

// ChannelByID implements chat.Client.
func (f *Fake) ChannelByID(ctx context.Context, channelID int64) (*chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		if ch.ID == channelID {
			c := ch
			return &c, nil
		}
	}
	return nil, nil
}

// UserRoles implements chat.Client.
func (f *Fake) UserRoles(ctx context.Context, guildID, userID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := f.roles[guildID]
	if users == nil {
		return nil, nil
	}
	return append([]string(nil), users[userID]...), nil
}

// EnsureRole implements chat.Client.
func (f *Fake) EnsureRole(ctx context.Context, guildID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.guildRole[guildID] {
		if r == name {
			return nil
		}
	}
	f.guildRole[guildID] = append(f.guildRole[guildID], name)
	return nil
}

// AssignRole implements chat.Client.
func (f *Fake) AssignRole(ctx context.Context, guildID, userID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := f.roles[guildID]
	if users == nil {
		users = make(map[int64][]string)
		f.roles[guildID] = users
	}
	for _, r := range users[userID] {
		if r == name {
			return nil
		}
	}
	users[userID] = append(users[userID], name)
	return nil
}

// SetRoles overwrites the roles applied to a user, for test setup.
func (f *Fake) SetRoles(guildID, userID int64, names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := f.roles[guildID]
	if users == nil {
		users = make(map[int64][]string)
		f.roles[guildID] = users
	}
	users[userID] = append([]string(nil), names...)
}

// DMs returns the DMs sent to a user.
func (f *Fake) DMs(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dms[userID]...)
}

// ChannelMessages returns the messages in a channel, oldest first.
func (f *Fake) ChannelMessages(channelID int64) []chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Message(nil), f.messages[channelID]...)
}

// Reactions returns the emoji added to a message.
func (f *Fake) Reactions(messageID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reactions[messageID]...)
}
