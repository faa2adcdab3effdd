package messaging

import (
	"context"
	"sync"
)

type Message struct {
	Channel string
	Payload []byte
}

// MemoryBroker records published messages in process. It is a test broker;
// the worker always publishes through Redis.
type MemoryBroker struct {
	mu       sync.Mutex
	messages []Message
	// FailWith, when set, is returned by every Publish.
	FailWith error
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return b.FailWith
	}
	b.messages = append(b.messages, Message{Channel: channel, Payload: append([]byte(nil), payload...)})
	return nil
}

func (b *MemoryBroker) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

func (b *MemoryBroker) Close() error {
	return nil
}
