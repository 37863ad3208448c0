package events

import (
	"context"
	"encoding/json"
	"sync"
)

type Message struct {
	Topic string
	Key   string
	Event map[string]any
}

// Memory keeps published events in process. Tests use it to assert on what
// would have gone to kafka.
type Memory struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (m *Memory) Publish(_ context.Context, topic, key string, event any) error {
	if m.Err != nil {
		return m.Err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Topic: topic, Key: key, Event: decoded})
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Messages(topic string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, 0, len(m.messages))
	for _, msg := range m.messages {
		if topic == "" || msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}
