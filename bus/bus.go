// Package bus is the in-process notification bus used by the touch core.
// Services publish events and retained state on slash-free string topics;
// subscribers receive them on buffered channels. Delivery never blocks a
// publisher: when a subscriber queue is full the oldest message is dropped.
package bus

import (
	"sync"
)

// Topic is a sequence of path tokens, e.g. Topic{"touch", "notify"}.
type Topic []string

// Equal reports whether two topics are token-wise identical.
func (t Topic) Equal(o Topic) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// Message is one published datum. Retained messages are stored at their
// topic node and replayed to late subscribers; publishing a retained
// message with a nil payload clears the stored one.
type Message struct {
	Topic    Topic
	Event    string // short event name, e.g. "esd_off", "suspend"
	Payload  any
	Retained bool
}

// Subscription receives messages for one exact topic.
type Subscription struct {
	topic Topic
	ch    chan *Message
	bus   *Bus
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.bus.unsubscribe(s) }

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

// Bus is a topic trie with per-subscription queues.
type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// New creates a bus with the given subscription queue length.
func New(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// Subscribe registers an exact-topic subscription. A retained message at
// the topic, if any, is delivered immediately.
func (b *Bus) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, b.qLen),
		bus:   b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	if n.retained != nil {
		sub.ch <- n.retained
	}
	return sub
}

// Publish delivers msg to all subscribers of its topic and stores it when
// retained. Publishers are never blocked by slow subscribers.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range msg.Topic {
		if n.children == nil {
			if !msg.Retained {
				return
			}
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			if !msg.Retained {
				return
			}
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}

	for _, sub := range n.subs {
		select {
		case sub.ch <- msg:
		default:
			// Drop the oldest to keep the publisher non-blocking.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- msg
		}
	}

	if msg.Retained {
		if msg.Payload == nil && msg.Event == "" {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

// Notify is shorthand for publishing a non-retained event.
func (b *Bus) Notify(topic Topic, event string) {
	b.Publish(&Message{Topic: topic, Event: event})
}

// SetState publishes a retained state payload at topic.
func (b *Bus) SetState(topic Topic, payload any) {
	b.Publish(&Message{Topic: topic, Payload: payload, Retained: true})
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, tok := range sub.topic {
		if n.children == nil {
			return
		}
		child, ok := n.children[tok]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	close(sub.ch)

	// Prune empty nodes.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}
