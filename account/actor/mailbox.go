package actor

import (
	"sync"
	"sync/atomic"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

type operation string

const (
	opBalance  operation = "balance"
	opDeposit  operation = "deposit"
	opWithdraw operation = "withdraw"
	opStop     operation = "stop"
)

const (
	statePending int32 = iota
	stateClaimed
	stateAbandoned
)

type message struct {
	op     operation
	amount money.Money
	reply  chan<- reply

	// state is shared by the caller and the worker; exactly one of them moves it off pending.
	state *atomic.Int32
}

func newMessage(op operation, amount money.Money, replies chan<- reply) message {
	return message{op: op, amount: amount, reply: replies, state: new(atomic.Int32)}
}

// claim marks msg as taken by the worker. It fails when the caller has already abandoned msg.
func (msg message) claim() bool {
	return msg.state.CompareAndSwap(statePending, stateClaimed)
}

// abandon withdraws msg before the worker takes it. It fails once the worker has claimed msg.
func (msg message) abandon() bool {
	return msg.state.CompareAndSwap(statePending, stateAbandoned)
}

type reply struct {
	balance money.Money
	err     error
}

// mailbox is an unbounded FIFO queue with a single consumer.
type mailbox struct {
	mu     sync.Mutex
	queue  []message
	closed bool
	wake   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

// push appends msg and returns the resulting queue depth. It refuses messages once closed.
func (m *mailbox) push(msg message) (int, bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, false
	}

	m.queue = append(m.queue, msg)
	depth := len(m.queue)
	m.mu.Unlock()

	m.signal()

	return depth, true
}

// close enqueues the stop sentinel behind every pending message and refuses further pushes.
// It reports false when the mailbox was already closed.
func (m *mailbox) close() bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}

	m.closed = true
	m.queue = append(m.queue, message{op: opStop})
	m.mu.Unlock()

	m.signal()

	return true
}

// pop blocks until a message is available and removes it.
func (m *mailbox) pop() message {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			msg := m.queue[0]
			m.queue[0] = message{}
			m.queue = m.queue[1:]
			m.mu.Unlock()

			return msg
		}
		m.mu.Unlock()

		<-m.wake
	}
}

func (m *mailbox) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
