package stun

import (
	"errors"
	"sync"
	"time"
)

// Event errors passed to a Handler in place of a received message, when a
// transaction ends for a reason other than receiving its response.
var (
	ErrTransactionStopped = errors.New("stun: transaction stopped")
	ErrTransactionTimeout = errors.New("stun: transaction timed out")
	ErrAgentClosed        = errors.New("stun: agent closed")
)

// Handler receives the outcome of a transaction: either the matching
// response (err == nil) or one of the Err* sentinels above. Handlers must
// not block. The agent invokes them on the goroutine that called Stop,
// Process, Collect or Close, after releasing its internal lock; handler calls
// made from concurrent calls are not serialized with each other.
type Handler func(msg *Message, err error)

type transaction struct {
	deadline time.Time
	handler  Handler
}

// Agent tracks in-flight STUN transactions by transaction ID, matching
// incoming responses and expiring requests that go unanswered. See the
// spec for this package's operations: start, stop, process, collect, and
// close.
type Agent struct {
	mu           sync.Mutex
	transactions map[string]*transaction
	closed       bool
}

// NewAgent creates an empty, open Agent.
func NewAgent() *Agent {
	return &Agent{transactions: make(map[string]*transaction)}
}

// Start registers a new transaction awaiting either a matching response or
// the given deadline. It fails if the agent is closed or txID is already
// tracked.
func (a *Agent) Start(txID string, deadline time.Time, handler Handler) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return errAgentClosed
	}
	if _, exists := a.transactions[txID]; exists {
		return errDuplicateTransaction
	}
	a.transactions[txID] = &transaction{deadline: deadline, handler: handler}
	return nil
}

// Stop removes a transaction and fires its handler with
// ErrTransactionStopped.
func (a *Agent) Stop(txID string) error {
	a.mu.Lock()
	tx, ok := a.transactions[txID]
	if ok {
		delete(a.transactions, txID)
	}
	a.mu.Unlock()

	if !ok {
		return errUnknownTransaction
	}
	tx.handler(nil, ErrTransactionStopped)
	return nil
}

// Process matches an incoming message against its transaction ID. If
// found, the transaction is removed and its handler fired with msg. If no
// transaction matches, Process reports errUnknownTransaction and the
// caller should silently discard the message (a STUN message with no
// matching transaction is not necessarily an error — e.g. a retransmitted
// response for an already-collected transaction).
func (a *Agent) Process(msg *Message) error {
	a.mu.Lock()
	tx, ok := a.transactions[msg.TransactionID]
	if ok {
		delete(a.transactions, msg.TransactionID)
	}
	a.mu.Unlock()

	if !ok {
		return errUnknownTransaction
	}
	tx.handler(msg, nil)
	return nil
}

// Collect expires every transaction whose deadline has passed as of now,
// firing each handler with ErrTransactionTimeout. Callers that want to
// retry typically re-Start the transaction with a new transaction ID and
// deadline from within the handler, or after Collect returns.
func (a *Agent) Collect(now time.Time) {
	a.mu.Lock()
	var expired []*transaction
	for txID, tx := range a.transactions {
		if tx.deadline.Before(now) {
			expired = append(expired, tx)
			delete(a.transactions, txID)
		}
	}
	a.mu.Unlock()

	for _, tx := range expired {
		tx.handler(nil, ErrTransactionTimeout)
	}
}

// Close fires every remaining transaction's handler with ErrAgentClosed
// and marks the agent closed; subsequent Start calls fail.
func (a *Agent) Close() {
	a.mu.Lock()
	a.closed = true
	remaining := a.transactions
	a.transactions = make(map[string]*transaction)
	a.mu.Unlock()

	for _, tx := range remaining {
		tx.handler(nil, ErrAgentClosed)
	}
}
