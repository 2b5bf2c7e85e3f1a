package stun

import (
	"testing"
	"time"
)

func TestAgentProcessMatchesTransaction(t *testing.T) {
	a := NewAgent()
	got := make(chan *Message, 1)

	if err := a.Start("tx-1", time.Now().Add(time.Second), func(msg *Message, err error) {
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		got <- msg
	}); err != nil {
		t.Fatal(err)
	}

	resp := &Message{TransactionID: "tx-1"}
	if err := a.Process(resp); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-got:
		if msg != resp {
			t.Fatal("handler received wrong message")
		}
	default:
		t.Fatal("handler was not invoked")
	}

	if err := a.Process(resp); err != errUnknownTransaction {
		t.Fatalf("second Process: err = %v, want errUnknownTransaction", err)
	}
}

func TestAgentStopFiresStoppedEvent(t *testing.T) {
	a := NewAgent()
	var gotErr error

	a.Start("tx-1", time.Now().Add(time.Second), func(msg *Message, err error) {
		gotErr = err
	})
	if err := a.Stop("tx-1"); err != nil {
		t.Fatal(err)
	}
	if gotErr != ErrTransactionStopped {
		t.Fatalf("err = %v, want ErrTransactionStopped", gotErr)
	}

	if err := a.Stop("tx-1"); err != errUnknownTransaction {
		t.Fatalf("second Stop: err = %v, want errUnknownTransaction", err)
	}
}

func TestAgentCollectExpiresDeadlines(t *testing.T) {
	a := NewAgent()
	var gotErr error

	past := time.Now().Add(-time.Second)
	a.Start("tx-1", past, func(msg *Message, err error) {
		gotErr = err
	})

	a.Collect(time.Now())
	if gotErr != ErrTransactionTimeout {
		t.Fatalf("err = %v, want ErrTransactionTimeout", gotErr)
	}

	if err := a.Process(&Message{TransactionID: "tx-1"}); err != errUnknownTransaction {
		t.Fatal("expired transaction should no longer be tracked")
	}
}

func TestAgentCloseFiresAllHandlers(t *testing.T) {
	a := NewAgent()
	count := 0

	a.Start("tx-1", time.Now().Add(time.Minute), func(msg *Message, err error) {
		if err == ErrAgentClosed {
			count++
		}
	})
	a.Start("tx-2", time.Now().Add(time.Minute), func(msg *Message, err error) {
		if err == ErrAgentClosed {
			count++
		}
	})

	a.Close()
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	if err := a.Start("tx-3", time.Now().Add(time.Minute), func(*Message, error) {}); err != errAgentClosed {
		t.Fatalf("Start after Close: err = %v, want errAgentClosed", err)
	}
}

func TestAgentDuplicateTransactionRejected(t *testing.T) {
	a := NewAgent()
	a.Start("tx-1", time.Now().Add(time.Second), func(*Message, error) {})
	if err := a.Start("tx-1", time.Now().Add(time.Second), func(*Message, error) {}); err != errDuplicateTransaction {
		t.Fatalf("err = %v, want errDuplicateTransaction", err)
	}
}
