package email

import (
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-imap"
)

func TestAwaitMessageSurfacesFetchError(t *testing.T) {
	messages := make(chan *imap.Message)
	close(messages)
	done := make(chan error, 1)
	done <- errors.New("connection reset")

	_, err := awaitMessage(messages, done)
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("err = %v, want the fetch error surfaced", err)
	}
}

func TestAwaitMessageEmptyFetch(t *testing.T) {
	messages := make(chan *imap.Message)
	close(messages)
	done := make(chan error, 1)
	done <- nil

	if _, err := awaitMessage(messages, done); err == nil {
		t.Fatal("expected an error when the fetch delivers nothing")
	}
}

func TestAwaitMessageDelivers(t *testing.T) {
	want := &imap.Message{SeqNum: 7}
	messages := make(chan *imap.Message, 1)
	messages <- want
	done := make(chan error, 1)

	msg, err := awaitMessage(messages, done)
	if err != nil {
		t.Fatalf("awaitMessage: %v", err)
	}
	if msg != want {
		t.Fatalf("msg = %v, want the delivered message", msg)
	}
}
