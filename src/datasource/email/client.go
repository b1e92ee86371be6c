// Package email pulls dataset workbooks that arrive as mail attachments.
package email

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Attachment is a dataset file extracted from a mail message.
type Attachment struct {
	Filename string
	Content  []byte
	Date     time.Time
}

// Client is an IMAP client that fetches the newest dataset attachment.
type Client struct {
	server    string // address with port, e.g. "imap.example.com:993"
	username  string
	password  string
	client    *client.Client
	mu        sync.Mutex
	connected bool
}

func NewClient(server, username, password string) *Client {
	return &Client{
		server:   server,
		username: username,
		password: password,
	}
}

// Connect establishes a TLS connection, reusing a live one when possible.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		if _, err := c.client.Capability(); err == nil {
			return nil
		}
		c.client.Logout()
		c.client = nil
		c.connected = false
	}

	conn, err := client.DialTLS(c.server, nil)
	if err != nil {
		return fmt.Errorf("dial imap server: %w", err)
	}
	if err := conn.Login(c.username, c.password); err != nil {
		conn.Logout()
		return fmt.Errorf("imap login: %w", err)
	}

	c.client = conn
	c.connected = true
	return nil
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Logout()
		c.client = nil
	}
	c.connected = false
}

// FetchLatestDataset returns the .xlsx attachment of the newest INBOX
// message whose subject contains targetSubject, or nil when no such
// message exists.
func (c *Client) FetchLatestDataset(targetSubject string) (*Attachment, error) {
	if err := c.Connect(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.client.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("select inbox: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Subject", targetSubject)
	seqNums, err := c.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums[len(seqNums)-1])

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.client.Fetch(seqset, items, messages)
	}()

	msg, err := awaitMessage(messages, done)
	if err != nil {
		return nil, err
	}

	att, attErr := extractXLSX(msg.GetBody(section))
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	if attErr != nil {
		return nil, attErr
	}
	if att != nil && msg.Envelope != nil {
		att.Date = msg.Envelope.Date
	}
	return att, nil
}

// awaitMessage waits for the first fetched message. When the fetch ends
// without delivering one, its error takes precedence over the generic
// empty-fetch message. The done channel is drained only on that path; the
// caller drains it after reading the message body.
func awaitMessage(messages <-chan *imap.Message, done <-chan error) (*imap.Message, error) {
	msg := <-messages
	if msg != nil {
		return msg, nil
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	return nil, fmt.Errorf("message fetch returned nothing")
}

func extractXLSX(r io.Reader) (*Attachment, error) {
	if r == nil {
		return nil, fmt.Errorf("message has no body")
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read message part: %w", err)
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, err := header.Filename()
		if err != nil || !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
			continue
		}

		content, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", filename, err)
		}
		return &Attachment{Filename: filename, Content: content}, nil
	}
	return nil, nil
}
