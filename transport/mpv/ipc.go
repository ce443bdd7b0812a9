package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/playstate/playstate/log"
)

// message is one newline-delimited JSON object read from mpv. Replies carry
// a request_id; asynchronous notifications carry an event name.
type message struct {
	Event     string          `json:"event"`
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type reply struct {
	data json.RawMessage
	err  error
}

// inflight is a request awaiting its reply. onReply, if set, runs on the
// read loop before any later message is handled.
type inflight struct {
	ch      chan reply
	onReply func(error)
}

// client multiplexes commands and events over one IPC connection.
type client struct {
	conn net.Conn

	wmu  sync.Mutex
	enc  *json.Encoder
	next int64

	mu      sync.Mutex
	pending map[int64]inflight
	err     error

	done chan struct{}
}

func newClient(conn net.Conn, onEvent func(message)) *client {
	c := &client{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		pending: make(map[int64]inflight),
		done:    make(chan struct{}),
	}
	go c.readLoop(onEvent)
	return c
}

func (c *client) readLoop(onEvent func(message)) {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			log.Debugf("mpv: skipping unparsable line: %v", err)
			continue
		}

		if msg.RequestID != nil && msg.Event == "" {
			c.resolve(*msg.RequestID, msg)
			continue
		}
		if msg.Event != "" {
			onEvent(msg)
		}
	}

	err := scanner.Err()
	if err == nil || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		err = ErrNotRunning
	}
	c.fail(err)
}

func (c *client) resolve(id int64, msg message) {
	c.mu.Lock()
	req, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()

	if !ok {
		return
	}

	var err error
	if msg.Error != "" && msg.Error != "success" {
		err = fmt.Errorf("mpv: %s", msg.Error)
	}
	if req.onReply != nil {
		req.onReply(err)
	}
	req.ch <- reply{data: msg.Data, err: err}
}

// fail ends every pending call with err and rejects later ones.
func (c *client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return
	}
	c.err = err
	for id, req := range c.pending {
		req.ch <- reply{err: err}
		delete(c.pending, id)
	}
	close(c.done)
}

// call sends command and waits for mpv's reply.
func (c *client) call(ctx context.Context, command ...any) (json.RawMessage, error) {
	return c.callThen(ctx, nil, command...)
}

// callThen is call with a hook that sees the reply in stream order.
func (c *client) callThen(ctx context.Context, onReply func(error), command ...any) (json.RawMessage, error) {
	ch := make(chan reply, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.next++
	id := c.next
	c.pending[id] = inflight{ch: ch, onReply: onReply}
	c.mu.Unlock()

	c.wmu.Lock()
	err := c.enc.Encode(request{Command: command, RequestID: id})
	c.wmu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("write %v: %w", command[0], err)
	}

	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

func (c *client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// close shuts the connection down and waits for the read loop to exit.
func (c *client) close() error {
	err := c.conn.Close()
	<-c.done
	return err
}
