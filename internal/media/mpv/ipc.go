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
	"sync/atomic"
	"time"
)

// ErrConnClosed is returned for requests issued after the IPC connection closed.
var ErrConnClosed = errors.New("mpv ipc connection closed")

// message is any JSON line mpv writes: either a reply (request_id set) or an
// asynchronous event (event set).
type message struct {
	RequestID int64           `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Event     string          `json:"event,omitempty"`
	ID        int64           `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type reply struct {
	data json.RawMessage
	err  error
}

// conn speaks mpv's JSON IPC protocol over a socket.
type conn struct {
	c      net.Conn
	nextID atomic.Int64

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan reply
	closed  bool

	onEvent func(message)
	done    chan struct{}
}

func newConn(c net.Conn, onEvent func(message)) *conn {
	ic := &conn{
		c:       c,
		pending: make(map[int64]chan reply),
		onEvent: onEvent,
		done:    make(chan struct{}),
	}
	go ic.readLoop()
	return ic
}

// call sends a command and waits for its reply.
func (ic *conn) call(ctx context.Context, args ...any) (json.RawMessage, error) {
	deadline, _ := ctx.Deadline()
	p, err := ic.send(deadline, args...)
	if err != nil {
		return nil, err
	}
	return ic.await(ctx, p)
}

// pendingReply is a command that has been written and awaits mpv's answer.
type pendingReply struct {
	id int64
	ch chan reply
}

// send writes one command before returning, so commands reach mpv in the
// order send is called. A zero deadline never times out the write.
func (ic *conn) send(deadline time.Time, args ...any) (pendingReply, error) {
	p := pendingReply{id: ic.nextID.Add(1), ch: make(chan reply, 1)}

	ic.mu.Lock()
	if ic.closed {
		ic.mu.Unlock()
		return pendingReply{}, ErrConnClosed
	}
	ic.pending[p.id] = p.ch
	ic.mu.Unlock()

	payload, err := json.Marshal(request{Command: args, RequestID: p.id})
	if err != nil {
		ic.forget(p.id)
		return pendingReply{}, fmt.Errorf("encode command: %w", err)
	}
	payload = append(payload, '\n')

	ic.writeMu.Lock()
	_ = ic.c.SetWriteDeadline(deadline)
	_, err = ic.c.Write(payload)
	ic.writeMu.Unlock()
	if err != nil {
		ic.forget(p.id)
		return pendingReply{}, fmt.Errorf("write command: %w", err)
	}
	return p, nil
}

// await blocks until the reply for p arrives.
func (ic *conn) await(ctx context.Context, p pendingReply) (json.RawMessage, error) {
	select {
	case r := <-p.ch:
		return r.data, r.err
	case <-ctx.Done():
		ic.forget(p.id)
		return nil, ctx.Err()
	case <-ic.done:
		return nil, ErrConnClosed
	}
}

func (ic *conn) forget(id int64) {
	ic.mu.Lock()
	delete(ic.pending, id)
	ic.mu.Unlock()
}

func (ic *conn) readLoop() {
	defer ic.shutdown()

	scanner := bufio.NewScanner(ic.c)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event != "" {
			if ic.onEvent != nil {
				ic.onEvent(msg)
			}
			continue
		}
		ic.resolve(msg)
	}
}

func (ic *conn) resolve(msg message) {
	ic.mu.Lock()
	ch, ok := ic.pending[msg.RequestID]
	delete(ic.pending, msg.RequestID)
	ic.mu.Unlock()
	if !ok {
		return
	}
	r := reply{data: msg.Data}
	if msg.Error != "" && msg.Error != "success" {
		r.err = fmt.Errorf("mpv: %s", msg.Error)
	}
	ch <- r
}

func (ic *conn) shutdown() {
	ic.mu.Lock()
	if ic.closed {
		ic.mu.Unlock()
		return
	}
	ic.closed = true
	ic.pending = nil
	ic.mu.Unlock()
	close(ic.done)
}

// Close closes the socket and fails all pending calls.
func (ic *conn) Close() error {
	err := ic.c.Close()
	<-ic.done
	if err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
