package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/handwriteio/batchview/internal/batch/entity"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
	maxPageBytes    = int64(10485760) // 10 M

	defaultHandshakeTimeout = 5 * time.Second
)

// WSDialer builds websocket-backed importer handles.
type WSDialer struct {
	// HandshakeTimeout bounds the websocket handshake; zero means the
	// package default.
	HandshakeTimeout time.Duration
}

func (d WSDialer) Handle(endpoint string) Handle {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}

	return &wsHandle{endpoint: endpoint, timeout: timeout}
}

// wsHandle dials the importer endpoint on first Resolve and memoizes the
// connection for subsequent calls. Teardown belongs to the importer side;
// when the child process goes away, reads fail and the failure is surfaced
// to the caller as-is.
type wsHandle struct {
	endpoint string
	timeout  time.Duration

	mu   sync.Mutex
	conn *wsConnection
}

func (h *wsHandle) Resolve(ctx context.Context) (Connection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn != nil {
		return h.conn, nil
	}

	dialer := websocket.Dialer{
		ReadBufferSize:   readBufferSize,
		WriteBufferSize:  writeBufferSize,
		HandshakeTimeout: h.timeout,
	}

	conn, _, err := dialer.DialContext(ctx, h.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial importer %s: %w", h.endpoint, err)
	}

	conn.SetReadLimit(maxPageBytes)

	h.conn = &wsConnection{conn: conn}
	return h.conn, nil
}

type wsNextRequest struct {
	Action string `json:"action"`
}

type wsPage struct {
	Records []entity.Record  `json:"records"`
	Meta    entity.BatchMeta `json:"meta"`
}

// wsConnection answers next-page requests over one websocket connection.
//
// The mutex guards the connection because gorilla connections do not allow
// concurrent writers; the one-in-flight-request contract of Connection is
// still the caller's responsibility.
type wsConnection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConnection) NextPage(ctx context.Context) (Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return Page{}, fmt.Errorf("set write deadline: %w", err)
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return Page{}, fmt.Errorf("set read deadline: %w", err)
		}
	}

	if err := c.conn.WriteJSON(wsNextRequest{Action: "next"}); err != nil {
		return Page{}, fmt.Errorf("request next page: %w", err)
	}

	var page wsPage
	if err := c.conn.ReadJSON(&page); err != nil {
		return Page{}, fmt.Errorf("read page: %w", err)
	}

	return Page{Records: page.Records, Meta: page.Meta}, nil
}
