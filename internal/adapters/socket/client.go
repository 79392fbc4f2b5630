package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
	"unicode/utf8"

	"github.com/corey/xdedup/internal/domain/dedup"
)

// batchTimeout bounds a clean or prefix round trip.
const batchTimeout = 10 * time.Minute

// Client connects to the xdedup server over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Clean sends a batch for cross-document duplicate removal.
func (c *Client) Clean(docs []string, minSize int) ([]string, error) {
	return c.documents(MethodClean, docs, minSize)
}

// Prefix sends a batch for shared-prefix removal.
func (c *Client) Prefix(docs []string, minSize int) ([]string, error) {
	return c.documents(MethodPrefix, docs, minSize)
}

// documents rejects invalid UTF-8 before sending: JSON encoding would
// otherwise replace the bad bytes with U+FFFD.
func (c *Client) documents(method string, docs []string, minSize int) ([]string, error) {
	for i, d := range docs {
		if !utf8.ValidString(d) {
			return nil, &dedup.DocumentError{Index: i, Err: dedup.ErrInvalidUTF8}
		}
	}
	if docs == nil {
		docs = []string{}
	}
	resp, err := c.callWithTimeout(Request{
		ID:     "1",
		Method: method,
		Params: DocumentsParams{Documents: docs, MinimumSize: minSize},
	}, batchTimeout)
	if err != nil {
		return nil, err
	}
	var result DocumentsResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return result.Documents, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	resp, err := c.call(Request{
		ID:     "1",
		Method: MethodHealth,
	})
	if err != nil {
		return nil, err
	}
	var result HealthResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the server.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{
		ID:     "1",
		Method: MethodShutdown,
	})
	return err
}

// Ping checks if the server is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// decodeResult re-marshals the generic result into out.
func decodeResult(resp *Response, out interface{}) error {
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	// Send request
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	// Read response
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
