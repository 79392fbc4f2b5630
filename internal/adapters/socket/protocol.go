// Package socket implements a JSON-over-Unix-socket protocol for the xdedup server.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
// It is the host-language binding: any process that can open a Unix socket can
// hand a batch of documents to the engine and get the cleaned batch back.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
)

// maxSockPath is the portable limit on a Unix socket path (sun_path is 104
// bytes on macOS, 108 on Linux, including the terminator).
const maxSockPath = 103

// maxMessage bounds one request or response line. Batches of documents
// travel in a single message.
const maxMessage = 256 << 20

// SocketPath returns the Unix socket path for a given project root:
// {root}/.xdedup/run/xdedup.sock, or /tmp/xdedup-{first12hex}.sock when
// that path is too long for the platform.
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	p := filepath.Join(abs, ".xdedup", "run", "xdedup.sock")
	if len(p) <= maxSockPath {
		return p
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/xdedup-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodClean    = "clean"
	MethodPrefix   = "prefix"
	MethodHealth   = "health"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// DocumentsParams is the params for clean and prefix requests.
type DocumentsParams struct {
	Documents   []string `json:"documents"`
	MinimumSize int      `json:"minimum_size"`
}

// DocumentsResult is the result of clean and prefix requests: the processed
// documents, same length and order as the request.
type DocumentsResult struct {
	Documents []string `json:"documents"`
	Elapsed   string   `json:"elapsed"`
}

// HealthResult is the result of a health request.
// CharsPerSec is 0 until the engine has served enough batches.
type HealthResult struct {
	Status      string  `json:"status"`
	Requests    int64   `json:"requests"`
	Uptime      string  `json:"uptime"`
	CharsPerSec float64 `json:"chars_per_sec,omitempty"`
}
