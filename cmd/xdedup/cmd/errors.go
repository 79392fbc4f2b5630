package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/xdedup/internal/adapters/socket"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns actionable guidance when the ledger cannot be
// opened due to lock contention. The server never opens the ledger, so the
// holder is another clean, prefix or watch run.
func diagnoseDBLock(root string) string {
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "run ledger is locked while a server is running\n" +
			"  → another xdedup run in this directory is recording history\n" +
			"  → retry when it finishes"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("run ledger is locked — server socket exists but is not responding\n"+
			"  → a previous server may have crashed\n"+
			"  → find the process:  ps aux | grep 'xdedup'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "run ledger is locked by another process\n" +
		"  → find the process:  ps aux | grep 'xdedup'\n" +
		"  → wait for it to finish, or kill it:  kill <PID>\n" +
		"  → then retry your command"
}
