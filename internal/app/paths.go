package app

import (
	"os"
	"path/filepath"

	"github.com/corey/xdedup/internal/adapters/socket"
)

// Paths holds all resolved filesystem paths for the .xdedup/ project directory.
// All fields are pre-computed strings.
type Paths struct {
	Root string // .xdedup/
	DB   string // .xdedup/xdedup.db

	LogDir  string // .xdedup/log/
	LogFile string // .xdedup/log/xdedup.log

	RunDir string // .xdedup/run/
	Socket string // .xdedup/run/xdedup.sock (or a /tmp fallback for deep roots)
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".xdedup")
	return &Paths{
		Root: root,
		DB:   filepath.Join(root, "xdedup.db"),

		LogDir:  filepath.Join(root, "log"),
		LogFile: filepath.Join(root, "log", "xdedup.log"),

		RunDir: filepath.Join(root, "run"),
		Socket: socket.SocketPath(projectRoot),
	}
}

// EnsureDirs creates all subdirectories under .xdedup/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// OpenLog opens the project log file for appending, creating directories as needed.
func (p *Paths) OpenLog() (*os.File, error) {
	if err := p.EnsureDirs(); err != nil {
		return nil, err
	}
	return os.OpenFile(p.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
