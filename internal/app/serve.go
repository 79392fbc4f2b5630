package app

import (
	"context"
	"fmt"

	"github.com/corey/xdedup/internal/adapters/socket"
)

// Serve answers batch requests on the project socket until ctx is
// cancelled or a client sends shutdown. ready, when set, is called with the
// socket path once the server accepts connections.
func (a *App) Serve(ctx context.Context, ready func(addr string)) error {
	if err := a.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", a.Paths.Root, err)
	}
	srv := socket.NewServer(a, a.Paths.Socket)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	a.log.Info().Str("socket", srv.Addr()).Msg("serving")
	if ready != nil {
		ready(srv.Addr())
	}

	select {
	case <-ctx.Done():
	case <-srv.ShutdownCh():
		a.log.Info().Msg("shutdown requested")
	}
	return srv.Stop()
}
