package main

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"tapetail/internal/api"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream snapshots from the daemon as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bind := strings.TrimSpace(cfg.Paths.APIBind)
			if bind == "" {
				return errors.New("watch requires the HTTP API; set paths.api_bind in the config")
			}

			endpoint := url.URL{Scheme: "ws", Host: bind, Path: "/api/watch"}
			dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
			conn, _, err := dialer.DialContext(cmd.Context(), endpoint.String(), nil)
			if err != nil {
				return wrapWatchDialError(err, bind)
			}
			defer conn.Close()

			go func() {
				<-cmd.Context().Done()
				_ = conn.Close()
			}()

			stdout := cmd.OutOrStdout()
			for {
				var snapshot api.Snapshot
				if err := conn.ReadJSON(&snapshot); err != nil {
					if cmd.Context().Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
						return nil
					}
					return fmt.Errorf("read snapshot stream: %w", err)
				}
				if asJSON {
					if err := writeJSON(cmd, snapshot); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(stdout, formatWatchLine(snapshot))
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print each snapshot as JSON")
	return cmd
}

func formatWatchLine(s api.Snapshot) string {
	return fmt.Sprintf("%s  seq=%d  produced=%d (%+d)  consumed=%d (%+d)  buffer=%.1f%%  throughput=%.1f/s  p99=%s",
		s.CapturedAt.Local().Format("15:04:05"),
		s.Sequence,
		s.OrdersProduced, s.Deltas.OrdersProduced,
		s.OrdersConsumed, s.Deltas.OrdersConsumed,
		s.BufferUtilization,
		s.ThroughputOPS,
		formatLatency(s.P99LatencyNS),
	)
}

func wrapWatchDialError(err error, bind string) error {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("connect to %s: %w; verify the daemon is running with `tapetail status`", bind, err)
	}
	return fmt.Errorf("connect to %s: %w", bind, err)
}
