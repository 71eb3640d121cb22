package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tapetail/internal/api"
	"tapetail/internal/ipc"
	"tapetail/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and collector status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Status)
				}
				renderEnvironmentChecks(cmd, ctx)
				renderDaemonStatus(cmd, resp.Status)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output status as JSON")
	return cmd
}

func renderEnvironmentChecks(cmd *cobra.Command, ctx *commandContext) {
	cfg := ctx.configValue()
	if cfg == nil {
		return
	}
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	fmt.Fprintln(stdout, renderSectionHeader("Environment", colorize))
	for _, check := range preflight.RunAll(cfg) {
		kind := statusWarn
		if check.Passed {
			kind = statusOK
		}
		fmt.Fprintln(stdout, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
	fmt.Fprintln(stdout)
}

func renderDaemonStatus(cmd *cobra.Command, status api.DaemonStatus) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	fmt.Fprintln(stdout, renderSectionHeader("Daemon", colorize))
	runningKind := statusError
	runningMsg := "stopped"
	if status.Running {
		runningKind = statusOK
		runningMsg = fmt.Sprintf("running (pid %d)", status.PID)
	}
	fmt.Fprintln(stdout, renderStatusLine("State", runningKind, runningMsg, colorize))
	if !status.StartedAt.IsZero() {
		fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, status.StartedAt.Local().Format(time.RFC1123), colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Telemetry log", statusInfo, status.TelemetryLog, colorize))
	if status.APIBind != "" {
		fmt.Fprintln(stdout, renderStatusLine("API", statusInfo, "http://"+status.APIBind, colorize))
	}
	snapshotKind := statusWarn
	snapshotMsg := "no telemetry received yet"
	if status.HasSnapshot {
		snapshotKind = statusOK
		snapshotMsg = "latest snapshot available"
	}
	fmt.Fprintln(stdout, renderStatusLine("Snapshot", snapshotKind, snapshotMsg, colorize))

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, renderSectionHeader("Collector", colorize))

	printer := message.NewPrinter(language.English)
	rows := [][]string{
		{"Poll cycles", printer.Sprintf("%d", status.Collector.Cycles)},
		{"Records", printer.Sprintf("%d", status.Collector.Records)},
		{"Skipped lines", printer.Sprintf("%d", status.Collector.SkippedLines)},
		{"Counter resets", printer.Sprintf("%d", status.Collector.Regressions)},
		{"Cursor offset", printer.Sprintf("%d", status.Collector.CursorOffset)},
		{"Cursor resets", printer.Sprintf("%d", status.Collector.CursorResets)},
	}
	if !status.Collector.LastPublish.IsZero() {
		rows = append(rows, []string{"Last publish", status.Collector.LastPublish.Local().Format(time.RFC1123)})
	}
	if status.Collector.Backoff != "" {
		rows = append(rows, []string{"Backoff", status.Collector.Backoff})
	}
	if strings.TrimSpace(status.Collector.LastError) != "" {
		rows = append(rows, []string{"Last error", status.Collector.LastError})
	}
	fmt.Fprintln(stdout, renderTable([]tableColumn{{Title: "Counter"}, {Title: "Value", Numeric: true}}, rows))
}
