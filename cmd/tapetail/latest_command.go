package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tapetail/internal/api"
	"tapetail/internal/ipc"
)

func newLatestCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent telemetry snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Latest()
				if err != nil {
					return err
				}
				if !resp.HasSnapshot {
					return errors.New("no telemetry received yet")
				}
				if asJSON {
					return writeJSON(cmd, resp.Snapshot)
				}
				renderSnapshot(cmd, resp.Snapshot)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the snapshot as JSON")
	return cmd
}

func renderSnapshot(cmd *cobra.Command, snapshot api.Snapshot) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)
	printer := message.NewPrinter(language.English)

	header := fmt.Sprintf("Snapshot #%d (%s)", snapshot.Sequence, snapshot.CapturedAt.Local().Format(time.RFC1123))
	fmt.Fprintln(stdout, renderSectionHeader(header, colorize))

	rows := [][]string{
		{"Orders produced", printer.Sprintf("%d", snapshot.OrdersProduced), printer.Sprintf("%+d", snapshot.Deltas.OrdersProduced)},
		{"Orders consumed", printer.Sprintf("%d", snapshot.OrdersConsumed), printer.Sprintf("%+d", snapshot.Deltas.OrdersConsumed)},
		{"Orders dropped", printer.Sprintf("%d", snapshot.OrdersDropped), printer.Sprintf("%+d", snapshot.Deltas.OrdersDropped)},
		{"Network errors", printer.Sprintf("%d", snapshot.NetworkErrors), printer.Sprintf("%+d", snapshot.Deltas.NetworkErrors)},
		{"Batches sent", printer.Sprintf("%d", snapshot.BatchCount), printer.Sprintf("%+d", snapshot.Deltas.BatchCount)},
	}
	fmt.Fprintln(stdout, renderTable([]tableColumn{
		{Title: "Counter"},
		{Title: "Total", Numeric: true},
		{Title: "Delta", Numeric: true},
	}, rows))

	gaugeRows := [][]string{
		{"Buffer", fmt.Sprintf("%s / %s (%.1f%%)",
			printer.Sprintf("%d", snapshot.BufferSize),
			printer.Sprintf("%d", snapshot.BufferCapacity),
			snapshot.BufferUtilization)},
		{"Throughput", fmt.Sprintf("%.1f orders/sec", snapshot.ThroughputOPS)},
		{"Avg latency", formatLatency(snapshot.AvgLatencyNS)},
		{"P95 latency", formatLatency(snapshot.P95LatencyNS)},
		{"P99 latency", formatLatency(snapshot.P99LatencyNS)},
	}
	fmt.Fprintln(stdout, renderTable([]tableColumn{{Title: "Gauge"}, {Title: "Value", Numeric: true}}, gaugeRows))

	if snapshot.Deltas.Regressions > 0 {
		fmt.Fprintln(stdout, renderStatusLine("Counter resets", statusWarn,
			fmt.Sprintf("%d cumulative counters regressed in the last interval", snapshot.Deltas.Regressions), colorize))
	}
}

func formatLatency(ns float64) string {
	d := time.Duration(ns)
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.2fµs", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%.0fns", ns)
	}
}
