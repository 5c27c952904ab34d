package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/kordless/mystic/cli/reader"
	"github.com/kordless/mystic/cli/render"
)

// StatsCommand returns the stats command with subcommands. Stats returns
// aggregated, derived facts about the running process.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show aggregated statistics (metrics, state, logs)",
		Subcommands: []*cli.Command{
			statsMetricsCommand(),
			statsStateCommand(),
			statsLogsCommand(),
		},
	}
}

func statsMetricsCommand() *cli.Command {
	return &cli.Command{
		Name:   "metrics",
		Usage:  "Show Performance Tracker statistics",
		Flags:  TUIReadOnlyFlags(),
		Action: statsMetricsAction,
	}
}

func statsMetricsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	snapshot := reader.StatsMetrics()

	if c.Bool("tui") {
		return r.RenderTUI("stats_metrics", snapshot)
	}

	return r.Render(snapshot)
}

func statsStateCommand() *cli.Command {
	return &cli.Command{
		Name:   "state",
		Usage:  "Show State Manager timeline statistics",
		Flags:  TUIReadOnlyFlags(),
		Action: statsStateAction,
	}
}

func statsStateAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	stats := reader.StatsState()

	if c.Bool("tui") {
		return r.RenderTUI("stats_state", stats)
	}

	return r.Render(stats)
}

func statsLogsCommand() *cli.Command {
	return &cli.Command{
		Name:   "logs",
		Usage:  "Show Call Logger ring buffer statistics",
		Flags:  TUIReadOnlyFlags(),
		Action: statsLogsAction,
	}
}

func statsLogsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	stats := reader.StatsLogs()

	if c.Bool("tui") {
		return r.RenderTUI("stats_logs", stats)
	}

	return r.Render(stats)
}
