package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kordless/mystic/cli/reader"
	"github.com/kordless/mystic/cli/render"
)

// listWarningThreshold is the number of items above which we warn about
// using --module to narrow the result.
const listWarningThreshold = 100

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// ListCommand returns the list command with subcommands. List returns
// thin slices, not inspect-level detail.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entities (functions, hijacked)",
		Subcommands: []*cli.Command{
			listFunctionsCommand(),
			listHijackedCommand(),
		},
	}
}

func listFunctionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "functions",
		Usage: "List catalog functions",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "module",
				Usage: "Filter by module path substring",
			},
			&cli.BoolFlag{
				Name:  "include-private",
				Usage: "Include unexported functions",
			},
		),
		Action: listFunctionsAction,
	}
}

func listFunctionsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list commands", 1)
	}

	results := reader.ListFunctions(c.String("module"), c.Bool("include-private"))

	if len(results) > listWarningThreshold && c.String("module") == "" && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "warning: %d functions returned; use --module to narrow\n", len(results))
	}

	return r.Render(results)
}

func listHijackedCommand() *cli.Command {
	return &cli.Command{
		Name:   "hijacked",
		Usage:  "List currently hijacked functions",
		Flags:  ReadOnlyFlags(),
		Action: listHijackedAction,
	}
}

func listHijackedAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list commands", 1)
	}

	return r.Render(reader.ListHijacked())
}
