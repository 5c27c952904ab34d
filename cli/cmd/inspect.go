package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/kordless/mystic/cli/reader"
	"github.com/kordless/mystic/cli/render"
)

// InspectCommand returns the inspect command with subcommands. Inspect
// returns a deep view of a single entity.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect a single entity (function)",
		Subcommands: []*cli.Command{
			inspectFunctionCommand(),
		},
	}
}

func inspectFunctionCommand() *cli.Command {
	return &cli.Command{
		Name:      "function",
		Usage:     "Inspect a function by its full name (module.Name)",
		ArgsUsage: "<full-name>",
		Flags:     TUIReadOnlyFlags(),
		Action:    inspectFunctionAction,
	}
}

func inspectFunctionAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("full-name required", 1)
	}
	fullName := c.Args().First()

	detail, err := reader.InspectFunction(fullName)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI("inspect_function", detail)
	}

	return r.Render(detail)
}
