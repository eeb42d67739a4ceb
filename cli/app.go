// Package cli implements the robodesc command line interface for inspecting
// and converting robot-description documents.
package cli

import (
	"os"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/robodesc/robodesc/sdf"
	"github.com/robodesc/robodesc/urdf"
)

// NewApp returns the robodesc CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:            "robodesc",
		Usage:           "process SDF and URDF robot descriptions",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "path to the description to parse",
			},
			&cli.BoolFlag{
				Name:    "show",
				Aliases: []string{"s"},
				Usage:   "show the parsed robot model",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file path (.sdf or .urdf)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"vv"},
				Usage:   "enable verbose output",
			},
		},
		Action: RunAction,
	}
}

// RunAction loads the description and either prints it or exports it to the
// requested format.
func RunAction(c *cli.Context) error {
	if c.Bool("verbose") {
		golog.ReplaceGloabl(golog.NewDevelopmentLogger("robodesc"))
	}

	file := c.String("file")
	output := c.String("output")
	show := c.Bool("show")

	if file == "" {
		if output != "" || show {
			return errors.New("the --file argument is required when using --output or --show")
		}
		return cli.ShowAppHelp(c)
	}
	// With nothing else requested, parsing a file implies showing it.
	if output == "" {
		show = true
	}

	root, err := sdf.LoadFile(file)
	if err != nil {
		return err
	}

	if show {
		if _, err := os.Stdout.WriteString(root.String()); err != nil {
			return err
		}
	}

	if output == "" {
		return nil
	}

	var rendered string
	switch {
	case strings.HasSuffix(output, ".urdf"):
		exporter := urdf.Exporter{Pretty: true}
		rendered, err = exporter.ToURDFStringFromRoot(root)
	case strings.HasSuffix(output, ".sdf"):
		rendered, err = root.Serialize(true)
	default:
		return errors.Errorf(
			"unsupported output file extension for %q, supported extensions are '.urdf' and '.sdf'", output)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(output, []byte(rendered), 0o644) //nolint:gosec
}
