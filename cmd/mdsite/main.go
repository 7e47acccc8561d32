// Command mdsite renders a directory of Markdown content into HTML pages,
// listings, a sitemap and a JSON index, over HTTP, CGI or as static files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdsite/cmd/mdsite/commands"
	derrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Exit))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string, stdout, stderr io.Writer, exit func(int)) int {
	var cli commands.CLI
	cli.SetStderr(stderr)

	parser, err := kong.New(&cli,
		kong.Name("mdsite"),
		kong.Description("Render Markdown content into pages, listings, a sitemap and a JSON index."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	g := &commands.Global{Logger: cli.Logger(), Stdout: stdout, Stderr: stderr}
	if err := kctx.Run(g, &cli); err != nil {
		adapter := derrors.NewCLIErrorAdapter(cli.Verbose, cli.Logger())
		fmt.Fprintln(stderr, adapter.FormatError(err))
		return adapter.ExitCodeFor(err)
	}
	return 0
}
