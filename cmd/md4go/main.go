// Command md4go renders Markdown to HTML and prints the parser event stream.
package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("md4go"),
		kong.Description("Markdown parser and HTML renderer."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
