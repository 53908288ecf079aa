package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Config string `help:"Path to a YAML config file." short:"c" type:"path" env:"PDEF_CONFIG"`

	Serve    ServeCmd    `cmd:"" help:"Serve the demo notes service over HTTP."`
	Describe DescribeCmd `cmd:"" help:"Print the descriptor manifest as JSON."`
	Gen      GenCmd      `cmd:"" help:"Generate a typed Go client."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("pdef"),
		kong.Description("pdef RPC runtime: serve, describe and generate clients."),
		kong.UsageOnError(),
	)
	err := ctx.Run(cli)
	ctx.FatalIfErrorf(err)
}
