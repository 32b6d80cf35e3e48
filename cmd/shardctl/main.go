package main

import (
	"os"

	"github.com/alecthomas/kong"
	gotoolbox "github.com/lab5e/gotoolbox/toolbox"

	"github.com/lab5e/shardfunk/pkg/ctrl"
)

func main() {
	var params ctrl.Parameters
	k, err := kong.New(&params, kong.Name("shardctl"),
		kong.Description("Sharded redis router utility"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: false,
		}))
	if err != nil {
		panic(err)
	}
	ctx, err := k.Parse(os.Args[1:])
	if err != nil {
		k.FatalIfErrorf(err)
		return
	}
	gotoolbox.InitLogs("shardctl", params.Log)

	if err := ctx.Run(ctrl.NewRunContext(params)); err != nil {
		// Commands print their own error messages
		os.Exit(1)
	}
}
