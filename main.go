package main

import (
	"github.com/alecthomas/kong"
	"github.com/gentoomaniac/logging"
	"github.com/rs/zerolog/log"
)

var (
	version = "unset"
	commit  = "unset"
	binName = "rmqbackup"
	builtBy = "manual"
	date    = "unset"
)

var cli struct {
	logging.LoggingConfig

	Export ExportCmd `cmd:"" help:"Dump all queues without consuming them"`
	Import ImportCmd `cmd:"" help:"Restore queues from a dump"`
	Dedup  DedupCmd  `cmd:"" help:"Remove duplicate messages from a dump file"`

	Version kong.VersionFlag `short:"v" help:"Display version."`
}

func main() {
	ctx := kong.Parse(&cli, kong.UsageOnError(), kong.Vars{
		"version": version,
		"commit":  commit,
		"binName": binName,
		"builtBy": builtBy,
		"date":    date,
	})
	logging.Setup(&cli.LoggingConfig)

	var err error
	switch ctx.Command() {
	case "export":
		err = runExport(&cli.Export)
	case "import":
		err = runImport(&cli.Import)
	case "dedup <file>":
		err = runDedup(&cli.Dedup)
	default:
		log.Error().Str("command", ctx.Command()).Msg("unknown command")
		ctx.Exit(1)
	}
	if err != nil {
		ctx.Exit(1)
	}
	ctx.Exit(0)
}
