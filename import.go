package main

import (
	"os"

	"github.com/rs/zerolog/log"

	clitools "github.com/gentoomaniac/rmqbackup/pkg/cli"
	"github.com/gentoomaniac/rmqbackup/pkg/db"
	"github.com/gentoomaniac/rmqbackup/pkg/restore"
)

type ImportCmd struct {
	Host           string   `help:"RabbitMQ host" default:"localhost"`
	AmqpPort       int      `help:"AMQP port" default:"5672"`
	User           string   `short:"u" help:"Broker user" required:""`
	Password       string   `short:"p" help:"Broker password" required:""`
	Indir          string   `help:"Directory with the dump, defaults to --out" type:"path"`
	Out            string   `short:"o" help:"Used if --indir is not set" default:"rmq_http_dump" type:"path"`
	Vhost          []string `help:"Import only these vhosts"`
	DeclareQueue   bool     `help:"Create missing queues before publishing"`
	LegacySanitize bool     `help:"Decode old '_' directory names"`
	DBPath         string   `short:"d" help:"sqlite catalog to pick an export run from" type:"path"`
}

func runImport(params *ImportCmd) error {
	indir := params.Indir
	if indir == "" && params.DBPath != "" {
		picked, err := pickRun(params.DBPath)
		if err != nil {
			log.Error().Err(err).Msg("failed selecting export run")
			return err
		}
		log.Debug().Str("path", picked.Path).Int("created", int(picked.Timestamp)).Msg("run selected")
		indir = picked.Path
	}
	if indir == "" {
		indir = params.Out
	}
	if _, err := os.Stat(indir); err != nil {
		log.Error().Err(err).Str("indir", indir).Msg("input directory not found")
		return err
	}

	restorer := &restore.Restorer{
		Cache:        restore.NewCache(restore.AMQPDialer(params.Host, params.AmqpPort, params.User, params.Password)),
		Vhosts:       params.Vhost,
		DeclareQueue: params.DeclareQueue,
		LegacyNames:  params.LegacySanitize,
	}
	if err := restorer.RestoreAll(indir); err != nil {
		log.Error().Err(err).Str("indir", indir).Msg("import failed")
		return err
	}
	log.Info().Str("indir", indir).Msg("import finished")
	return nil
}

func pickRun(dbpath string) (*db.Run, error) {
	catalog, err := db.NewSQLLite(dbpath)
	if err != nil {
		return nil, err
	}
	defer catalog.Close()

	runs, err := catalog.GetRuns()
	if err != nil {
		return nil, err
	}
	return clitools.PromptRuns(runs)
}
