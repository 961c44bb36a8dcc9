package main

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/rmqbackup/pkg/db"
	"github.com/gentoomaniac/rmqbackup/pkg/export"
	"github.com/gentoomaniac/rmqbackup/pkg/rabbit"
)

type ExportCmd struct {
	Host     string   `help:"RabbitMQ host" default:"localhost"`
	HTTPPort int      `help:"Management API port" default:"15672"`
	User     string   `short:"u" help:"Management API user" required:""`
	Password string   `short:"p" help:"Management API password" required:""`
	Out      string   `short:"o" help:"Output directory" default:"rmq_http_dump" type:"path"`
	Vhost    []string `help:"Export only these vhosts"`
	Parallel int      `help:"Number of parallel queue exports, defaults to the CPU count"`
	DBPath   string   `short:"d" help:"sqlite file to record the export run in" type:"path"`
}

func runExport(params *ExportCmd) error {
	client := rabbit.NewClient(params.Host, params.HTTPPort, params.User, params.Password)
	if err := client.Ping(); err != nil {
		log.Error().Err(err).Msg("management API not reachable")
		return err
	}

	queues, err := client.ListQueues()
	if err != nil {
		log.Error().Err(err).Msg("failed listing queues")
		return err
	}
	if len(params.Vhost) > 0 {
		queues = filterVhosts(queues, params.Vhost)
	}

	if err := os.MkdirAll(params.Out, 0755); err != nil {
		log.Error().Err(err).Str("out", params.Out).Msg("failed creating output directory")
		return err
	}

	parallel := params.Parallel
	if parallel < 1 {
		parallel = runtime.NumCPU()
	}

	sampler := &export.Sampler{Client: client, OutDir: params.Out}
	results := sampler.ExportAll(queues, parallel)

	records := 0
	failed := 0
	for _, result := range results {
		records += result.Saved
		if result.Err != nil {
			failed++
		}
	}
	log.Info().Int("queues", len(results)).Int("records", records).Int("failed", failed).
		Str("out", params.Out).Msg("export finished")

	if params.DBPath != "" {
		if err := recordRun(params, results, records); err != nil {
			log.Warn().Err(err).Str("db", params.DBPath).Msg("failed recording export run")
		}
	}
	return nil
}

func filterVhosts(queues []rabbit.Queue, vhosts []string) []rabbit.Queue {
	want := make(map[string]bool, len(vhosts))
	for _, vhost := range vhosts {
		want[vhost] = true
	}
	filtered := make([]rabbit.Queue, 0, len(queues))
	for _, queue := range queues {
		if want[queue.Vhost] {
			filtered = append(filtered, queue)
		}
	}
	return filtered
}

func recordRun(params *ExportCmd, results []export.Result, records int) error {
	catalog, err := db.NewSQLLite(params.DBPath)
	if err != nil {
		return err
	}
	defer catalog.Close()
	if err := catalog.Init(); err != nil {
		return err
	}

	path, err := filepath.Abs(params.Out)
	if err != nil {
		path = params.Out
	}
	run := &db.Run{
		Path:      path,
		Host:      params.Host,
		Timestamp: time.Now().Unix(),
		Queues:    len(results),
		Records:   records,
	}
	if err := catalog.AddRun(run); err != nil {
		return err
	}
	for _, result := range results {
		queueDump := &db.QueueDump{
			RunID:    run.ID,
			Vhost:    result.Queue.Vhost,
			Queue:    result.Queue.Name,
			Expected: result.Queue.Messages,
			Saved:    result.Saved,
		}
		if err := catalog.AddQueueDump(queueDump); err != nil {
			return err
		}
	}
	return nil
}
