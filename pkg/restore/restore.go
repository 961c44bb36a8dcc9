package restore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/rmqbackup/pkg/dump"
	"github.com/gentoomaniac/rmqbackup/pkg/names"
)

// Restorer replays dump files back into the broker, one file at a time,
// publishing every record to its queue on the default exchange.
type Restorer struct {
	Cache *Cache
	// Vhosts restricts the restore to these vhosts when non-empty.
	Vhosts []string
	// DeclareQueue creates missing destination queues as durable.
	DeclareQueue bool
	// LegacyNames enables the old "_" directory name decoding.
	LegacyNames bool
}

// RestoreAll walks the dump directory and restores every file it finds. A
// failing file is logged and skipped, it does not stop the walk. All cached
// connections are closed before returning.
func (r *Restorer) RestoreAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	defer r.Cache.CloseAll()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		vhost, err := names.DecodeVhost(entry.Name(), r.LegacyNames)
		if err != nil {
			log.Warn().Err(err).Str("dir", entry.Name()).Msg("skipping undecodable vhost directory")
			continue
		}
		if !r.wantVhost(vhost) {
			continue
		}

		files, err := filepath.Glob(filepath.Join(dir, entry.Name(), "*"+dump.Suffix))
		if err != nil {
			return err
		}
		for _, file := range files {
			raw := strings.TrimSuffix(filepath.Base(file), dump.Suffix)
			queue, err := names.DecodeQueue(raw, r.LegacyNames)
			if err != nil {
				log.Warn().Err(err).Str("file", file).Msg("skipping undecodable queue file")
				continue
			}
			if names.Reserved(queue) {
				log.Info().Str("vhost", vhost).Str("queue", queue).Msg("skipping reserved queue")
				continue
			}
			if err := r.restoreFile(file, vhost, queue); err != nil {
				log.Error().Err(err).Str("vhost", vhost).Str("queue", queue).Msg("failed restoring queue")
			}
		}
	}
	return nil
}

func (r *Restorer) wantVhost(vhost string) bool {
	if len(r.Vhosts) == 0 {
		return true
	}
	for _, want := range r.Vhosts {
		if vhost == want {
			return true
		}
	}
	return false
}

func (r *Restorer) restoreFile(path string, vhost string, queue string) error {
	logger := log.With().Str("vhost", vhost).Str("queue", queue).Logger()

	channel, err := r.Cache.Channel(vhost)
	if err != nil {
		return err
	}
	if r.DeclareQueue {
		if _, err := channel.QueueDeclarePassive(queue, true, false, false, false, nil); err != nil {
			// the failed passive declare closed the channel
			channel, err = r.Cache.Channel(vhost)
			if err != nil {
				return err
			}
			if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
				return err
			}
			logger.Debug().Msg("queue declared")
		}
	}

	src, err := dump.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	restored := 0
	line := 0
	for {
		raw, ok := src.Next()
		if !ok {
			break
		}
		line++

		var record dump.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping invalid record")
			continue
		}
		body, err := record.Body()
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping invalid record")
			continue
		}

		if err := channel.Publish("", queue, false, false, publishing(&record, body)); err != nil {
			return err
		}
		restored++
	}
	if err := src.Err(); err != nil {
		return err
	}

	logger.Info().Int("restored", restored).Msg("queue restored")
	return nil
}
