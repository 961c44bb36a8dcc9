package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/rmqbackup/pkg/dump"
	"github.com/gentoomaniac/rmqbackup/pkg/names"
	"github.com/gentoomaniac/rmqbackup/pkg/rabbit"
)

// Getter is the non-destructive read primitive. Each call returns the raw
// message objects of one read; a returned message stays in the queue.
type Getter interface {
	GetMessages(vhost string, queue string) ([]json.RawMessage, error)
}

// Sampler drains queues into dump files via repeated single message reads.
// Because every read requeues its message, the same message can show up more
// than once; duplicates are left for the offline dedup pass.
type Sampler struct {
	Client Getter
	OutDir string
	// MaxEmptyReads is the number of consecutive empty reads after which a
	// queue is considered drained. Defaults to 3.
	MaxEmptyReads int
}

func (s *Sampler) maxEmptyReads() int {
	if s.MaxEmptyReads > 0 {
		return s.MaxEmptyReads
	}
	return 3
}

// FilePath returns the dump file path for a queue.
func (s *Sampler) FilePath(vhost string, queue string) string {
	return filepath.Join(s.OutDir, names.EncodeVhost(vhost), names.EncodeQueue(queue)+dump.Suffix)
}

// DrainQueue reads messages from one queue until its advertised count is
// satisfied or the queue looks exhausted, and writes them to a dump file. It
// returns the number of records written; a partial file is kept on error
// unless nothing was written at all.
func (s *Sampler) DrainQueue(queue rabbit.Queue) (int, error) {
	logger := log.With().Str("vhost", queue.Vhost).Str("queue", queue.Name).Logger()

	path := s.FilePath(queue.Vhost, queue.Name)
	writer, err := dump.Create(path)
	if err != nil {
		return 0, err
	}

	saved := 0
	emptyReads := 0
	var loopErr error

loop:
	for saved < queue.Messages {
		msgs, err := s.Client.GetMessages(queue.Vhost, queue.Name)
		if err != nil {
			logger.Error().Err(err).Int("saved", saved).Msg("read failed, aborting queue")
			loopErr = err
			break
		}

		if len(msgs) == 0 {
			emptyReads++
			if emptyReads >= s.maxEmptyReads() {
				logger.Warn().Int("attempts", emptyReads).Int("saved", saved).
					Msg("consecutive empty reads, assuming queue is drained")
				break
			}
			continue
		}
		emptyReads = 0

		for _, raw := range msgs {
			record, err := dump.FromAPI(raw)
			if err != nil {
				logger.Warn().Err(err).Msg("skipping malformed message")
				continue
			}
			if err := writer.Write(record); err != nil {
				logger.Error().Err(err).Msg("write failed, aborting queue")
				loopErr = err
				break loop
			}
			saved++
		}
	}

	closeErr := writer.Close()
	if saved == 0 {
		os.Remove(path)
	}
	if loopErr != nil {
		return saved, loopErr
	}
	return saved, closeErr
}
