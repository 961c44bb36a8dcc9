package export

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/rmqbackup/pkg/rabbit"
)

// Result is the per-queue outcome of an export run.
type Result struct {
	Queue rabbit.Queue
	Saved int
	Err   error
}

// ExportAll drains the given queues with a fixed pool of workers. Queues with
// no messages are skipped up front. One queue failing does not stop the
// others; the coordinator blocks until every queue has been attempted.
func (s *Sampler) ExportAll(queues []rabbit.Queue, parallel int) []Result {
	if parallel < 1 {
		parallel = 1
	}

	pending := make([]rabbit.Queue, 0, len(queues))
	for _, queue := range queues {
		if queue.Messages == 0 {
			log.Debug().Str("vhost", queue.Vhost).Str("queue", queue.Name).Msg("queue is empty, skipping")
			continue
		}
		pending = append(pending, queue)
	}
	log.Info().Int("queues", len(pending)).Int("empty", len(queues)-len(pending)).
		Int("parallel", parallel).Msg("starting export")

	work := make(chan rabbit.Queue)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for queue := range work {
				saved, err := s.DrainQueue(queue)
				results <- Result{Queue: queue, Saved: saved, Err: err}
			}
		}()
	}

	go func() {
		for _, queue := range pending {
			work <- queue
		}
		close(work)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]Result, 0, len(pending))
	for result := range results {
		if result.Err == nil {
			log.Info().Str("vhost", result.Queue.Vhost).Str("queue", result.Queue.Name).
				Int("saved", result.Saved).Msg("queue exported (duplicates possible)")
		}
		all = append(all, result)
	}
	return all
}
