package db

type Catalog interface {
	Init() error
	AddRun(run *Run) error
	AddQueueDump(dump *QueueDump) error
	GetRuns() ([]*Run, error)
	GetQueueDumps(runID int64) ([]*QueueDump, error)
	Close() error
}
