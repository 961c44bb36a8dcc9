package db

// Run is one recorded export run.
type Run struct {
	ID        int64
	Path      string
	Host      string
	Timestamp int64
	Queues    int
	Records   int
}

// QueueDump is the per queue outcome of a run. Expected is the message count
// the queue advertised when the run started, Saved the number of records
// actually written (duplicates included).
type QueueDump struct {
	ID       int64
	RunID    int64
	Vhost    string
	Queue    string
	Expected int
	Saved    int
}
