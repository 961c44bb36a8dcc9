package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/rs/zerolog/log"
)

func NewSQLLite(dbpath string) (*SQLLiteDB, error) {
	rawDB, err := sql.Open("sqlite3", dbpath)
	return &SQLLiteDB{rawDB: rawDB}, err
}

type SQLLiteDB struct {
	rawDB *sql.DB
}

func (db *SQLLiteDB) runStatement(sql string) (sql.Result, error) {
	statement, err := db.rawDB.Prepare(sql)
	if err != nil {
		return nil, err
	}
	result, err := statement.Exec()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (db *SQLLiteDB) Init() (err error) {
	_, err = db.runStatement("PRAGMA foreign_keys = ON")
	if err != nil {
		return
	}
	log.Debug().Msg("Enabling foreign keys")

	_, err = db.runStatement(
		"CREATE TABLE IF NOT EXISTS runs (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"path TEXT, " +
			"host TEXT, " +
			"created INTEGER, " +
			"queues INTEGER, " +
			"records INTEGER" +
			")")
	if err != nil {
		return err
	}

	_, err = db.runStatement(
		"CREATE TABLE IF NOT EXISTS queuedumps (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"runid INTEGER, " +
			"vhost TEXT, " +
			"queue TEXT, " +
			"expected INTEGER, " +
			"saved INTEGER, " +
			"FOREIGN KEY(runid) REFERENCES runs(id)" +
			")")

	return err
}

func (db *SQLLiteDB) AddRun(run *Run) error {
	result, err := db.rawDB.Exec("INSERT INTO runs (path, host, created, queues, records) VALUES(?, ?, ?, ?, ?)",
		run.Path, run.Host, run.Timestamp, run.Queues, run.Records)
	if err != nil {
		return err
	}
	run.ID, err = result.LastInsertId()
	return err
}

func (db *SQLLiteDB) AddQueueDump(dump *QueueDump) error {
	result, err := db.rawDB.Exec("INSERT INTO queuedumps (runid, vhost, queue, expected, saved) VALUES(?, ?, ?, ?, ?)",
		dump.RunID, dump.Vhost, dump.Queue, dump.Expected, dump.Saved)
	if err != nil {
		return err
	}
	dump.ID, err = result.LastInsertId()
	return err
}

func (db *SQLLiteDB) GetRuns() (runs []*Run, err error) {
	rows, err := db.rawDB.Query("SELECT id, path, host, created, queues, records FROM runs ORDER BY created DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Path, &run.Host, &run.Timestamp, &run.Queues, &run.Records); err != nil {
			return nil, err
		}
		log.Debug().
			Int("id", int(run.ID)).
			Str("path", run.Path).
			Msg("run found")
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (db *SQLLiteDB) GetQueueDumps(runID int64) (dumps []*QueueDump, err error) {
	rows, err := db.rawDB.Query("SELECT id, runid, vhost, queue, expected, saved FROM queuedumps WHERE runid=?", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		dump := &QueueDump{}
		if err := rows.Scan(&dump.ID, &dump.RunID, &dump.Vhost, &dump.Queue, &dump.Expected, &dump.Saved); err != nil {
			return nil, err
		}
		dumps = append(dumps, dump)
	}

	return dumps, rows.Err()
}

func (db *SQLLiteDB) Close() error {
	return db.rawDB.Close()
}
