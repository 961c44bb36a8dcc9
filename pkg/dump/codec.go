package dump

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

// Suffix is the file name suffix of dump files.
const Suffix = ".jsonl.gz"

// maxLineSize bounds a single serialized message.
const maxLineSize = 16 * 1024 * 1024

// Writer appends records to a gzip compressed jsonl file, one message per
// line.
type Writer struct {
	file  *os.File
	gz    *gzip.Writer
	enc   *json.Encoder
	count int
}

// Create opens a new dump file for writing, creating parent directories as
// needed.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"path": path,
	}).Debug("dump file created")

	gz := gzip.NewWriter(file)
	return &Writer{file: file, gz: gz, enc: json.NewEncoder(gz)}, nil
}

// Write appends one record.
func (w *Writer) Write(rec *Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return err
	}
	w.count++
	return nil
}

// WriteRaw appends one already serialized line verbatim.
func (w *Writer) WriteRaw(line []byte) error {
	if _, err := w.gz.Write(line); err != nil {
		return err
	}
	if _, err := w.gz.Write([]byte("\n")); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) Close() error {
	if err := w.gz.Close(); err != nil {
		w.file.Close()
		return err
	}
	err := w.file.Close()
	log.WithFields(log.Fields{
		"path":    w.file.Name(),
		"records": w.count,
	}).Debug("dump file closed")
	return err
}

// Reader iterates over the raw lines of a dump file.
type Reader struct {
	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
}

func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{file: file, gz: gz, scanner: scanner}, nil
}

// Next returns the next line, or false when the file is exhausted. Check Err
// afterwards.
func (r *Reader) Next() ([]byte, bool) {
	if !r.scanner.Scan() {
		return nil, false
	}
	return r.scanner.Bytes(), true
}

// Err reports a read error encountered by Next, if any.
func (r *Reader) Err() error {
	return r.scanner.Err()
}

func (r *Reader) Close() error {
	if err := r.gz.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
