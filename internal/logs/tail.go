package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const defaultPoll = 250 * time.Millisecond

// ReadOptions controls Read.
type ReadOptions struct {
	// Limit keeps only the last Limit matching records; zero keeps all.
	Limit  int
	Filter Filter
}

// Read returns matching records from the diagnostics log and the offset just
// past the last byte read. A missing file yields no records.
func Read(path string, opts ReadOptions) ([]Record, int64, error) {
	lines, offset, err := readForward(path, 0)
	if err != nil {
		return nil, 0, err
	}

	var records []Record
	for _, line := range lines {
		rec, ok := ParseRecord(line)
		if !ok || !opts.Filter.Match(rec) {
			continue
		}
		records = append(records, rec)
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[len(records)-opts.Limit:]
	}
	return records, offset, nil
}

// Follow calls fn for every matching record appended after offset until ctx
// is cancelled. A file shorter than offset was truncated by a new run and is
// read again from the start.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, filter Filter, fn func(Record)) error {
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		size, err := fileSize(path)
		if err != nil {
			return err
		}
		if size < offset {
			offset = 0
		}
		if size > offset {
			lines, next, err := readForward(path, offset)
			if err != nil {
				return err
			}
			offset = next
			for _, line := range lines {
				if rec, ok := ParseRecord(line); ok && filter.Match(rec) {
					fn(rec)
				}
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("log path %q is a directory", path)
	}
	return info.Size(), nil
}

// readForward returns complete lines from offset onward. A trailing partial
// line is left for the next read.
func readForward(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	} else if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		lines = append(lines, line[:len(line)-1])
	}
	return lines, offset, nil
}
