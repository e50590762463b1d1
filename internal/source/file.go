// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

package source

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
	"github.com/tomtom215/signalmux/internal/queue"
)

// File tails a single log file, emitting one Log event per appended
// line, using fsnotify to detect writes instead of polling (the
// dependency is already present transitively via Badger's directory
// watching, per SPEC_FULL.md §4.5; wiring it directly here gives it a
// concrete exercised home).
type File struct {
	path    string
	senders []*queue.Sender
	log     zerolog.Logger
}

func NewFile(path string, senders []*queue.Sender, log zerolog.Logger) *File {
	return &File{path: path, senders: senders, log: log}
}

func (f *File) Run() {
	fh, err := os.Open(f.path)
	if err != nil {
		f.log.Error().Err(err).Str("source", "file").Str("path", f.path).Msg("open failed, fatal")
		panic(err)
	}
	defer fh.Close()

	// Start at end-of-file: only new appends are tailed, matching a
	// conventional log-tail source rather than replaying history.
	if _, err := fh.Seek(0, io.SeekEnd); err != nil {
		f.log.Error().Err(err).Str("source", "file").Msg("seek failed, fatal")
		panic(err)
	}
	reader := bufio.NewReader(fh)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.log.Error().Err(err).Str("source", "file").Msg("watcher init failed, fatal")
		panic(err)
	}
	defer watcher.Close()

	if err := watcher.Add(f.path); err != nil {
		f.log.Error().Err(err).Str("source", "file").Msg("watch failed, fatal")
		panic(err)
	}

	f.drainAvailable(reader)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				f.drainAvailable(reader)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn().Err(err).Str("source", "file").Msg("watcher error")
		}
	}
}

func (f *File) drainAvailable(reader *bufio.Reader) {
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = trimNewline(line)
			ev := event.NewLogEvent(event.Log{Path: f.path, Payload: line, Timestamp: time.Now().Unix()})
			if sendErr := fanOut(f.senders, ev); sendErr != nil {
				f.log.Error().Err(sendErr).Str("source", "file").Msg("downstream queue gone, fatal")
				panic(sendErr)
			}
		}
		if err != nil {
			// io.EOF: caught up, wait for the next fsnotify event.
			return
		}
	}
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
