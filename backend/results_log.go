package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var dockerResultsDir = "/cache_logs"

// ResultsLog is the append-only record of evaluated starting configurations:
// one flat key:value line per configuration, no escaping needed since every
// field is a small integer.
type ResultsLog struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *bufio.Writer
	lines  int
}

func NewResultsLog(path string) *ResultsLog {
	return &ResultsLog{path: resolveResultsPath(path)}
}

func resolveResultsPath(path string) string {
	if path == "" {
		path = DefaultConfig().ResultsLogPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	if info, err := os.Stat(dockerResultsDir); err == nil && info.IsDir() {
		return filepath.Join(dockerResultsDir, path)
	}
	return path
}

func (rl *ResultsLog) Path() string {
	return rl.path
}

func (rl *ResultsLog) ensureOpen() error {
	if rl.file != nil {
		return nil
	}
	file, err := os.OpenFile(rl.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	rl.file = file
	rl.writer = bufio.NewWriter(file)
	return nil
}

// Append writes one evaluated starting configuration.
func (rl *ResultsLog) Append(face int, player PlayerID, total int, eval int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if err := rl.ensureOpen(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(rl.writer, "face:%d player:%d total:%d eval:%d\n", face, player, total, eval); err != nil {
		return err
	}
	rl.lines++
	return nil
}

func (rl *ResultsLog) Lines() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lines
}

func (rl *ResultsLog) Flush() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.writer == nil {
		return nil
	}
	return rl.writer.Flush()
}

func (rl *ResultsLog) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.writer != nil {
		if err := rl.writer.Flush(); err != nil {
			log.Printf("[results] flush failed for %s: %v", rl.path, err)
		}
		rl.writer = nil
	}
	if rl.file != nil {
		if err := rl.file.Close(); err != nil {
			log.Printf("[results] close failed for %s: %v", rl.path, err)
		}
		rl.file = nil
	}
}
