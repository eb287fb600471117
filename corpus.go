package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SentenceIterator yields tokenized sentences one at a time. Iterate calls
// fn once per sentence and stops early if fn returns a non-nil error.
type SentenceIterator interface {
	Iterate(fn func(sentence []string) error) error
}

// SentenceDir streams sentences from every .txt file in a directory. Each
// line is one sentence, split on whitespace. No casing, stemming or
// punctuation handling happens here; downstream consumers rely on getting
// exactly the whitespace-split token boundaries.
type SentenceDir struct {
	dirname string
}

func NewSentenceDir(dirname string) *SentenceDir {
	return &SentenceDir{dirname: dirname}
}

func (s *SentenceDir) Iterate(fn func([]string) error) error {
	entries, err := os.ReadDir(s.dirname)
	if err != nil {
		return fmt.Errorf("reading corpus directory %s failed: %w", s.dirname, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), ".txt") {
			continue
		}
		if err := s.iterateFile(filepath.Join(s.dirname, entry.Name()), fn); err != nil {
			return err
		}
	}

	return nil
}

func (s *SentenceDir) iterateFile(path string, fn func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening corpus file %s failed: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) // tolerate long lines
	for scanner.Scan() {
		if err := fn(strings.Fields(scanner.Text())); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning corpus file %s failed: %w", path, err)
	}

	return nil
}

// SentenceSlice adapts an in-memory list of sentences to SentenceIterator.
type SentenceSlice [][]string

func (s SentenceSlice) Iterate(fn func([]string) error) error {
	for _, sentence := range s {
		if err := fn(sentence); err != nil {
			return err
		}
	}
	return nil
}
