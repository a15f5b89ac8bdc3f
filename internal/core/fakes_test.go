package core

import (
	"context"
	"errors"
	"os"
	"sync"
)

// fakeProcessor appends a marker to the file so the post-chain bytes differ
// from the original ones.
type fakeProcessor struct {
	name     string
	types    map[string]bool
	marker   []byte
	applyErr error
	checkOK  bool
	checkErr error

	mu      sync.Mutex
	applied []string
}

func newFakeProcessor(name string, marker string, types ...string) *fakeProcessor {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return &fakeProcessor{name: name, types: m, marker: []byte(marker), checkOK: true}
}

func (p *fakeProcessor) Name() string { return p.name }

func (p *fakeProcessor) Applicable(contentType string) bool { return p.types[contentType] }

func (p *fakeProcessor) Check(context.Context) (bool, error) { return p.checkOK, p.checkErr }

func (p *fakeProcessor) Apply(_ context.Context, path string) (string, error) {
	p.mu.Lock()
	p.applied = append(p.applied, path)
	p.mu.Unlock()

	if p.applyErr != nil {
		return "", p.applyErr
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(p.marker); err != nil {
		return "", err
	}
	return path, nil
}

func (p *fakeProcessor) appliedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.applied)
}

type putCall struct {
	input   PutObjectInput
	content []byte
}

// fakeStore is an in-memory content-addressed store
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	puts      []putCall
	heads     []string
	existsErr error
	putErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) ObjectExists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heads = append(s.heads, key)
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStore) PutObject(_ context.Context, input *PutObjectInput) error {
	content, err := os.ReadFile(input.Path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, putCall{input: *input, content: content})
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[input.Key] = content
	return nil
}

func (s *fakeStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *fakeNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return n.err
}

func (n *fakeNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	copy(out, n.messages)
	return out
}

type fakeLedger struct {
	mu      sync.Mutex
	records []ArchiveRecord
	err     error
}

func (l *fakeLedger) Record(_ context.Context, entry *ArchiveRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, *entry)
	return nil
}

func (l *fakeLedger) Lookup(_ context.Context, key string) (*ArchiveRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		if l.records[i].Key == key {
			r := l.records[i]
			return &r, nil
		}
	}
	return nil, errors.New("not found")
}

func (l *fakeLedger) Cleanup(context.Context) error { return nil }
