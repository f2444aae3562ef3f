package eventstore

import (
	"context"
	"sort"
	"sync"
)

type scoredValue struct {
	score float64
	value string
}

// MemoryStore é a implementação em memória do Store, usada em testes e em
// execução local sem Redis/Postgres. Um único mutex cobre todas as famílias
// de chaves; o volume de um processo local não justifica nada mais fino
type MemoryStore struct {
	mu       sync.RWMutex
	kv       map[string]string
	ordered  map[string][]scoredValue
	counters map[string]float64
	sets     map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kv:       make(map[string]string),
		ordered:  make(map[string][]scoredValue),
		counters: make(map[string]float64),
		sets:     make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.kv[key]
	return value, ok, nil
}

func (s *MemoryStore) AppendOrdered(_ context.Context, key string, score float64, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.ordered[key]

	// Inserir após todos os elementos de score menor ou igual, preservando a
	// ordem de chegada para scores empatados
	idx := sort.Search(len(seq), func(i int) bool {
		return seq[i].score > score
	})

	seq = append(seq, scoredValue{})
	copy(seq[idx+1:], seq[idx:])
	seq[idx] = scoredValue{score: score, value: value}
	s.ordered[key] = seq

	return nil
}

func (s *MemoryStore) RangeOrdered(_ context.Context, key string, from, to float64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]string, 0)
	for _, sv := range s.ordered[key] {
		if sv.score < from {
			continue
		}
		if sv.score > to {
			break
		}
		values = append(values, sv.value)
	}

	return values, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string, by float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] += by
	return s.counters[key], nil
}

func (s *MemoryStore) SetAdd(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}

	return nil
}

func (s *MemoryStore) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	sort.Strings(members)

	return members, nil
}
