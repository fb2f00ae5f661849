package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// LocalBackend persiste o snapshot em um arquivo JSON local. É o modo de uso
// sem conta, equivalente ao armazenamento local do navegador.
type LocalBackend struct {
	mu   sync.Mutex
	path string
	snap *Snapshot
}

// NewLocalBackend abre (ou cria) o arquivo de progresso local.
func NewLocalBackend(path string) (*LocalBackend, error) {
	b := &LocalBackend{path: path, snap: NewSnapshot()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local progress: %w", err)
	}
	if err := json.Unmarshal(data, b.snap); err != nil {
		return nil, fmt.Errorf("parse local progress: %w", err)
	}
	if b.snap.Progress == nil {
		b.snap.Progress = make(map[int]bool)
	}
	if b.snap.ReadRefs == nil {
		b.snap.ReadRefs = make(map[int][]int)
	}
	return b, nil
}

// Load devolve uma cópia do snapshot do arquivo.
func (b *LocalBackend) Load() (*Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap.Clone(), nil
}

// SaveDay grava a conclusão de um dia.
func (b *LocalBackend) SaveDay(day int, completed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap.Progress[day] = completed
	return b.flush()
}

// SaveReference grava a marcação de uma referência.
func (b *LocalBackend) SaveReference(day, index int, read bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	refs := b.snap.ReadRefs[day]
	pos := -1
	for i, idx := range refs {
		if idx == index {
			pos = i
			break
		}
	}

	switch {
	case read && pos < 0:
		refs = append(refs, index)
		sort.Ints(refs)
	case !read && pos >= 0:
		refs = append(refs[:pos], refs[pos+1:]...)
	}
	b.snap.ReadRefs[day] = refs
	return b.flush()
}

// SaveReferencesBulk substitui o conjunto de leituras de um dia.
func (b *LocalBackend) SaveReferencesBulk(day int, indices []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	copied := make([]int, len(indices))
	copy(copied, indices)
	sort.Ints(copied)
	b.snap.ReadRefs[day] = copied
	return b.flush()
}

// SaveAchievement registra uma conquista. Idempotente.
func (b *LocalBackend) SaveAchievement(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.snap.Achievements {
		if existing == id {
			return nil
		}
	}
	b.snap.Achievements = append(b.snap.Achievements, id)
	return b.flush()
}

// ClearAll descarta todo o progresso local.
func (b *LocalBackend) ClearAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = NewSnapshot()
	return b.flush()
}

func (b *LocalBackend) flush() error {
	data, err := json.MarshalIndent(b.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local progress: %w", err)
	}

	if dir := filepath.Dir(b.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create progress dir: %w", err)
		}
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write local progress: %w", err)
	}
	return nil
}
