package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage хранит сессию в JSON файле c правами 0600
type FileStorage struct {
	path string
}

// NewFileStorage создает файловое хранилище сессии
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load читает сессию из файла; (nil, nil) если файла нет
func (s *FileStorage) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &snapshot, nil
}

// Save сохраняет сессию в файл, создавая каталог при необходимости
func (s *FileStorage) Save(snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear удаляет файл сессии
func (s *FileStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

var _ Storage = (*FileStorage)(nil)

// MemoryStorage хранит сессию в памяти (для тестов)
type MemoryStorage struct {
	mu       sync.Mutex
	snapshot *Snapshot
}

// NewMemoryStorage создает хранилище сессии в памяти
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load возвращает сохраненную сессию
func (s *MemoryStorage) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, nil
}

// Save сохраняет сессию
func (s *MemoryStorage) Save(snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}

// Clear удаляет сессию
func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	return nil
}

var _ Storage = (*MemoryStorage)(nil)
