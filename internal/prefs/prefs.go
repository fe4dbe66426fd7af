package prefs

import (
	"context"
	"errors"
	"sync"
)

// Пространство имен и ключ токена авторизации
const (
	NamespaceUserInfo = "user_info"
	KeyToken          = "token"
)

var ErrEmptyNamespace = errors.New("namespace must not be empty")

// Store - постоянное хранилище настроек, разбитое по пространствам имен
type Store interface {
	// Возвращает значение или def, если ключа нет
	GetString(ctx context.Context, namespace, key, def string) (string, error)

	PutString(ctx context.Context, namespace, key, value string) error

	Remove(ctx context.Context, namespace, key string) error

	// Удаляет все ключи пространства имен
	Clear(ctx context.Context, namespace string) error

	Contains(ctx context.Context, namespace, key string) (bool, error)

	GetAll(ctx context.Context, namespace string) (map[string]string, error)

	Close() error
}

// Memory - хранилище в памяти процесса
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) GetString(_ context.Context, namespace, key, def string) (string, error) {
	if namespace == "" {
		return "", ErrEmptyNamespace
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[namespace][key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *Memory) PutString(_ context.Context, namespace, key, value string) error {
	if namespace == "" {
		return ErrEmptyNamespace
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, namespace, key string) error {
	if namespace == "" {
		return ErrEmptyNamespace
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[namespace], key)
	return nil
}

func (m *Memory) Clear(_ context.Context, namespace string) error {
	if namespace == "" {
		return ErrEmptyNamespace
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace)
	return nil
}

func (m *Memory) Contains(_ context.Context, namespace, key string) (bool, error) {
	if namespace == "" {
		return false, ErrEmptyNamespace
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[namespace][key]
	return ok, nil
}

func (m *Memory) GetAll(_ context.Context, namespace string) (map[string]string, error) {
	if namespace == "" {
		return nil, ErrEmptyNamespace
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data[namespace]))
	for k, v := range m.data[namespace] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
