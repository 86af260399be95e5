package crdt

import (
	"slices"
	"sync"
)

// GSet представляет Grow-only Set CRDT.
// Единственная операция изменения - добавление, слияние - объединение множеств.
// Объединение коммутативно, ассоциативно и идемпотентно, поэтому порядок
// доставки операций от разных устройств не влияет на итоговое состояние.
type GSet struct {
	elements map[string]struct{} // множество элементов
	mu       sync.RWMutex        // мьютекс для потокобезопасности
}

// NewGSet создает множество из заданных значений (дубликаты отбрасываются).
func NewGSet(values ...string) *GSet {
	s := &GSet{
		elements: make(map[string]struct{}, len(values)),
	}
	s.Add(values...)

	return s
}

// Add добавляет элементы в множество.
// Пустые строки игнорируются. Возвращает количество реально добавленных элементов.
func (s *GSet) Add(values ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, exists := s.elements[v]; exists {
			continue
		}
		s.elements[v] = struct{}{}
		added++
	}

	return added
}

// Contains проверяет наличие элемента.
func (s *GSet) Contains(value string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.elements[value]
	return exists
}

// Merge объединяет текущее множество с другим.
func (s *GSet) Merge(other *GSet) {
	if other == nil || other == s {
		return
	}

	s.Add(other.Values()...)
}

// Values возвращает элементы в лексикографическом порядке.
// Порядок детерминирован, чтобы сериализованное представление
// совпадало на всех репликах.
func (s *GSet) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, len(s.elements))
	for v := range s.elements {
		result = append(result, v)
	}
	slices.Sort(result)

	return result
}

// Len возвращает количество элементов.
func (s *GSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.elements)
}

// Union возвращает отсортированное объединение нескольких списков без дубликатов.
func Union(lists ...[]string) []string {
	set := NewGSet()
	for _, l := range lists {
		set.Add(l...)
	}

	return set.Values()
}
