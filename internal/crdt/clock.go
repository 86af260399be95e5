package crdt

import (
	"sync"
)

// LamportClock упорядочивает записи журнала без синхронизации физического
// времени. Записи разных писателей с одинаковым значением часов
// упорядочиваются по ключу писателя вне часов.
type LamportClock struct {
	counter int64
	mu      sync.Mutex
}

// NewLamportClock создает часы с нулевым счетчиком.
func NewLamportClock() *LamportClock {
	return &LamportClock{}
}

// Tick увеличивает счетчик и возвращает значение для новой локальной записи.
func (lc *LamportClock) Tick() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.counter++
	return lc.counter
}

// Observe продвигает счетчик до remote, не увеличивая его: следующий Tick
// будет больше любой увиденной записи.
func (lc *LamportClock) Observe(remote int64) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.counter = max(lc.counter, remote)
}

// Now возвращает текущее значение счетчика.
func (lc *LamportClock) Now() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	return lc.counter
}
