// Package session хранит состояние клиента между асинхронными вызовами:
// поколения запросов и редактируемый черновик.
package session

import "sync"

// Tracker выдает билеты на асинхронные запросы. Результат запроса применяется,
// только если его билет еще актуален: ключ не инвалидирован и трекер не закрыт.
type Tracker struct {
	mu     sync.Mutex
	gens   map[string]uint64
	closed bool
}

func NewTracker() *Tracker {
	return &Tracker{gens: make(map[string]uint64)}
}

type Ticket struct {
	tracker *Tracker
	key     string
	gen     uint64
}

// Begin выдает билет на текущее поколение ключа
func (t *Tracker) Begin(key string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Ticket{tracker: t, key: key, gen: t.gens[key]}
}

// Invalidate делает устаревшими все выданные билеты ключа
func (t *Tracker) Invalidate(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gens[key]++
}

// Close делает устаревшими все билеты, включая выданные после закрытия
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
}

func (tk Ticket) Current() bool {
	if tk.tracker == nil {
		return false
	}
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()

	return !tk.tracker.closed && tk.tracker.gens[tk.key] == tk.gen
}

func (tk Ticket) Key() string {
	return tk.key
}
