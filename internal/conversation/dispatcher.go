package conversation

import (
	"errors"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// ErrDispatcherClosed возвращается при отправке задачи после Close
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Dispatcher выполняет задачи одного чата строго по очереди, в порядке поступления.
// Задачи разных чатов выполняются параллельно. Горутина чата живет, пока
// в его очереди есть задачи.
type Dispatcher struct {
	mu     sync.Mutex
	queues map[int64]*chatQueue
	wg     sync.WaitGroup
	closed bool
	log    zerolog.Logger
}

type chatQueue struct {
	jobs []func()
}

func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		queues: make(map[int64]*chatQueue),
		log:    log.With().Str("component", "dispatcher").Logger(),
	}
}

// Submit ставит задачу в очередь чата
func (d *Dispatcher) Submit(chatID int64, job func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	if q, ok := d.queues[chatID]; ok {
		q.jobs = append(q.jobs, job)
		return nil
	}

	q := &chatQueue{jobs: []func(){job}}
	d.queues[chatID] = q
	d.wg.Add(1)
	go d.drain(chatID, q)
	return nil
}

func (d *Dispatcher) drain(chatID int64, q *chatQueue) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(q.jobs) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		d.mu.Unlock()

		d.run(chatID, job)
	}
}

// run выполняет задачу; паника в задаче не останавливает очередь чата
func (d *Dispatcher) run(chatID int64, job func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Int64("chat_id", chatID).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("job panicked")
		}
	}()
	job()
}

// Close запрещает новые задачи и ждет завершения уже принятых
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
