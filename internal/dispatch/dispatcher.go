// Package dispatch provides the single execution context on which all
// listener notifications are observed.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
)

var ErrAlreadyRunning = errors.New("dispatcher loop is already running")

// Dispatcher исполняет задачи на одной выделенной горутине.
// Выделенной считается горутина, вызвавшая Loop.
type Dispatcher struct {
	log    logrus.FieldLogger
	loopID atomic.Int64

	mu      sync.Mutex
	queue   []func()
	stopped bool
	wakeup  chan struct{}
}

// New создает диспетчер. Задачи начнут исполняться после вызова Loop.
func New(log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		log:    log.WithField("component", "dispatcher"),
		wakeup: make(chan struct{}, 1),
	}
}

// OnLoop сообщает, исполняется ли вызывающий код на выделенной горутине
func (d *Dispatcher) OnLoop() bool {
	id := d.loopID.Load()
	return id != 0 && id == goid.Get()
}

// Run исполняет task сразу, если вызов уже на выделенной горутине,
// иначе ставит задачу в очередь и возвращается.
func (d *Dispatcher) Run(task func()) {
	if task == nil {
		return
	}
	if d.OnLoop() {
		d.exec(task)
		return
	}
	d.Post(task)
}

// Post ставит задачу в очередь. Очередь не ограничена, Post не блокируется.
// После остановки Loop задачи отбрасываются.
func (d *Dispatcher) Post(task func()) {
	if task == nil {
		return
	}
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.log.Debug("dispatcher stopped, task dropped")
		return
	}
	d.queue = append(d.queue, task)
	d.mu.Unlock()

	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

// Loop делает текущую горутину выделенной и исполняет задачи до отмены ctx.
// Задачи, оставшиеся в очереди после отмены, отбрасываются.
func (d *Dispatcher) Loop(ctx context.Context) error {
	if !d.loopID.CompareAndSwap(0, goid.Get()) {
		return ErrAlreadyRunning
	}
	d.mu.Lock()
	d.stopped = false
	d.mu.Unlock()
	defer d.stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := d.drain()
		for _, task := range batch {
			d.exec(task)
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wakeup:
		}
	}
}

// stop освобождает выделенную горутину и очередь
func (d *Dispatcher) stop() {
	d.mu.Lock()
	d.stopped = true
	d.queue = nil
	d.mu.Unlock()
	d.loopID.Store(0)
}

// Pending возвращает число задач, ожидающих исполнения
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *Dispatcher) drain() []func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	batch := d.queue
	d.queue = nil
	return batch
}

// exec исполняет задачу, паника в задаче не останавливает цикл
func (d *Dispatcher) exec(task func()) {
	var pc panics.Catcher
	pc.Try(task)
	if r := pc.Recovered(); r != nil {
		d.log.WithField("panic", r.Value).Errorf("dispatched task panicked\n%s", r.Stack)
	}
}
