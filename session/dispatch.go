package session

import "sync"

// Dispatcher runs functions on the goroutine that owns controller state and
// the view. Dispatch must not block and must preserve order.
type Dispatcher interface {
	Dispatch(fn func())
}

// Loop is a Dispatcher backed by a single goroutine and an unbounded queue
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewLoop starts a dispatcher goroutine
func NewLoop() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Dispatch queues fn. Functions queued after Close are dropped.
func (l *Loop) Dispatch(fn func()) {
	l.enqueue(fn)
}

// Call runs fn on the loop and waits for it. It reports false when the loop
// is closed and fn did not run. Never call it from the loop itself.
func (l *Loop) Call(fn func()) bool {
	ran := make(chan struct{})
	if !l.enqueue(func() {
		defer close(ran)
		fn()
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		// fn may still have been run by the final drain
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close drains what is queued, stops the goroutine and waits for it
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
	<-l.done
}

func (l *Loop) enqueue(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
	return true
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-l.wake
	}
}
