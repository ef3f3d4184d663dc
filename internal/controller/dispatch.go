package controller

import "sync"

// Dispatcher runs closures on the foreground context. Every UI call of the
// updater goes through it.
type Dispatcher interface {
	// Dispatch runs fn and returns once it has finished.
	Dispatch(fn func())
}

// Inline runs closures on the calling goroutine, one at a time. Closures
// from different runs may land on different goroutines.
type Inline struct {
	mu sync.Mutex
}

func (d *Inline) Dispatch(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// MainLoop executes dispatched closures in order on the goroutine that
// calls Run. Dispatch must not be called from inside a dispatched closure.
type MainLoop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func NewMainLoop() *MainLoop {
	return &MainLoop{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}
}

// Run blocks until Stop is called.
func (m *MainLoop) Run() {
	for {
		select {
		case fn := <-m.tasks:
			fn()
		case <-m.done:
			return
		}
	}
}

func (m *MainLoop) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Dispatch hands fn to the loop and waits for it. Once the loop is stopped
// fn is dropped.
func (m *MainLoop) Dispatch(fn func()) {
	ran := make(chan struct{})
	task := func() {
		defer close(ran)
		fn()
	}
	select {
	case m.tasks <- task:
	case <-m.done:
		return
	}
	<-ran
}
