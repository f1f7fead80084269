package script

import (
	"log/slog"

	"go.starlark.net/starlark"
)

const defaultPoolSize = 10

// ThreadPool recycles Starlark threads between mapping calls. Idle threads
// wait in a buffered channel, so Get and Put never block.
type ThreadPool struct {
	idle   chan *starlark.Thread
	logger *slog.Logger
}

// NewThreadPool keeps at most size idle threads. Script print() output is
// logged at debug level.
func NewThreadPool(size int, logger *slog.Logger) *ThreadPool {
	if size <= 0 {
		size = defaultPoolSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ThreadPool{idle: make(chan *starlark.Thread, size), logger: logger}
}

// Get hands out an idle thread, or a fresh one, named for error positions.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	select {
	case t := <-p.idle:
		t.Name = name
		return t
	default:
	}

	logger := p.logger
	return &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			logger.Debug(msg, slog.String("script", t.Name))
		},
	}
}

// Put makes t available again; it is dropped when the pool is full.
// Cancelled threads stay cancelled and must not be put back.
func (p *ThreadPool) Put(t *starlark.Thread) {
	t.Name = ""
	select {
	case p.idle <- t:
	default:
	}
}

// Size reports the number of idle threads.
func (p *ThreadPool) Size() int { return len(p.idle) }
