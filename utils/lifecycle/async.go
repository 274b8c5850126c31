package lifecycle

import (
	"errors"
	"runtime/debug"
	"sync"

	"github.com/ugparu/vpcc/utils/logger"
)

type asyncManager[T AsyncInstance] struct {
	instance           T
	failSafe           bool
	stopChan, doneChan chan struct{}
	startOnce          sync.Once
	closeOnce          sync.Once
}

// NewAsyncManager returns a manager whose loop stops at the first step error
// or panic.
func NewAsyncManager[T AsyncInstance](instance T) AsyncManager[T] {
	return newAsyncManager(instance, false)
}

// NewFailSafeAsyncManager returns a manager whose loop logs step errors and
// recovered panics and keeps stepping until a BreakError.
func NewFailSafeAsyncManager[T AsyncInstance](instance T) AsyncManager[T] {
	return newAsyncManager(instance, true)
}

func newAsyncManager[T AsyncInstance](instance T, failSafe bool) *asyncManager[T] {
	return &asyncManager[T]{
		instance: instance,
		failSafe: failSafe,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs startFunc once and launches the loop. A strict manager reports
// a second Start, a Start after Close and a failing startFunc; a fail-safe
// manager logs the startFunc error and runs the loop anyway.
func (m *asyncManager[T]) Start(startFunc func(T) error) (err error) {
	select {
	case <-m.stopChan:
		if m.failSafe {
			return nil
		}
		return &StartedAfterCloseError{}
	default:
	}
	if !m.failSafe {
		err = &StartedAlreadyError{}
	}
	m.startOnce.Do(func() {
		logger.Debugf(m.instance, "Starting async, failsafe=%t", m.failSafe)
		err = m.callStart(startFunc)
		if err != nil {
			if !m.failSafe {
				close(m.doneChan)
				return
			}
			logger.Warningf(m.instance, "Detected error on start: %s", err.Error())
			err = nil
		}
		go m.process()
	})
	return err
}

func (m *asyncManager[T]) callStart(startFunc func(T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(m.instance, "Panic detected on start! Recovering from: %v", r)
			err = errors.New("panic on start")
		}
	}()
	return startFunc(m.instance)
}

func (m *asyncManager[T]) process() {
	logger.Debug(m.instance, "Entering main loop")
	defer close(m.doneChan)
	for m.step() {
	}
}

// step runs one Step and reports whether the loop continues.
func (m *asyncManager[T]) step() (running bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(m.instance, "Panic detected! Recovering from: %v", r)
			logger.Errorf(m.instance, "%s", debug.Stack())
			running = m.failSafe
		}
	}()
	err := m.instance.Step(m.stopChan)
	if err == nil {
		return true
	}
	if errors.As(err, &errBreak) {
		return false
	}
	logger.Warningf(m.instance, "Detected error: %s", err.Error())
	return m.failSafe
}

// Close stops the loop, waits for it to exit and closes the instance.
func (m *asyncManager[T]) Close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.startOnce.Do(func() {
			close(m.doneChan)
		})
		<-m.doneChan
		m.instance.Close_()
	})
}

func (m *asyncManager[T]) Done() <-chan struct{} {
	return m.doneChan
}
