package dashboard

import "sync"

// subscriber delivers states on its own goroutine so a slow or re-entrant
// callback never blocks the actor. Only the latest undelivered state is kept.
type subscriber struct {
	fn       func(State)
	states   chan State
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newSubscriber(fn func(State)) *subscriber {
	s := &subscriber{
		fn:     fn,
		states: make(chan State, 1),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *subscriber) run() {
	defer s.wg.Done()
	for {
		select {
		case st := <-s.states:
			s.fn(st)
		case <-s.done:
			return
		}
	}
}

// offer replaces any undelivered state. Must only be called from the actor.
func (s *subscriber) offer(st State) {
	select {
	case <-s.states:
	default:
	}
	s.states <- st
}

func (s *subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// wait blocks until the delivery goroutine has exited, including a callback
// that was running when stop was called.
func (s *subscriber) wait() {
	s.wg.Wait()
}
