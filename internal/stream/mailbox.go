package stream

// mailbox holds at most one pending message. Posting replaces whatever is waiting.
// It supports a single producer.
type mailbox[T any] struct {
	ch chan T
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{ch: make(chan T, 1)}
}

// post stores v, discarding an unconsumed predecessor. It reports whether one was discarded.
func (m *mailbox[T]) post(v T) bool {
	for {
		select {
		case m.ch <- v:
			return false
		default:
		}
		select {
		case <-m.ch:
			m.ch <- v
			return true
		default:
		}
	}
}

func (m *mailbox[T]) recv() <-chan T { return m.ch }
