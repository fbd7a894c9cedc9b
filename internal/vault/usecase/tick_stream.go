package usecase

import "context"

// StreamTicks returns a channel that yields the scheduler tick counter once
// per coalesced tick signal. The channel closes when ctx is done.
func (s *Usecase) StreamTicks(ctx context.Context) <-chan uint64 {
	out := make(chan uint64, 1)
	signals, cancel := s.sched.Subscribe()

	go func() {
		defer cancel()
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				select {
				case out <- s.sched.Ticks():
				default: // receiver is behind; drop, the next tick carries a fresher count
				}
			}
		}
	}()

	return out
}
