package orchestration

import "sync"

// session owns the name of the active agent. An empty name means no agent is
// active. The mutex guards exactly that field.
type session struct {
	mu          sync.Mutex
	activeAgent string
}

func (s *session) ActiveAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeAgent
}

// swap stores name as the active agent and returns the previous one.
func (s *session) swap(name string) (previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, s.activeAgent = s.activeAgent, name
	return previous
}
