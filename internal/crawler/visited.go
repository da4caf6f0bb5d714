package crawler

import "sync"

// VisitedSet tracks URLs scheduled during one crawl run. It is created at
// crawl start and discarded at crawl end; nothing is persisted.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Visit marks url as scheduled and reports whether this was the first visit.
// Check and mark happen under one lock so concurrent callers can never both
// claim the same URL.
func (s *VisitedSet) Visit(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}
