package actions

import "strings"

// BeginPage marks the start of a new rendered page. observedUser is the
// logged-in username found in the page markup ("" when the page shows
// none). The bucket user is re-resolved lazily on the next Get/Update.
func (s *Store) BeginPage(observedUser string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observedUser = strings.TrimSpace(observedUser)
	s.page++
}

// User returns the username the current page's records are keyed under.
func (s *Store) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveUserLocked()
}

// resolveUserLocked picks the observed page user, then the cached user
// from an earlier page, then AnonymousUser. A newly observed user
// replaces the cache; it is persisted by the next write an Update or
// Flush makes, never scheduled from a lookup.
func (s *Store) resolveUserLocked() string {
	if s.resolvedPage == s.page && s.user != "" {
		return s.user
	}
	s.resolvedPage = s.page
	switch {
	case s.observedUser != "":
		s.user = s.observedUser
		if s.cachedUser != s.observedUser {
			s.cachedUser = s.observedUser
			s.userDirty = true
		}
	case s.cachedUser != "":
		s.user = s.cachedUser
	default:
		s.user = AnonymousUser
	}
	return s.user
}
