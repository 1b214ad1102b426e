package usecase

import "errors"

var (
	// ErrSessionExpired: the prompt or browse session is gone (TTL or
	// eviction). Handlers answer with a "no longer valid" notice.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionNotOwned: someone other than the originating user tried
	// to drive the session. State must not change.
	ErrSessionNotOwned = errors.New("session not owned by user")

	// ErrUnknownCandidate: the picked identifier was never offered in
	// this session. The store must not learn from it.
	ErrUnknownCandidate = errors.New("candidate not part of session")

	// ErrNoCategories: browse construction found nothing to show.
	ErrNoCategories = errors.New("no categories found")
)
