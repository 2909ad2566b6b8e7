package service

import (
	"fmt"

	"github.com/antirek/bank/internal/app/repository"
)

// findOrCreateMirrored is the shared lookup-then-create sequence for local
// records backed by an external message-service resource. It looks up the
// local record first and returns it unchanged when present (idempotence).
// Otherwise it creates the remote resource, then persists the local record
// referencing it, in that order, so a remote failure leaves no local state.
//
// The remote call and the local persist are not transactional. When the
// persist is rejected by a uniqueness constraint, a concurrent caller won
// the race after our lookup; the loser re-fetches and returns the winner
// instead of propagating the conflict. Any other persist failure is
// surfaced: the remote resource then has no local handle and is reported in
// the error rather than silently dropped.
func findOrCreateMirrored[T any](
	lookup func() (*T, error),
	createRemote func() (string, error),
	persist func(remoteID string) (*T, error),
) (*T, bool, error) {
	existing, err := lookup()
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	remoteID, err := createRemote()
	if err != nil {
		return nil, false, err
	}

	record, err := persist(remoteID)
	if err != nil {
		if repository.IsDuplicateKey(err) {
			winner, lookupErr := lookup()
			if lookupErr == nil && winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("persisting record for external resource %s: %w", remoteID, err)
	}

	return record, true, nil
}
