package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/queue"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// HashTargets returns the file nodes at or below the current position,
// sorted by alias. These are the nodes a hashsum capture or verification
// operates on.
func (s *Session) HashTargets() []*tree.Node {
	var targets []*tree.Node

	s.tree.Walk(s.current, func(n *tree.Node) bool {
		if n.Kind() == schema.KindFile {
			targets = append(targets, n)
		}

		return true
	})

	slices.SortFunc(targets, func(a, b *tree.Node) int {
		return strings.Compare(a.Alias(), b.Alias())
	})

	return targets
}

// Ledger returns the session's hashsum ledger. Records persist across
// structure document round trips and are never expired automatically.
func (s *Session) Ledger() hashsum.Ledger {
	return s.ledger
}

// SaveHashsums digests every file at or below the current position under
// the given algorithm (the session default when empty) and records the
// results in the ledger. Files that cannot be read are skipped and
// reported through a [*PartialHashsumError] once all others succeeded.
// The batch can be cancelled through the context.
func (s *Session) SaveHashsums(ctx context.Context, algorithm hashsum.Algorithm) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	algorithm, err := s.resolveAlgorithm(algorithm)
	if err != nil {
		return err
	}

	q := queue.NewHashQueue()
	s.hashBatch.Store(q)
	q.Enqueue(s.HashTargets()...)

	var failed []string
	var errs []error

	err = q.DequeueAndProcess(ctx, func(n *tree.Node) int {
		digest, size, err := s.hasher.DigestFile(n.Path(), algorithm)
		if err != nil {
			slog.Warn("Session: failed to digest file", "alias", n.Alias(), "err", err)
			failed = append(failed, n.Alias())
			errs = append(errs, err)

			return queue.DecisionSkipped
		}

		s.ledger.Set(n.Alias(), algorithm, digest)
		q.AddBytesHashed(uint64(size))

		return queue.DecisionSuccess
	})
	if err != nil {
		return err
	}

	s.autosave()

	if len(failed) > 0 {
		slices.Sort(failed)

		return &PartialHashsumError{Aliases: failed, errs: errs}
	}

	return nil
}

// CheckHashsums digests every file at or below the current position under
// the given algorithm (the session default when empty) and compares the
// results against the ledger, returning the sorted aliases that do not
// match. A missing ledger record, an unreadable file and a differing
// digest all count as mismatches. A ledger record captured under a
// different algorithm fails the whole call with
// [hashsum.ErrAlgorithmMismatch]: verification across algorithms is a
// usage error, not a mismatch. With logWarnings enabled, every mismatch
// is additionally logged as it is found.
func (s *Session) CheckHashsums(ctx context.Context, algorithm hashsum.Algorithm, logWarnings bool) ([]string, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	algorithm, err := s.resolveAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	targets := s.HashTargets()

	for _, n := range targets {
		if record, ok := s.ledger.Get(n.Alias()); ok && record.Algorithm != algorithm {
			return nil, fmt.Errorf("(session-hashsums) %w: %q captured as %q, requested %q",
				hashsum.ErrAlgorithmMismatch, n.Alias(), record.Algorithm, algorithm)
		}
	}

	q := queue.NewHashQueue()
	s.hashBatch.Store(q)
	q.Enqueue(targets...)

	var mismatched []string

	mismatch := func(n *tree.Node, reason string) {
		mismatched = append(mismatched, n.Alias())

		if logWarnings {
			slog.Warn("Session: hashsum mismatch", "alias", n.Alias(), "reason", reason)
		}
	}

	err = q.DequeueAndProcess(ctx, func(n *tree.Node) int {
		record, ok := s.ledger.Get(n.Alias())
		if !ok {
			mismatch(n, "no recorded digest")

			return queue.DecisionSkipped
		}

		digest, size, err := s.hasher.DigestFile(n.Path(), algorithm)
		if err != nil {
			mismatch(n, "file unreadable")

			return queue.DecisionSkipped
		}

		q.AddBytesHashed(uint64(size))

		if digest != record.Digest {
			mismatch(n, "digest differs")

			return queue.DecisionSkipped
		}

		return queue.DecisionSuccess
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(mismatched)

	return mismatched, nil
}

// resolveAlgorithm substitutes the session default for an empty algorithm
// and rejects algorithms outside the registry.
func (s *Session) resolveAlgorithm(algorithm hashsum.Algorithm) (hashsum.Algorithm, error) {
	if algorithm == "" {
		algorithm = s.algorithm
	}

	if !algorithm.Valid() {
		return "", fmt.Errorf("(session-hashsums) %w: %q", hashsum.ErrUnsupportedAlgorithm, algorithm)
	}

	return algorithm, nil
}
