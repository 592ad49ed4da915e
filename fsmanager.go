// Package fsmanager provides stateful, navigable sessions over one base
// directory: an alias-indexed logical hierarchy with a movable position
// inside it, persisted as a JSON structure document independent of the
// physical tree, with per-file hashsum capture and verification on top.
//
// The package is a facade over the internal implementation, re-exporting
// the session entrypoint and the types a consumer interacts with.
package fsmanager

import (
	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/pathing"
	"github.com/KernelPryanic/fs-manager/internal/queue"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/session"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

type (
	// Session is a stateful, navigable view over one base directory.
	Session = session.Session

	// Options configure a [Session] to be opened.
	Options = session.Options

	// MakeOptions configure a single create operation of a [Session].
	MakeOptions = session.MakeOptions

	// CopyOptions configure a single copy operation of a [Session].
	CopyOptions = session.CopyOptions

	// Node is one tracked position of the logical hierarchy.
	Node = tree.Node

	// Kind discriminates directory and file nodes.
	Kind = schema.Kind

	// Entry describes one physical filesystem object.
	Entry = schema.Entry

	// Backend performs the physical filesystem effects of a [Session].
	Backend = schema.Backend

	// Algorithm names a supported digest algorithm.
	Algorithm = hashsum.Algorithm

	// Ledger maps node aliases to their recorded content digests.
	Ledger = hashsum.Ledger

	// Record is one captured digest of a tracked file.
	Record = hashsum.Record

	// Progress reports the state of a hashsum batch.
	Progress = queue.Progress
)

const (
	KindDirectory = schema.KindDirectory
	KindFile      = schema.KindFile

	AlgorithmMD5    = hashsum.AlgorithmMD5
	AlgorithmSHA1   = hashsum.AlgorithmSHA1
	AlgorithmSHA256 = hashsum.AlgorithmSHA256
	AlgorithmBLAKE3 = hashsum.AlgorithmBLAKE3
)

//nolint:gochecknoglobals
var (
	// ErrDuplicateAlias occurs when a create names an alias that is
	// already tracked.
	ErrDuplicateAlias = tree.ErrDuplicateAlias

	// ErrUnknownAlias occurs when an operation addresses an alias that is
	// not tracked (or not addressable from the current position).
	ErrUnknownAlias = tree.ErrUnknownAlias

	// ErrNotADirectory occurs when a directory-only operation addresses a
	// file node.
	ErrNotADirectory = session.ErrNotADirectory

	// ErrNotAFile occurs when a file-only operation addresses a directory
	// node.
	ErrNotAFile = session.ErrNotAFile

	// ErrNoHistory occurs when there is no previous position to return to.
	ErrNoHistory = session.ErrNoHistory

	// ErrAtRoot occurs when an upward navigation is attempted from the
	// root of the hierarchy.
	ErrAtRoot = session.ErrAtRoot

	// ErrPathEscapesBase occurs when a relative path resolves outside the
	// session's base directory.
	ErrPathEscapesBase = pathing.ErrPathEscapesBase

	// ErrUnsupportedAlgorithm occurs when a digest algorithm is not part
	// of the registry.
	ErrUnsupportedAlgorithm = hashsum.ErrUnsupportedAlgorithm

	// ErrAlgorithmMismatch occurs when a verification requests a different
	// algorithm than the recorded one.
	ErrAlgorithmMismatch = hashsum.ErrAlgorithmMismatch
)

// Open establishes a [Session] over the base path of the given [Options],
// physically creating the base directory when missing.
func Open(opts Options) (*Session, error) {
	return session.Open(opts)
}
