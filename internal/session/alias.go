package session

import (
	"strconv"

	"github.com/KernelPryanic/fs-manager/internal/schema"
)

// defaultAliases are the bases for generated aliases, cycled in order
// with a numeric suffix appended per completed cycle.
var defaultAliases = []string{
	"Mercury", "Venus", "Earth", "Mars", "Jupiter",
	"Saturn", "Uranus", "Neptune", "Plutone",
}

// generateAlias draws the next free generated alias for the given kind.
// Directories and files advance separate session-scoped counters, so the
// two sequences stay independent. Aliases already taken in the hierarchy
// are skipped over.
func (s *Session) generateAlias(kind schema.Kind) string {
	suffix := "Dir"
	if kind == schema.KindFile {
		suffix = "File"
	}

	for {
		count := s.aliasCounts[kind]
		s.aliasCounts[kind]++

		cycle := count / len(defaultAliases)

		alias := defaultAliases[count%len(defaultAliases)] + suffix
		if cycle > 0 {
			alias += strconv.Itoa(cycle)
		}

		if _, err := s.tree.Find(alias); err != nil {
			return alias
		}
	}
}
