package memory

import (
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps all state in process. It is meant for development and for a
// single replica; state is lost on restart and not shared across replicas.
type Memory struct {
	seen *seenRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		seen: newSeenRepository(),
	}
}

func (m *Memory) Seen() interfaces.SeenRepository {
	return m.seen
}

func (m *Memory) Close() error {
	return nil
}
