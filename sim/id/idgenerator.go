// Package id generates identifiers for events, frame tasks and sessions.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	Generate() string
}

// NewIDGenerator returns a generator that emits "1", "2", ... in order.
// Deterministic runs rely on it.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewXIDGenerator returns a generator of globally unique IDs. Use it for
// anything that leaves the process, such as recording sessions.
func NewXIDGenerator() IDGenerator {
	return xidGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	id := strconv.FormatUint(idNumber, 10)

	return id
}

type xidGenerator struct{}

func (g xidGenerator) Generate() string {
	return xid.New().String()
}

var defaultGenerator = NewIDGenerator()

// Generate returns a new ID from the process-wide sequential generator.
func Generate() string {
	return defaultGenerator.Generate()
}
