package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sequor-io/sequor/pkg/models"
)

const nodeIDPrefix = "node_"

// IDAllocator hands out node IDs from a session-scoped monotonic counter.
// IDs are never reused within a session, even after node deletion.
type IDAllocator struct {
	next int
}

// NewIDAllocator starts a fresh counter for an empty sequence.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// SeedIDAllocator initializes the counter from an existing sequence:
// max(existing numeric suffix) + 1, so newly created nodes never collide
// with IDs already present.
func SeedIDAllocator(nodes []*models.Node) *IDAllocator {
	highest := 0

	for _, node := range nodes {
		suffix, ok := strings.CutPrefix(node.ID, nodeIDPrefix)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}

		if n > highest {
			highest = n
		}
	}

	return &IDAllocator{next: highest + 1}
}

// Next allocates the next node ID.
func (a *IDAllocator) Next() string {
	id := fmt.Sprintf("%s%d", nodeIDPrefix, a.next)
	a.next++

	return id
}
