package electrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdGenIsMonotonicAndUnique(t *testing.T) {
	var g idGen
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.nextID()
		assert.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
}
