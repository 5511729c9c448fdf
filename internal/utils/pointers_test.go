package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civic881027/ai-ticket-demo/internal/utils"
)

func TestPointers(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 0, utils.Value[int](nil))

	p := utils.Ptr(42)
	require.Equal(t, 42, utils.Value(p))

	// Ptr copies its argument.
	n := 1
	q := utils.Ptr(n)
	n = 2
	require.Equal(t, 1, *q)
}
