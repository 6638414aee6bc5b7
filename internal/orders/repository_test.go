package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceAfter(t *testing.T) {
	require.Equal(t, 1, sequenceAfter(""))
	require.Equal(t, 3, sequenceAfter("SO-2609-0002"))
	require.Equal(t, 10000, sequenceAfter("PO-2609-9999"))
	require.Equal(t, 1, sequenceAfter("garbage"))
}
