package invoices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceAfterSkipsDeletedNumbers(t *testing.T) {
	// After deleting PAY-2609-0001 while PAY-2609-0002 survives, the
	// highest issued number is still 0002, so the next must be 0003.
	// A row count would reissue 0002 and trip the unique constraint.
	require.Equal(t, 3, sequenceAfter("PAY-2609-0002"))
}

func TestSequenceAfterEmptySeries(t *testing.T) {
	require.Equal(t, 1, sequenceAfter(""))
	require.Equal(t, 1, sequenceAfter("garbage"))
	require.Equal(t, 10000, sequenceAfter("INV-2609-9999"))
}
