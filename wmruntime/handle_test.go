package wmruntime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aerugo-project/compositor-core/wmruntime"
)

func TestHandleAllocatorReusesFreedRepLowestFirst(t *testing.T) {
	a := wmruntime.NewHandleAllocator()

	h1, err := a.Alloc(wmruntime.KindToplevel)
	require.NoError(t, err)
	h2, err := a.Alloc(wmruntime.KindOutput)
	require.NoError(t, err)

	require.NoError(t, a.Free(h1))

	h3, err := a.Alloc(wmruntime.KindToplevel)
	require.NoError(t, err)
	require.Equal(t, h1.Rep, h3.Rep)
	require.NotEqual(t, h2.Rep, h3.Rep)
}
