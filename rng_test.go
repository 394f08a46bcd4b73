package synthledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRootStreamIsDeterministicForSameSeed(t *testing.T) {
	a := NewRootStream(42)
	b := NewRootStream(42)

	for i := 0; i < 50; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestNewRootStreamDiffersAcrossSeeds(t *testing.T) {
	a := NewRootStream(1)
	b := NewRootStream(2)

	same := true
	for i := 0; i < 20; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	require.False(t, same)
}

func TestDeriveStreamIsDeterministicAndTagScoped(t *testing.T) {
	root1 := NewRootStream(7)
	root2 := NewRootStream(7)

	childA1 := root1.DeriveStream("companies", 3)
	childA2 := root2.DeriveStream("companies", 3)
	for i := 0; i < 20; i++ {
		require.Equal(t, childA1.Float64(), childA2.Float64())
	}

	root3 := NewRootStream(7)
	childB := root3.DeriveStream("documents", 3)
	root4 := NewRootStream(7)
	childC := root4.DeriveStream("companies", 4)

	diffTag := root3.DeriveStream("companies", 3).Float64() != childB.Float64()
	diffIdx := root4.DeriveStream("companies", 3).Float64() != childC.Float64()
	require.True(t, diffTag || diffIdx)
}

func TestStreamBoolRespectsBoundaryProbabilities(t *testing.T) {
	s := NewRootStream(1)
	require.False(t, s.Bool(0))
	require.True(t, s.Bool(1))
}

func TestPickReturnsAnElementOfSlice(t *testing.T) {
	s := NewRootStream(5)
	items := []string{"a", "b", "c"}
	for i := 0; i < 10; i++ {
		v := Pick(s, items)
		require.Contains(t, items, v)
	}
}

func TestShuffleIsPermutationAndDeterministic(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	b := []int{1, 2, 3, 4, 5}

	Shuffle(NewRootStream(9), a)
	Shuffle(NewRootStream(9), b)
	require.Equal(t, a, b)

	sum := 0
	for _, v := range a {
		sum += v
	}
	require.Equal(t, 15, sum)
}

func TestWeightedPickFavorsHeavierWeight(t *testing.T) {
	s := NewRootStream(3)
	counts := make([]int, 2)
	for i := 0; i < 1000; i++ {
		idx := WeightedPick(s, []float64{0.9, 0.1})
		counts[idx]++
	}
	require.Greater(t, counts[0], counts[1])
}

func TestWeightedPickZeroWeightsReturnsFirstIndex(t *testing.T) {
	s := NewRootStream(1)
	require.Equal(t, 0, WeightedPick(s, []float64{0, 0, 0}))
}
