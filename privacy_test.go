package synthledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrivacyBudgetReleaseLaplaceSpendsEpsilon(t *testing.T) {
	b := NewPrivacyBudget(1.0)
	_, epsilon, err := b.ReleaseLaplace("mean", "amount", 100, 10)
	require.NoError(t, err)
	require.Equal(t, 0.1, epsilon)
	require.Equal(t, 0.1, b.Spent())
	require.InDelta(t, 0.9, b.Remaining(), 1e-9)
	require.Len(t, b.Audit(), 1)
	require.Equal(t, "mean", b.Audit()[0].Mechanism)
}

func TestPrivacyBudgetZeroNoiseYieldsExactValueWithDefaultSource(t *testing.T) {
	b := NewPrivacyBudget(1.0)
	noisy, _, err := b.ReleaseLaplace("sum", "amount", 500, 10)
	require.NoError(t, err)
	require.InDelta(t, 500, noisy, 1e-9)
}

func TestPrivacyBudgetExhaustionFailsRelease(t *testing.T) {
	b := NewPrivacyBudget(0.2)
	_, _, err := b.ReleaseLaplace("mean", "amount", 1, 1)
	require.NoError(t, err)
	_, _, err = b.ReleaseLaplace("mean", "amount", 1, 1)
	require.NoError(t, err)
	_, _, err = b.ReleaseLaplace("mean", "amount", 1, 1)
	require.Error(t, err)
}

func TestPrivacyBudgetWithStreamUsesDeterministicNoise(t *testing.T) {
	b1 := NewPrivacyBudget(1.0).WithStream(NewRootStream(9))
	b2 := NewPrivacyBudget(1.0).WithStream(NewRootStream(9))

	v1, _, err := b1.ReleaseLaplace("mean", "amount", 100, 10)
	require.NoError(t, err)
	v2, _, err := b2.ReleaseLaplace("mean", "amount", 100, 10)
	require.NoError(t, err)
	require.Equal(t, v1, v2)
}

func TestKAnonymitySuppress(t *testing.T) {
	require.True(t, KAnonymitySuppress(4, 5))
	require.False(t, KAnonymitySuppress(5, 5))
	require.False(t, KAnonymitySuppress(10, 5))
}
