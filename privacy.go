package synthledger

import (
	"math"
	"time"
)

// PrivacyBudget tracks the total epsilon available for one fingerprint
// extraction run and every mechanism invocation spent against it, per
// spec §4.9: "Noise scale = sensitivity / ε. Every mechanism
// invocation appends an entry to the privacy audit... spending
// exceeding budget flips subsequent mechanisms to 'no-release'."
type PrivacyBudget struct {
	total  float64
	spent  float64
	audit  []PrivacyAuditEntry
	noise  func() float64
}

// NewPrivacyBudget constructs a budget with total epsilon and no noise
// source: until WithStream attaches one, releases add zero noise
// (useful in tests asserting exact released values).
func NewPrivacyBudget(total float64) *PrivacyBudget {
	return &PrivacyBudget{total: total}
}

// WithStream attaches a deterministic noise source driven by rng,
// so fingerprint extraction remains reproducible under a fixed seed.
func (b *PrivacyBudget) WithStream(rng *Stream) *PrivacyBudget {
	b.noise = func() float64 { return rng.Float64() }
	return b
}

// Remaining returns the unspent epsilon.
func (b *PrivacyBudget) Remaining() float64 { return b.total - b.spent }

// Spent returns the cumulative epsilon spent so far.
func (b *PrivacyBudget) Spent() float64 { return b.spent }

// Audit returns every recorded mechanism invocation.
func (b *PrivacyBudget) Audit() []PrivacyAuditEntry { return b.audit }

// laplaceSample draws from a Laplace(0, scale) distribution using
// inverse-CDF sampling from a uniform source in (-0.5, 0.5).
func laplaceSample(u, scale float64) float64 {
	u = u - 0.5
	sign := 1.0
	if u < 0 {
		sign = -1.0
	}
	return -scale * sign * math.Log(1-2*math.Abs(u))
}

// ReleaseLaplace adds Laplace(sensitivity/ε) noise to value and
// records the mechanism invocation in the audit trail, spending a
// fixed slice of epsilon per release. Once the budget is exhausted the
// call fails instead of releasing an unperturbed value, so the caller
// can omit the statistic ("no-release").
func (b *PrivacyBudget) ReleaseLaplace(mechanism, column string, value, sensitivity float64) (float64, float64, error) {
	const perReleaseEpsilon = 0.1
	epsilon := perReleaseEpsilon
	if epsilon > b.Remaining() {
		epsilon = b.Remaining()
	}
	if epsilon <= 0 {
		return 0, 0, NewError(ErrPrivacyBudgetExhausted, "privacy budget exhausted releasing %s for column %s", mechanism, column)
	}

	scale := sensitivity / epsilon
	u := 0.5
	if b.noise != nil {
		u = b.noise()
	}
	noisy := value + laplaceSample(u, scale)

	b.spent += epsilon
	b.audit = append(b.audit, PrivacyAuditEntry{
		Mechanism: mechanism, Column: column, EpsilonSpent: epsilon, Timestamp: time.Now().UTC(),
	})
	return noisy, epsilon, nil
}

// KAnonymitySuppress reports whether a categorical value occurring
// `count` times must be suppressed under k-anonymity (spec §4.9:
// "categorical values occurring fewer than k times are suppressed").
func KAnonymitySuppress(count int64, k int) bool {
	return count < int64(k)
}
