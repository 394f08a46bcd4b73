package synthledger

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleFingerprint() Fingerprint {
	return Fingerprint{
		Manifest: FingerprintManifest{
			GeneratedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			RowCount: 100, ColumnCount: 1, SourceName: "C1",
			PrivacyLevel: PrivacyStandard, EpsilonBudget: 1.0, EpsilonSpent: 0.5,
		},
		Schema: []ColumnSchema{
			{Name: "amount", Type: ColumnNumeric},
		},
		Statistics: []ColumnStatistics{
			{ColumnName: "amount", Numeric: &NumericStatistics{Count: 100, Mean: 42.5}},
		},
		PrivacyAudit: []PrivacyAuditEntry{
			{Mechanism: "laplace", Column: "amount", EpsilonSpent: 0.5, Timestamp: time.Now()},
		},
	}
}

func TestSealAndOpenFingerprintUnsigned(t *testing.T) {
	fp := sampleFingerprint()

	sealed, err := SealFingerprint(fp, nil)
	require.NoError(t, err)
	require.NotEmpty(t, sealed)

	got, err := OpenFingerprint(sealed, nil)
	require.NoError(t, err)
	require.Equal(t, fp.Manifest.SourceName, got.Manifest.SourceName)
	require.Equal(t, fp.Manifest.RowCount, got.Manifest.RowCount)
	require.Len(t, got.Statistics, 1)
	require.Equal(t, "amount", got.Statistics[0].ColumnName)
}

func TestSealAndOpenFingerprintHMACSigned(t *testing.T) {
	fp := sampleFingerprint()
	key := []byte("test-hmac-key")

	sealed, err := SealFingerprint(fp, &Signer{Algorithm: SignatureHMACSHA256, KeyID: "k1", HMACKey: key})
	require.NoError(t, err)

	_, err = OpenFingerprint(sealed, &Verifier{Algorithm: SignatureHMACSHA256, KeyID: "k1", HMACKey: key})
	require.NoError(t, err)

	_, err = OpenFingerprint(sealed, &Verifier{Algorithm: SignatureHMACSHA256, KeyID: "k1", HMACKey: []byte("wrong-key")})
	require.Error(t, err)
}

func TestSealAndOpenFingerprintEd25519Signed(t *testing.T) {
	fp := sampleFingerprint()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	sealed, err := SealFingerprint(fp, &Signer{Algorithm: SignatureEd25519, KeyID: "k1", Ed25519Key: priv})
	require.NoError(t, err)

	got, err := OpenFingerprint(sealed, &Verifier{Algorithm: SignatureEd25519, KeyID: "k1", Ed25519Key: pub})
	require.NoError(t, err)
	require.Equal(t, fp.Manifest.SourceName, got.Manifest.SourceName)
}

func TestOpenFingerprintRejectsCorruptData(t *testing.T) {
	fp := sampleFingerprint()
	sealed, err := SealFingerprint(fp, nil)
	require.NoError(t, err)

	corrupt := append([]byte(nil), sealed...)
	corrupt[0] = 'X'
	_, err = OpenFingerprint(corrupt, nil)
	require.Error(t, err)
}
