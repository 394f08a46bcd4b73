package synthledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFromMemoryDetectsNumericAndCategoricalColumns(t *testing.T) {
	e := &FingerprintExtractor{Config: ExtractionConfig{
		Fingerprint: FingerprintConfig{Level: PrivacyMinimal, MinRows: 1, KAnonymity: 1},
	}}

	headers := []string{"amount", "status"}
	rows := [][]string{
		{"100", "OPEN"}, {"200", "OPEN"}, {"300", "CLOSED"}, {"400", "OPEN"},
	}

	fp, err := e.ExtractFromMemory("ledger", headers, rows)
	require.NoError(t, err)
	require.Equal(t, "ledger", fp.Manifest.SourceName)
	require.Equal(t, int64(4), fp.Manifest.RowCount)
	require.Equal(t, 2, fp.Manifest.ColumnCount)
	require.Len(t, fp.Statistics, 2)

	var amountStats, statusStats *ColumnStatistics
	for i := range fp.Statistics {
		switch fp.Statistics[i].ColumnName {
		case "amount":
			amountStats = &fp.Statistics[i]
		case "status":
			statusStats = &fp.Statistics[i]
		}
	}
	require.NotNil(t, amountStats)
	require.NotNil(t, amountStats.Numeric)
	require.Equal(t, int64(4), amountStats.Numeric.Count)

	require.NotNil(t, statusStats)
	require.NotNil(t, statusStats.Categorical)
	require.Equal(t, int64(4), statusStats.Categorical.Count)
}

func TestExtractFromMemoryRejectsBelowMinRows(t *testing.T) {
	e := &FingerprintExtractor{Config: ExtractionConfig{
		Fingerprint: FingerprintConfig{Level: PrivacyMinimal, MinRows: 10},
	}}

	_, err := e.ExtractFromMemory("ledger", []string{"amount"}, [][]string{{"1"}, {"2"}})
	require.Error(t, err)
}

func TestExtractFromMemorySpendsPrivacyBudgetAndRecordsAudit(t *testing.T) {
	e := &FingerprintExtractor{Config: ExtractionConfig{
		Fingerprint: FingerprintConfig{Level: PrivacyStandard, MinRows: 1, KAnonymity: 1},
	}}

	rows := [][]string{{"10"}, {"20"}, {"30"}}
	fp, err := e.ExtractFromMemory("src", []string{"amount"}, rows)
	require.NoError(t, err)
	require.Greater(t, fp.Manifest.EpsilonSpent, 0.0)
	require.NotEmpty(t, fp.PrivacyAudit)
}

func TestKAnonymitySuppressesRareCategories(t *testing.T) {
	e := &FingerprintExtractor{Config: ExtractionConfig{
		Fingerprint: FingerprintConfig{Level: PrivacyMinimal, MinRows: 1, KAnonymity: 3},
	}}

	rows := [][]string{
		{"A"}, {"A"}, {"A"}, {"A"}, {"B"},
	}
	fp, err := e.ExtractFromMemory("src", []string{"category"}, rows)
	require.NoError(t, err)
	require.Len(t, fp.Statistics, 1)
	cs := fp.Statistics[0].Categorical
	require.NotNil(t, cs)

	var foundA bool
	for _, tk := range cs.TopK {
		if tk.Value == "A" {
			foundA = true
		}
		require.NotEqual(t, "B", tk.Value)
	}
	require.True(t, foundA)
	require.Equal(t, int64(1), cs.SuppressedCount)
}
