package synthledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTrialBalanceBalancesAndFlipsContraSide(t *testing.T) {
	accounts := []Account{
		{ID: "C1-100000", CompanyCode: "C1", Code: "100000", Name: "Cash", Type: AccountAsset, Currency: "USD"},
		{ID: "C1-169000", CompanyCode: "C1", Code: "169000", Name: "Accum Depreciation", Type: AccountAsset, Currency: "USD"},
		{ID: "C1-300000", CompanyCode: "C1", Code: "300000", Name: "Common Stock", Type: AccountEquity, Currency: "USD"},
	}
	snap := BalanceSnapshot{
		CompanyCode: "C1", FiscalYear: 2025, FiscalPeriod: 1,
		Balances: []AccountBalance{
			{CompanyCode: "C1", AccountCode: "100000", ClosingBalance: MustParseMoney("900", "USD")},
			{CompanyCode: "C1", AccountCode: "169000", ClosingBalance: MustParseMoney("-100", "USD")},
			{CompanyCode: "C1", AccountCode: "300000", ClosingBalance: MustParseMoney("800", "USD")},
		},
	}

	tb, err := BuildTrialBalance(snap, accounts, false)
	require.NoError(t, err)
	require.True(t, tb.IsEquationValid)
	require.Equal(t, "900", tb.TotalDebits.Amount.StringFixed(0))
	require.Equal(t, "900", tb.TotalCredits.Amount.StringFixed(0))

	var contra *TrialBalanceLine
	for i := range tb.Lines {
		if tb.Lines[i].AccountCode == "169000" {
			contra = &tb.Lines[i]
		}
	}
	require.NotNil(t, contra)
	require.True(t, contra.Credit.Amount.Equal(MustParseMoney("100", "USD").Amount))
	require.True(t, contra.Debit.IsZero())
}

func TestBuildTrialBalanceDropsZeroBalancesUnlessIncluded(t *testing.T) {
	accounts := []Account{
		{ID: "C1-100000", CompanyCode: "C1", Code: "100000", Name: "Cash", Type: AccountAsset, Currency: "USD"},
	}
	snap := BalanceSnapshot{
		CompanyCode: "C1", FiscalYear: 2025, FiscalPeriod: 1,
		Balances: []AccountBalance{
			{CompanyCode: "C1", AccountCode: "100000", ClosingBalance: Zero("USD")},
		},
	}

	tb, err := BuildTrialBalance(snap, accounts, false)
	require.NoError(t, err)
	require.Empty(t, tb.Lines)

	tbWithZero, err := BuildTrialBalance(snap, accounts, true)
	require.NoError(t, err)
	require.Len(t, tbWithZero.Lines, 1)
}

func TestComparativeTrialBalanceComputesDeltas(t *testing.T) {
	snapshots := []BalanceSnapshot{
		{CompanyCode: "C1", FiscalYear: 2025, FiscalPeriod: 1, Balances: []AccountBalance{
			{AccountCode: "100000", ClosingBalance: MustParseMoney("100", "USD")},
		}},
		{CompanyCode: "C1", FiscalYear: 2025, FiscalPeriod: 2, Balances: []AccountBalance{
			{AccountCode: "100000", ClosingBalance: MustParseMoney("150", "USD")},
		}},
	}

	lines, err := ComparativeTrialBalance(snapshots)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, "100000", lines[0].AccountCode)
	require.Len(t, lines[0].Deltas, 2)
	require.True(t, lines[0].Deltas[0].IsZero())
	require.Equal(t, "50", lines[0].Deltas[1].Amount.StringFixed(0))
}

func TestConsolidatedTrialBalanceMergesCompaniesAndEliminations(t *testing.T) {
	tb1 := TrialBalance{
		CompanyCode: "C1", FiscalYear: 2025, FiscalPeriod: 6,
		TotalDebits: MustParseMoney("500", "USD"), TotalCredits: MustParseMoney("500", "USD"),
		Lines: []TrialBalanceLine{
			{AccountCode: "130000", Type: AccountAsset, Debit: MustParseMoney("500", "USD"), Credit: Zero("USD")},
		},
	}
	tb2 := TrialBalance{
		CompanyCode: "C2", FiscalYear: 2025, FiscalPeriod: 6,
		TotalDebits: MustParseMoney("500", "USD"), TotalCredits: MustParseMoney("500", "USD"),
		Lines: []TrialBalanceLine{
			{AccountCode: "230000", Type: AccountLiability, Debit: Zero("USD"), Credit: MustParseMoney("500", "USD")},
		},
	}
	eliminations := []EliminationEntry{
		{
			ID: "ELIM-1", GroupCode: "GRP", FiscalYear: 2025, FiscalPeriod: 6,
			Lines: []JournalLine{
				{AccountCode: "230000", Type: Debit, Amount: MustParseMoney("500", "USD")},
				{AccountCode: "130000", Type: Credit, Amount: MustParseMoney("500", "USD")},
			},
		},
	}

	consolidated, err := ConsolidatedTrialBalance([]TrialBalance{tb1, tb2}, "GRP", eliminations, map[string]string{"130000": "Intercompany Receivable", "230000": "Intercompany Payable"})
	require.NoError(t, err)
	require.True(t, consolidated.IsEquationValid)
	require.Equal(t, "GRP", consolidated.CompanyCode)
	require.Equal(t, "1000", consolidated.TotalDebits.Amount.StringFixed(0))
	require.Equal(t, "1000", consolidated.TotalCredits.Amount.StringFixed(0))
}
