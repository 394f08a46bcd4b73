package synthledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRunIntercompanyBalanceEliminationBalancesAndNetsMinimum(t *testing.T) {
	c := &Consolidator{IDs: NewIDAllocator(), Issues: &IssueLog{}}

	pairs := []IntercompanyBalance{
		{
			CompanyCode: "C1", CounterpartyCode: "C2",
			ReceivableAccount: AcctIntercompanyReceivable, PayableAccount: AcctIntercompanyPayable,
			ReceivableBalance: MustParseMoney("50000", "USD"), PayableBalance: MustParseMoney("50000", "USD"),
		},
	}

	entry, err := c.RunIntercompanyBalanceElimination("GRP", 2025, 6, pairs)
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)
	require.Equal(t, AcctIntercompanyPayable, entry.Lines[0].AccountCode)
	require.Equal(t, Debit, entry.Lines[0].Type)
	require.Equal(t, "50000", entry.Lines[0].Amount.Amount.StringFixed(0))
	require.Equal(t, AcctIntercompanyReceivable, entry.Lines[1].AccountCode)
	require.Equal(t, Credit, entry.Lines[1].Type)
}

func TestRunInvestmentEquityEliminationSelfBalances(t *testing.T) {
	c := &Consolidator{IDs: NewIDAllocator(), Issues: &IssueLog{}}

	link := OwnershipLink{ParentCode: "C1", SubsidiaryCode: "C2", OwnershipPercent: decimal.NewFromFloat(0.8), Method: ConsolidationFull}
	eq := SubsidiaryEquity{
		SubsidiaryCode: "C2",
		InvestmentBalance: MustParseMoney("100000", "USD"),
		CommonStock: MustParseMoney("60000", "USD"),
		RetainedEarnings: MustParseMoney("20000", "USD"),
		NetIncome: MustParseMoney("5000", "USD"),
	}

	res, err := c.RunInvestmentEquityElimination("GRP", 2025, 12, link, eq)
	require.NoError(t, err)
	require.NoError(t, checkBalanced(res.Entry, "USD"))
	require.False(t, res.MinorityInterest.IsZero())
}

func TestRunConsolidationSkipsUndeclaredSubsidiaries(t *testing.T) {
	c := &Consolidator{IDs: NewIDAllocator(), Issues: &IssueLog{}}
	structure := OwnershipStructure{GroupCode: "GRP", Links: []OwnershipLink{
		{ParentCode: "C1", SubsidiaryCode: "C2", OwnershipPercent: decimal.NewFromFloat(0.9), Method: ConsolidationFull},
	}}

	journal, err := c.RunConsolidation(structure, 2025, 1, nil, nil, map[string]SubsidiaryEquity{})
	require.NoError(t, err)
	require.Empty(t, journal.Entries)
}
