package synthledger

import (
	"github.com/shopspring/decimal"
)

// Account codes reserved for intercompany and equity-consolidation
// postings (spec §4.7), seeded into every company's chart by
// standardChartOfAccounts in masterdata.go.
const (
	AcctInvestmentInSubsidiaries AccountCode = "180000"
	AcctIntercompanyReceivable   AccountCode = "199000"
	AcctIntercompanyPayable      AccountCode = "299000"
	AcctCommonStock              AccountCode = "300000"
	AcctRetainedEarnings         AccountCode = "310000"
	AcctMinorityInterest         AccountCode = "320000"
	AcctIntercompanyRevenue      AccountCode = "410000"
	AcctIntercompanyCOGS         AccountCode = "510000"
)

// Consolidator runs the elimination rules of spec §4.7 against a
// declared OwnershipStructure, grounded on the teacher's
// ConsolidationGroup/EliminationRule shape (multi_company.go)
// generalized from configuration-only records into an executable
// elimination engine.
type Consolidator struct {
	IDs    *IDAllocator
	Issues *IssueLog
}

// RunIntercompanyBalanceElimination implements the "IC balance
// elimination" rule: for each matched pair, Dr payable, Cr receivable
// by min(receivable, payable); any unmatched difference is recorded
// rather than eliminated.
func (c *Consolidator) RunIntercompanyBalanceElimination(groupCode string, fy, fp int, pairs []IntercompanyBalance) (EliminationEntry, error) {
	if len(pairs) == 0 {
		return EliminationEntry{}, nil
	}
	cur := pairs[0].ReceivableBalance.Currency
	var lines []JournalLine
	for _, p := range pairs {
		cmp, err := p.ReceivableBalance.Cmp(p.PayableBalance)
		if err != nil {
			return EliminationEntry{}, err
		}
		eliminated := p.ReceivableBalance
		if cmp > 0 {
			eliminated = p.PayableBalance
		}
		if eliminated.IsZero() {
			continue
		}
		lines = append(lines,
			JournalLine{AccountCode: p.PayableAccount, Type: Debit, Amount: eliminated},
			JournalLine{AccountCode: p.ReceivableAccount, Type: Credit, Amount: eliminated},
		)
		if cmp != 0 {
			diff, _ := p.ReceivableBalance.Sub(p.PayableBalance)
			if c.Issues != nil {
				c.Issues.Record(ErrMatchFailure, p.CompanyCode+"/"+p.CounterpartyCode,
					"unmatched intercompany balance difference %s", diff)
			}
		}
	}
	if len(lines) == 0 {
		return EliminationEntry{}, nil
	}
	entry := EliminationEntry{
		ID: c.IDs.Next("ELIM", groupCode), GroupCode: groupCode,
		Type: ElimIntercompanyBalance, FiscalYear: fy, FiscalPeriod: fp,
		Lines: lines, Description: "Intercompany balance elimination",
	}
	return entry, checkBalanced(entry, cur)
}

// RunIntercompanyRevenueExpenseElimination implements "IC
// revenue/expense": every transfer's amount is summed into a single
// Dr intercompany revenue (410000), Cr intercompany COGS (510000)
// pair. The total is not broken down by seller, buyer or transaction
// type.
func (c *Consolidator) RunIntercompanyRevenueExpenseElimination(groupCode string, fy, fp int, transfers []IntercompanyTransfer) (EliminationEntry, error) {
	if len(transfers) == 0 {
		return EliminationEntry{}, nil
	}
	cur := transfers[0].Amount.Currency
	total := Zero(cur)
	var err error
	for _, t := range transfers {
		total, err = total.Add(t.Amount)
		if err != nil {
			return EliminationEntry{}, err
		}
	}
	if total.IsZero() {
		return EliminationEntry{}, nil
	}
	entry := EliminationEntry{
		ID: c.IDs.Next("ELIM", groupCode), GroupCode: groupCode,
		Type: ElimIntercompanyRevenueExpense, FiscalYear: fy, FiscalPeriod: fp,
		Lines: []JournalLine{
			{AccountCode: AcctIntercompanyRevenue, Type: Debit, Amount: total},
			{AccountCode: AcctIntercompanyCOGS, Type: Credit, Amount: total},
		},
		Description: "Intercompany revenue/expense elimination",
	}
	return entry, checkBalanced(entry, cur)
}

// RunUnrealizedProfitElimination implements "unrealized profit in
// inventory/fixed assets": per (seller, buyer) transfer, the profit
// still embedded in goods the buyer has not yet resold (or fixed
// assets not yet fully depreciated through) is backed out — Dr COGS,
// Cr Inventory (or the fixed-asset equivalent).
func (c *Consolidator) RunUnrealizedProfitElimination(groupCode string, fy, fp int, transfers []IntercompanyTransfer, inFixedAssets bool) (EliminationEntry, error) {
	if len(transfers) == 0 {
		return EliminationEntry{}, nil
	}
	cur := transfers[0].Amount.Currency
	total := Zero(cur)
	for _, t := range transfers {
		unrealizedProfit := t.Amount.Mul(t.MarkupPercent).Mul(t.RemainingPercent)
		var err error
		total, err = total.Add(unrealizedProfit)
		if err != nil {
			return EliminationEntry{}, err
		}
	}
	if total.IsZero() {
		return EliminationEntry{}, nil
	}
	assetAccount := AccountCode(AcctInventory)
	elimType := ElimUnrealizedProfitInInventory
	if inFixedAssets {
		assetAccount = AcctFixedAssets
		elimType = ElimUnrealizedProfitInFixedAssets
	}
	entry := EliminationEntry{
		ID: c.IDs.Next("ELIM", groupCode), GroupCode: groupCode,
		Type: elimType, FiscalYear: fy, FiscalPeriod: fp,
		Lines: []JournalLine{
			{AccountCode: AcctCOGS, Type: Debit, Amount: total},
			{AccountCode: assetAccount, Type: Credit, Amount: total},
		},
		Description: "Unrealized intercompany profit elimination",
	}
	return entry, checkBalanced(entry, cur)
}

// SubsidiaryEquity is the subsidiary-side figures needed for
// investment/equity elimination: the parent's carrying investment
// balance and the subsidiary's own equity components at period end.
type SubsidiaryEquity struct {
	SubsidiaryCode  string
	InvestmentBalance Money // on the parent's books
	CommonStock     Money
	RetainedEarnings Money
	NetIncome       Money
}

// InvestmentEquityResult reports the goodwill/minority-interest
// figures produced alongside the elimination entry.
type InvestmentEquityResult struct {
	Entry            EliminationEntry
	Goodwill         Money
	MinorityInterest Money
}

// RunInvestmentEquityElimination implements "Investment/Equity": for
// Full consolidation, eliminate the parent's Investment-in-Sub
// against the subsidiary's equity; goodwill = investment -
// ownership% * equity when positive, minority interest = equity *
// (1 - ownership%).
func (c *Consolidator) RunInvestmentEquityElimination(groupCode string, fy, fp int, link OwnershipLink, eq SubsidiaryEquity) (InvestmentEquityResult, error) {
	cur := eq.InvestmentBalance.Currency
	equity, err := eq.CommonStock.Add(eq.RetainedEarnings)
	if err != nil {
		return InvestmentEquityResult{}, err
	}
	equity, err = equity.Add(eq.NetIncome)
	if err != nil {
		return InvestmentEquityResult{}, err
	}

	ownershipShare := equity.Mul(link.OwnershipPercent)
	goodwill, err := eq.InvestmentBalance.Sub(ownershipShare)
	if err != nil {
		return InvestmentEquityResult{}, err
	}
	if goodwill.IsNegative() {
		goodwill = Zero(cur)
	}

	// The remainder after the parent's rounded share, so the entry
	// balances to the currency's last digit.
	minorityShare, err := equity.Sub(ownershipShare)
	if err != nil {
		return InvestmentEquityResult{}, err
	}

	lines := []JournalLine{
		{AccountCode: AcctCommonStock, Type: Debit, Amount: eq.CommonStock},
		{AccountCode: AcctRetainedEarnings, Type: Debit, Amount: eq.RetainedEarnings},
	}
	if !eq.NetIncome.IsZero() {
		lines = append(lines, JournalLine{AccountCode: AcctRetainedEarnings, Type: Debit, Amount: eq.NetIncome})
	}
	if !goodwill.IsZero() {
		lines = append(lines, JournalLine{AccountCode: "190000", Type: Debit, Amount: goodwill})
	}
	lines = append(lines, JournalLine{AccountCode: AcctInvestmentInSubsidiaries, Type: Credit, Amount: eq.InvestmentBalance})
	if !minorityShare.IsZero() {
		lines = append(lines, JournalLine{AccountCode: AcctMinorityInterest, Type: Credit, Amount: minorityShare})
	}

	entry := EliminationEntry{
		ID: c.IDs.Next("ELIM", groupCode), GroupCode: groupCode,
		Type: ElimInvestmentEquity, FiscalYear: fy, FiscalPeriod: fp,
		Lines: lines, Description: "Investment/equity elimination for " + eq.SubsidiaryCode,
	}
	if err := checkBalanced(entry, cur); err != nil {
		return InvestmentEquityResult{}, err
	}
	return InvestmentEquityResult{Entry: entry, Goodwill: goodwill, MinorityInterest: minorityShare}, nil
}

// RunMinorityInterestIncomeSplit reclasses the non-controlling
// interest's share of a subsidiary's net income from consolidated
// income to NCI equity.
func (c *Consolidator) RunMinorityInterestIncomeSplit(groupCode string, fy, fp int, link OwnershipLink, subNetIncome Money) (EliminationEntry, error) {
	one := decimal.NewFromInt(1)
	nciShare := subNetIncome.Mul(one.Sub(link.OwnershipPercent))
	if nciShare.IsZero() {
		return EliminationEntry{}, nil
	}
	entry := EliminationEntry{
		ID: c.IDs.Next("ELIM", groupCode), GroupCode: groupCode,
		Type: ElimMinorityInterest, FiscalYear: fy, FiscalPeriod: fp,
		Lines: []JournalLine{
			{AccountCode: AcctRetainedEarnings, Type: Debit, Amount: nciShare},
			{AccountCode: AcctMinorityInterest, Type: Credit, Amount: nciShare},
		},
		Description: "Minority interest income split for " + link.SubsidiaryCode,
	}
	return entry, checkBalanced(entry, subNetIncome.Currency)
}

// RunConsolidation orchestrates the full elimination set for one
// group/fiscal-period, returning a ConsolidationJournal of every
// non-empty elimination entry produced.
func (c *Consolidator) RunConsolidation(structure OwnershipStructure, fy, fp int,
	icBalances []IntercompanyBalance, icTransfers []IntercompanyTransfer,
	equities map[string]SubsidiaryEquity) (ConsolidationJournal, error) {

	journal := ConsolidationJournal{GroupCode: structure.GroupCode, FiscalYear: fy, FiscalPeriod: fp}

	if e, err := c.RunIntercompanyBalanceElimination(structure.GroupCode, fy, fp, icBalances); err != nil {
		return journal, err
	} else if len(e.Lines) > 0 {
		journal.Entries = append(journal.Entries, e)
	}

	if e, err := c.RunIntercompanyRevenueExpenseElimination(structure.GroupCode, fy, fp, icTransfers); err != nil {
		return journal, err
	} else if len(e.Lines) > 0 {
		journal.Entries = append(journal.Entries, e)
	}

	var goodsTransfers, fixedAssetTransfers []IntercompanyTransfer
	for _, t := range icTransfers {
		if t.TransactionType == "GOODS" {
			goodsTransfers = append(goodsTransfers, t)
		} else {
			fixedAssetTransfers = append(fixedAssetTransfers, t)
		}
	}
	if e, err := c.RunUnrealizedProfitElimination(structure.GroupCode, fy, fp, goodsTransfers, false); err != nil {
		return journal, err
	} else if len(e.Lines) > 0 {
		journal.Entries = append(journal.Entries, e)
	}
	if e, err := c.RunUnrealizedProfitElimination(structure.GroupCode, fy, fp, fixedAssetTransfers, true); err != nil {
		return journal, err
	} else if len(e.Lines) > 0 {
		journal.Entries = append(journal.Entries, e)
	}

	for _, link := range structure.Links {
		eq, ok := equities[link.SubsidiaryCode]
		if !ok {
			continue
		}
		if link.Method == ConsolidationFull {
			res, err := c.RunInvestmentEquityElimination(structure.GroupCode, fy, fp, link, eq)
			if err != nil {
				return journal, err
			}
			if len(res.Entry.Lines) > 0 {
				journal.Entries = append(journal.Entries, res.Entry)
			}
			if split, err := c.RunMinorityInterestIncomeSplit(structure.GroupCode, fy, fp, link, eq.NetIncome); err != nil {
				return journal, err
			} else if len(split.Lines) > 0 {
				journal.Entries = append(journal.Entries, split)
			}
		}
	}

	return journal, nil
}

// checkBalanced enforces spec §4.7's "every entry must self-balance;
// the journal rejects unbalanced entries" rule.
func checkBalanced(e EliminationEntry, cur Currency) error {
	total := Zero(cur)
	for _, l := range e.Lines {
		var err error
		switch l.Type {
		case Debit:
			total, err = total.Add(l.Amount)
		case Credit:
			total, err = total.Sub(l.Amount)
		}
		if err != nil {
			return err
		}
	}
	if !total.IsZero() {
		return NewError(ErrInvariantViolation, "elimination entry %s does not self-balance (residual %s)", e.ID, total)
	}
	return nil
}
