package synthledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntercompanyFlowResult is one simulated intercompany sale: the
// seller- and buyer-side journal entries it produces, plus the
// aggregated transfer record consolidation needs to eliminate it
// (spec §4.7).
type IntercompanyFlowResult struct {
	SellerEntry JournalEntry
	BuyerEntry  JournalEntry
	Transfer    IntercompanyTransfer
}

// SimulateIntercompanyTransfer generates one intercompany sale of
// goods from seller to buyer at asOf, costed at baseAmount plus the
// seller's markup (markupPercent is a percentage, e.g. 15). Both sides
// post through the reserved intercompany accounts
// (199000/299000/410000/510000, consolidation.go) and tag their lines
// with JournalLine.PartnerCompany. IC-balance elimination
// (IntercompanyBalanceFor) matches on those account codes and does
// not read PartnerCompany.
func SimulateIntercompanyTransfer(ids *IDAllocator, cal FiscalCalendar, seller, buyer Company, asOf time.Time, baseAmount Money, markupPercent, remainingPercent decimal.Decimal) (IntercompanyFlowResult, error) {
	period := cal.PeriodOf(asOf)
	markup := baseAmount.Mul(markupPercent.Div(decimal.NewFromInt(100)))
	price, err := baseAmount.Add(markup)
	if err != nil {
		return IntercompanyFlowResult{}, err
	}

	sellerJE := JournalEntry{
		ID: ids.Next(PrefixJournalEntry, seller.Code), CompanyCode: seller.Code,
		PostingDate: asOf, FiscalYear: period.FiscalYear, FiscalPeriod: period.Period,
		Source: SourceAutomated, Process: ProcessConsolidation,
		Lines: []JournalLine{
			{AccountCode: AcctIntercompanyReceivable, Type: Debit, Amount: price, PartnerCompany: buyer.Code},
			{AccountCode: AcctIntercompanyRevenue, Type: Credit, Amount: price, PartnerCompany: buyer.Code},
		},
		Description: "Intercompany sale to " + buyer.Code, CreatedAt: asOf,
	}
	if !sellerJE.Balanced() {
		return IntercompanyFlowResult{}, NewError(ErrInvariantViolation, "unbalanced intercompany seller entry %s", sellerJE.ID)
	}

	buyerJE := JournalEntry{
		ID: ids.Next(PrefixJournalEntry, buyer.Code), CompanyCode: buyer.Code,
		PostingDate: asOf, FiscalYear: period.FiscalYear, FiscalPeriod: period.Period,
		Source: SourceAutomated, Process: ProcessConsolidation,
		Lines: []JournalLine{
			{AccountCode: AcctIntercompanyCOGS, Type: Debit, Amount: price, PartnerCompany: seller.Code},
			{AccountCode: AcctIntercompanyPayable, Type: Credit, Amount: price, PartnerCompany: seller.Code},
		},
		Description: "Intercompany purchase from " + seller.Code, CreatedAt: asOf,
	}
	if !buyerJE.Balanced() {
		return IntercompanyFlowResult{}, NewError(ErrInvariantViolation, "unbalanced intercompany buyer entry %s", buyerJE.ID)
	}

	transfer := IntercompanyTransfer{
		SellerCode: seller.Code, BuyerCode: buyer.Code, TransactionType: "GOODS",
		// The transfer record holds the markup as a fraction, like
		// RemainingPercent, which is how consolidation multiplies it.
		Amount: price, MarkupPercent: markupPercent.Div(decimal.NewFromInt(100)), RemainingPercent: remainingPercent,
	}
	return IntercompanyFlowResult{SellerEntry: sellerJE, BuyerEntry: buyerJE, Transfer: transfer}, nil
}

// IntercompanyBalanceFor builds the matched receivable/payable pair
// elimination needs from the seller's and buyer's own tracked balances
// in the reserved intercompany accounts (spec §4.7 IC balance
// elimination).
func IntercompanyBalanceFor(tracker *BalanceTracker, seller, buyer Company, fy, fp int) IntercompanyBalance {
	sellerSnap := tracker.Snapshot(seller.Code, fy, fp, time.Time{})
	buyerSnap := tracker.Snapshot(buyer.Code, fy, fp, time.Time{})
	var receivable, payable Money
	for _, b := range sellerSnap.Balances {
		if b.AccountCode == AcctIntercompanyReceivable {
			receivable = b.ClosingBalance
		}
	}
	for _, b := range buyerSnap.Balances {
		if b.AccountCode == AcctIntercompanyPayable {
			payable = b.ClosingBalance
		}
	}
	return IntercompanyBalance{
		CompanyCode: seller.Code, CounterpartyCode: buyer.Code,
		ReceivableAccount: AcctIntercompanyReceivable, PayableAccount: AcctIntercompanyPayable,
		ReceivableBalance: receivable, PayableBalance: payable,
	}
}
