package synthledger

import (
	"sort"
	"time"
)

// balanceKey identifies one (company, account, fiscal year, period)
// balance bucket.
type balanceKey struct {
	CompanyCode  string
	AccountCode  string
	FiscalYear   int
	FiscalPeriod int
}

// BalanceTracker accumulates per-(company, account, period) balances
// as journal entries post, per spec §4.5. Not shared across
// partitions (spec §5): each partitioned-parallel worker owns one.
type BalanceTracker struct {
	accountTypes map[string]AccountType // keyed by "company/code"
	balances     map[balanceKey]*AccountBalance
}

// NewBalanceTracker constructs a tracker seeded with the chart of
// accounts needed to resolve each posting's normal side.
func NewBalanceTracker(accounts []Account) *BalanceTracker {
	t := &BalanceTracker{
		accountTypes: make(map[string]AccountType, len(accounts)),
		balances:     make(map[balanceKey]*AccountBalance),
	}
	for _, a := range accounts {
		t.accountTypes[a.CompanyCode+"/"+a.Code] = a.Type
	}
	return t
}

func (t *BalanceTracker) bucket(companyCode, accountCode string, fy, fp int, cur Currency) *AccountBalance {
	key := balanceKey{companyCode, accountCode, fy, fp}
	b, ok := t.balances[key]
	if !ok {
		b = &AccountBalance{
			CompanyCode: companyCode, AccountCode: accountCode,
			FiscalYear: fy, FiscalPeriod: fp,
			OpeningBalance: Zero(cur), PeriodDebits: Zero(cur),
			PeriodCredits: Zero(cur), ClosingBalance: Zero(cur),
		}
		t.balances[key] = b
	}
	return b
}

// Apply posts every line of je into its (account, period) bucket and
// recomputes the bucket's closing balance.
func (t *BalanceTracker) Apply(je JournalEntry) error {
	for _, l := range je.Lines {
		b := t.bucket(je.CompanyCode, l.AccountCode, je.FiscalYear, je.FiscalPeriod, l.Amount.Currency)
		var err error
		switch l.Type {
		case Debit:
			b.PeriodDebits, err = b.PeriodDebits.Add(l.Amount)
		case Credit:
			b.PeriodCredits, err = b.PeriodCredits.Add(l.Amount)
		}
		if err != nil {
			return err
		}
		if err := t.recompute(b, je.CompanyCode, l.AccountCode); err != nil {
			return err
		}
	}
	return nil
}

func (t *BalanceTracker) recompute(b *AccountBalance, companyCode, accountCode string) error {
	typ := t.accountTypes[companyCode+"/"+accountCode]
	var closing Money
	var err error
	if typ.NormalSide() == Debit {
		closing, err = b.OpeningBalance.Add(b.PeriodDebits)
		if err == nil {
			closing, err = closing.Sub(b.PeriodCredits)
		}
	} else {
		closing, err = b.OpeningBalance.Sub(b.PeriodDebits)
		if err == nil {
			closing, err = closing.Add(b.PeriodCredits)
		}
	}
	if err != nil {
		return err
	}
	b.ClosingBalance = closing
	return nil
}

// Snapshot returns a BalanceSnapshot of every tracked account for a
// (company, period), taken at t0.
func (t *BalanceTracker) Snapshot(companyCode string, fy, fp int, t0 time.Time) BalanceSnapshot {
	snap := BalanceSnapshot{CompanyCode: companyCode, FiscalYear: fy, FiscalPeriod: fp, TakenAt: t0}
	for k, b := range t.balances {
		if k.CompanyCode == companyCode && k.FiscalYear == fy && k.FiscalPeriod == fp {
			snap.Balances = append(snap.Balances, *b)
		}
	}
	return snap
}

// Rollforward copies each account's closing balance into the opening
// balance of the next fiscal period and zeros that period's totals
// (spec §4.5, testable property 4). Year-end rollforward additionally
// rolls FiscalYear and resets FiscalPeriod to 1, which the caller
// signals via the next FiscalPeriodID.
func (t *BalanceTracker) Rollforward(companyCode string, from FiscalPeriodID, to FiscalPeriodID) {
	for key, b := range t.balances {
		if key.CompanyCode != companyCode || key.FiscalYear != from.FiscalYear || key.FiscalPeriod != from.Period {
			continue
		}
		nextKey := balanceKey{companyCode, key.AccountCode, to.FiscalYear, to.Period}
		next, ok := t.balances[nextKey]
		if !ok {
			next = &AccountBalance{
				CompanyCode: companyCode, AccountCode: key.AccountCode,
				FiscalYear: to.FiscalYear, FiscalPeriod: to.Period,
			}
			t.balances[nextKey] = next
		}
		next.OpeningBalance = b.ClosingBalance
		next.PeriodDebits = Zero(b.ClosingBalance.Currency)
		next.PeriodCredits = Zero(b.ClosingBalance.Currency)
		next.ClosingBalance = b.ClosingBalance
	}
}

// NetIncome sums the closing balances of income-type accounts minus
// expense-type accounts for (company, fiscal year, period) — the
// pretax income figure period-close tax provisioning needs.
func (t *BalanceTracker) NetIncome(companyCode string, fy, fp int) Money {
	var cur Currency
	set := false
	net := Zero(Currency(""))
	for key, b := range t.balances {
		if key.CompanyCode != companyCode || key.FiscalYear != fy || key.FiscalPeriod != fp {
			continue
		}
		if !set {
			cur = b.ClosingBalance.Currency
			net = Zero(cur)
			set = true
		}
		typ := t.accountTypes[companyCode+"/"+key.AccountCode]
		switch typ {
		case AccountIncome:
			net, _ = net.Add(b.ClosingBalance)
		case AccountExpense:
			net, _ = net.Sub(b.ClosingBalance)
		}
	}
	return net
}

// IncomeStatementLine is one income or expense account's closing
// balance for a (company, period), as handed to
// ProjectIncomeStatementCloseEntry.
type IncomeStatementLine struct {
	AccountCode string
	Type        AccountType
	Closing     Money
}

// IncomeStatementBalances returns every non-zero income/expense
// account's closing balance for (company, fiscal year, period), the
// input to the year-end CloseIncomeStatement task (spec §4.6).
func (t *BalanceTracker) IncomeStatementBalances(companyCode string, fy, fp int) []IncomeStatementLine {
	var out []IncomeStatementLine
	for key, b := range t.balances {
		if key.CompanyCode != companyCode || key.FiscalYear != fy || key.FiscalPeriod != fp {
			continue
		}
		typ := t.accountTypes[companyCode+"/"+key.AccountCode]
		if typ != AccountIncome && typ != AccountExpense {
			continue
		}
		if b.ClosingBalance.IsZero() {
			continue
		}
		out = append(out, IncomeStatementLine{AccountCode: key.AccountCode, Type: typ, Closing: b.ClosingBalance})
	}
	// Map iteration order is randomized; sort for deterministic journal
	// line ordering (spec §4.1, testable property 1).
	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })
	return out
}

// Balanced reports whether the snapshot's asset-normal closing
// balances equal (liability + equity + revenue - expense) within
// tolerance (spec §4.5 invariant, testable property 3). accountTypes
// maps "code" -> AccountType for the snapshot's company.
func (snap BalanceSnapshot) Balanced(accountTypes map[string]AccountType, tolerance string) (bool, Money) {
	if len(snap.Balances) == 0 {
		return true, Money{}
	}
	cur := snap.Balances[0].ClosingBalance.Currency
	assetSide := Zero(cur)
	otherSide := Zero(cur)
	for _, b := range snap.Balances {
		typ := accountTypes[b.AccountCode]
		switch typ {
		case AccountAsset, AccountExpense:
			assetSide, _ = assetSide.Add(b.ClosingBalance)
		case AccountContraAsset:
			assetSide, _ = assetSide.Sub(b.ClosingBalance)
		case AccountContraLiability, AccountContraEquity:
			otherSide, _ = otherSide.Sub(b.ClosingBalance)
		default:
			otherSide, _ = otherSide.Add(b.ClosingBalance)
		}
	}
	delta, _ := assetSide.Sub(otherSide)
	tol := MustParseMoney(tolerance, cur)
	ok := delta.Amount.Abs().LessThanOrEqual(tol.Amount.Abs())
	return ok, delta
}
