package synthledger

// allAccountTypes lists every AccountType a TrialBalance's
// CategorySubtotals tracks, including the contra types (spec §3).
var allAccountTypes = []AccountType{
	AccountAsset, AccountContraAsset,
	AccountLiability, AccountContraLiability,
	AccountEquity, AccountContraEquity,
	AccountIncome, AccountExpense,
}

// TrialBalanceLine is one account's presentation on a trial balance:
// its closing balance expressed on whichever side (debit/credit) the
// account's natural balance sits, after contra accounts are flipped.
type TrialBalanceLine struct {
	AccountCode string      `json:"account_code"`
	AccountName string      `json:"account_name"`
	Type        AccountType `json:"type"`
	Debit       Money       `json:"debit"`
	Credit      Money       `json:"credit"`
}

// TrialBalance is the spec §4.8 report derived from a BalanceSnapshot.
type TrialBalance struct {
	CompanyCode     string              `json:"company_code"`
	FiscalYear      int                 `json:"fiscal_year"`
	FiscalPeriod    int                 `json:"fiscal_period"`
	Lines           []TrialBalanceLine  `json:"lines"`
	CategorySubtotals map[AccountType]Money `json:"category_subtotals"`
	TotalDebits     Money               `json:"total_debits"`
	TotalCredits    Money               `json:"total_credits"`
	IsEquationValid bool                `json:"is_equation_valid"`
}

// BuildTrialBalance produces a TrialBalance from a BalanceSnapshot,
// consulting accounts for each line's type/name and natural side.
// Zero-balance accounts are dropped unless includeZero is set.
func BuildTrialBalance(snap BalanceSnapshot, accounts []Account, includeZero bool) (TrialBalance, error) {
	if len(snap.Balances) == 0 {
		return TrialBalance{CompanyCode: snap.CompanyCode, FiscalYear: snap.FiscalYear, FiscalPeriod: snap.FiscalPeriod, IsEquationValid: true}, nil
	}
	cur := snap.Balances[0].ClosingBalance.Currency
	byCode := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}

	tb := TrialBalance{
		CompanyCode: snap.CompanyCode, FiscalYear: snap.FiscalYear, FiscalPeriod: snap.FiscalPeriod,
		CategorySubtotals: make(map[AccountType]Money),
		TotalDebits:       Zero(cur),
		TotalCredits:      Zero(cur),
	}
	for _, typ := range allAccountTypes {
		tb.CategorySubtotals[typ] = Zero(cur)
	}

	for _, b := range snap.Balances {
		if b.ClosingBalance.IsZero() && !includeZero {
			continue
		}
		acct := byCode[b.AccountCode]
		line := TrialBalanceLine{AccountCode: b.AccountCode, AccountName: acct.Name, Type: acct.Type, Debit: Zero(cur), Credit: Zero(cur)}

		onNaturalSide := acct.Type.NormalSide() == Debit
		isNegative := b.ClosingBalance.IsNegative()
		// A balance sitting opposite its natural side (e.g. a contra
		// account, or an overdrawn/abnormal balance) is presented on
		// the opposite column instead of as a negative number.
		showOnDebit := (onNaturalSide && !isNegative) || (!onNaturalSide && isNegative)

		abs := b.ClosingBalance
		if isNegative {
			abs = abs.Neg()
		}
		var err error
		if showOnDebit {
			line.Debit = abs
			tb.TotalDebits, err = tb.TotalDebits.Add(abs)
		} else {
			line.Credit = abs
			tb.TotalCredits, err = tb.TotalCredits.Add(abs)
		}
		if err != nil {
			return TrialBalance{}, err
		}

		subtotal := tb.CategorySubtotals[acct.Type]
		subtotal, err = subtotal.Add(b.ClosingBalance)
		if err != nil {
			return TrialBalance{}, err
		}
		tb.CategorySubtotals[acct.Type] = subtotal

		tb.Lines = append(tb.Lines, line)
	}

	assetSide, _ := tb.CategorySubtotals[AccountAsset].Add(tb.CategorySubtotals[AccountExpense])
	assetSide, _ = assetSide.Sub(tb.CategorySubtotals[AccountContraAsset])
	otherSide, _ := tb.CategorySubtotals[AccountLiability].Add(tb.CategorySubtotals[AccountEquity])
	otherSide, _ = otherSide.Add(tb.CategorySubtotals[AccountIncome])
	otherSide, _ = otherSide.Sub(tb.CategorySubtotals[AccountContraLiability])
	otherSide, _ = otherSide.Sub(tb.CategorySubtotals[AccountContraEquity])
	delta, _ := assetSide.Sub(otherSide)
	tb.IsEquationValid = delta.IsZero()

	return tb, nil
}

// ComparativeLine is one account's closing balance across a sequence
// of periods, plus the period-over-period deltas.
type ComparativeLine struct {
	AccountCode string  `json:"account_code"`
	Balances    []Money `json:"balances"`
	Deltas      []Money `json:"deltas"`
}

// ComparativeTrialBalance reports per-account closing balances and
// deltas across N sequential snapshots (spec §4.8 "Comparative TB").
func ComparativeTrialBalance(snapshots []BalanceSnapshot) ([]ComparativeLine, error) {
	if len(snapshots) == 0 {
		return nil, nil
	}
	order := make([]string, 0)
	seen := make(map[string]bool)
	byPeriodAccount := make([]map[string]Money, len(snapshots))

	for i, snap := range snapshots {
		m := make(map[string]Money)
		for _, b := range snap.Balances {
			m[b.AccountCode] = b.ClosingBalance
			if !seen[b.AccountCode] {
				seen[b.AccountCode] = true
				order = append(order, b.AccountCode)
			}
		}
		byPeriodAccount[i] = m
	}

	var out []ComparativeLine
	for _, code := range order {
		var cur Currency
		line := ComparativeLine{AccountCode: code}
		var prev *Money
		for i := range snapshots {
			m := byPeriodAccount[i]
			bal, ok := m[code]
			if !ok {
				bal = Zero(cur)
			} else {
				cur = bal.Currency
			}
			line.Balances = append(line.Balances, bal)
			if prev == nil {
				line.Deltas = append(line.Deltas, Zero(bal.Currency))
			} else {
				delta, err := bal.Sub(*prev)
				if err != nil {
					return nil, err
				}
				line.Deltas = append(line.Deltas, delta)
			}
			b := bal
			prev = &b
		}
		out = append(out, line)
	}
	return out, nil
}

// ConsolidatedTrialBalance sums trial-balance lines across companies
// at the account-code grain, including elimination entries posted in
// a synthetic consolidation company (spec §4.8 "Consolidated TB").
func ConsolidatedTrialBalance(companyTBs []TrialBalance, consolidationCompanyCode string, eliminations []EliminationEntry, accountNames map[string]string) (TrialBalance, error) {
	if len(companyTBs) == 0 {
		return TrialBalance{}, nil
	}
	cur := companyTBs[0].TotalDebits.Currency
	merged := make(map[string]*TrialBalanceLine)
	order := []string{}

	addAmount := func(code string, typ AccountType, debit, credit Money) error {
		line, ok := merged[code]
		if !ok {
			line = &TrialBalanceLine{AccountCode: code, AccountName: accountNames[code], Type: typ, Debit: Zero(cur), Credit: Zero(cur)}
			merged[code] = line
			order = append(order, code)
		}
		var err error
		line.Debit, err = line.Debit.Add(debit)
		if err != nil {
			return err
		}
		line.Credit, err = line.Credit.Add(credit)
		return err
	}

	for _, tb := range companyTBs {
		for _, l := range tb.Lines {
			if err := addAmount(l.AccountCode, l.Type, l.Debit, l.Credit); err != nil {
				return TrialBalance{}, err
			}
		}
	}

	for _, e := range eliminations {
		for _, l := range e.Lines {
			debit, credit := Zero(cur), Zero(cur)
			if l.Type == Debit {
				debit = l.Amount
			} else {
				credit = l.Amount
			}
			// Elimination entries don't carry an AccountType; infer
			// from whichever side already has the account registered,
			// defaulting to Asset for accounts seen only here.
			typ := AccountAsset
			if existing, ok := merged[l.AccountCode]; ok {
				typ = existing.Type
			}
			if err := addAmount(l.AccountCode, typ, debit, credit); err != nil {
				return TrialBalance{}, err
			}
		}
	}

	consolidated := TrialBalance{
		CompanyCode: consolidationCompanyCode,
		FiscalYear:  companyTBs[0].FiscalYear, FiscalPeriod: companyTBs[0].FiscalPeriod,
		CategorySubtotals: make(map[AccountType]Money),
		TotalDebits:       Zero(cur), TotalCredits: Zero(cur),
	}
	for _, typ := range allAccountTypes {
		consolidated.CategorySubtotals[typ] = Zero(cur)
	}
	for _, code := range order {
		l := *merged[code]
		var err error
		consolidated.TotalDebits, err = consolidated.TotalDebits.Add(l.Debit)
		if err != nil {
			return TrialBalance{}, err
		}
		consolidated.TotalCredits, err = consolidated.TotalCredits.Add(l.Credit)
		if err != nil {
			return TrialBalance{}, err
		}
		// net is signed so it is positive when the account's natural
		// (normal) side holds the balance, matching BuildTrialBalance's
		// CategorySubtotals convention.
		var net Money
		if l.Type.NormalSide() == Debit {
			net, err = l.Debit.Sub(l.Credit)
		} else {
			net, err = l.Credit.Sub(l.Debit)
		}
		if err != nil {
			return TrialBalance{}, err
		}
		sub, err := consolidated.CategorySubtotals[l.Type].Add(net)
		if err != nil {
			return TrialBalance{}, err
		}
		consolidated.CategorySubtotals[l.Type] = sub
		consolidated.Lines = append(consolidated.Lines, l)
	}

	assetSide, _ := consolidated.CategorySubtotals[AccountAsset].Add(consolidated.CategorySubtotals[AccountExpense])
	assetSide, _ = assetSide.Sub(consolidated.CategorySubtotals[AccountContraAsset])
	otherSide, _ := consolidated.CategorySubtotals[AccountLiability].Add(consolidated.CategorySubtotals[AccountEquity])
	otherSide, _ = otherSide.Add(consolidated.CategorySubtotals[AccountIncome])
	otherSide, _ = otherSide.Sub(consolidated.CategorySubtotals[AccountContraLiability])
	otherSide, _ = otherSide.Sub(consolidated.CategorySubtotals[AccountContraEquity])
	delta, _ := assetSide.Sub(otherSide)
	consolidated.IsEquationValid = delta.IsZero()

	return consolidated, nil
}
