package synthledger

import "time"

// Standard account codes used by the canonical projection table
// (spec §4.4), seeded by standardChartOfAccounts in masterdata.go.
const (
	AcctCash                AccountCode = "100000"
	AcctAR                  AccountCode = "110000"
	AcctInventory           AccountCode = "120000"
	AcctFixedAssets         AccountCode = "160000"
	AcctAccumDepreciation   AccountCode = "169000"
	AcctAP                  AccountCode = "200000"
	AcctAccruedLiabilities  AccountCode = "210000"
	AcctTaxesPayable        AccountCode = "220000"
	AcctDeferredRevenue     AccountCode = "230000"
	AcctSalesRevenue        AccountCode = "400000"
	AcctCOGS               AccountCode = "500000"
	AcctOperatingExpenses   AccountCode = "600000"
	AcctBadDebtExpense      AccountCode = "610000"
	AcctAccruedExpense      AccountCode = "620000"
	AcctDepreciationExpense AccountCode = "640000"
	AcctGainOnDisposal      AccountCode = "810000"
	AcctLossOnDisposal      AccountCode = "840000"
	AcctIncomeTaxExpense    AccountCode = "800000" // Income Tax Provision
	AcctDiscountIncome      AccountCode = "420000" // early-payment discounts earned on AP
	AcctDiscountExpense     AccountCode = "630000" // early-payment discounts given on AR
	AcctGRIRClearing        AccountCode = "205000"
)

// AccountCode is a chart-of-accounts account code.
type AccountCode = string

// ProjectJournalEntry projects a posted document into exactly one
// balanced journal entry, per the canonical table in spec §4.4. The
// fiscal year/period is derived from the company's fiscal calendar.
func ProjectJournalEntry(ids *IDAllocator, cal FiscalCalendar, d Document) (JournalEntry, error) {
	period := cal.PeriodOf(d.DocumentDate)
	lines, desc, err := projectLines(d)
	if err != nil {
		return JournalEntry{}, err
	}
	je := JournalEntry{
		ID:            ids.Next(PrefixJournalEntry, d.CompanyCode),
		CompanyCode:   d.CompanyCode,
		PostingDate:   d.DocumentDate,
		FiscalYear:    period.FiscalYear,
		FiscalPeriod:  period.Period,
		Source:        SourceAutomated,
		Process:       processOf(d.Type),
		SourceDocType: d.Type,
		SourceDocID:   d.ID,
		Lines:         lines,
		Description:   desc,
		CreatedAt:     d.DocumentDate,
	}
	if !je.Balanced() {
		return JournalEntry{}, NewError(ErrInvariantViolation, "unbalanced journal entry for document %s (%s)", d.ID, d.Type)
	}
	return je, nil
}

// processOf maps a source document type to the business process it
// belongs to, for JournalEntry.Process tagging.
func processOf(t DocumentType) BusinessProcess {
	switch t {
	case DocPurchaseOrder, DocGoodsReceipt, DocVendorInvoice, DocPayment:
		return ProcessP2P
	case DocSalesOrder, DocDelivery, DocCustomerInvoice, DocReceipt:
		return ProcessO2C
	default:
		return ""
	}
}

func projectLines(d Document) ([]JournalLine, string, error) {
	switch d.Type {
	case DocVendorInvoice:
		return projectVendorInvoice(d)
	case DocPayment:
		return projectVendorPayment(d)
	case DocCustomerInvoice:
		return projectCustomerInvoice(d)
	case DocReceipt:
		return projectCustomerReceipt(d)
	case DocGoodsReceipt:
		return projectGoodsReceipt(d)
	default:
		return nil, "", NewError(ErrConfig, "document type %s does not project to a journal entry", d.Type)
	}
}

func projectVendorInvoice(d Document) ([]JournalLine, string, error) {
	var lines []JournalLine
	totalTax := Zero(d.Currency)
	totalGross := Zero(d.Currency)
	for _, l := range d.Lines {
		net := l.LineTotal()
		lines = append(lines, JournalLine{LineNo: l.LineNo, AccountCode: AcctInventory, Type: Debit, Amount: net})
		totalGross, _ = totalGross.Add(net)
		if !l.TaxAmount.IsZero() {
			lines = append(lines, JournalLine{AccountCode: AcctTaxesPayable, Type: Debit, Amount: l.TaxAmount})
			totalTax, _ = totalTax.Add(l.TaxAmount)
		}
	}
	total, _ := totalGross.Add(totalTax)
	lines = append(lines, JournalLine{AccountCode: AcctAP, Type: Credit, Amount: total})
	return lines, "Vendor invoice " + d.ID, nil
}

func projectVendorPayment(d Document) ([]JournalLine, string, error) {
	if len(d.Lines) == 0 {
		return nil, "", NewError(ErrConfig, "payment document %s has no lines", d.ID)
	}
	gross := d.Lines[0].UnitPrice
	net, err := gross.Sub(d.DiscountTaken)
	if err != nil {
		return nil, "", err
	}
	lines := []JournalLine{
		{AccountCode: AcctAP, Type: Debit, Amount: gross},
		{AccountCode: AcctCash, Type: Credit, Amount: net},
	}
	if !d.DiscountTaken.IsZero() {
		lines = append(lines, JournalLine{AccountCode: AcctDiscountIncome, Type: Credit, Amount: d.DiscountTaken})
	}
	return lines, "Vendor payment " + d.ID, nil
}

func projectCustomerInvoice(d Document) ([]JournalLine, string, error) {
	var lines []JournalLine
	totalTax := Zero(d.Currency)
	totalNet := Zero(d.Currency)
	for _, l := range d.Lines {
		net := l.LineTotal()
		lines = append(lines, JournalLine{LineNo: l.LineNo, AccountCode: AcctSalesRevenue, Type: Credit, Amount: net})
		totalNet, _ = totalNet.Add(net)
		if !l.TaxAmount.IsZero() {
			lines = append(lines, JournalLine{AccountCode: AcctTaxesPayable, Type: Credit, Amount: l.TaxAmount})
			totalTax, _ = totalTax.Add(l.TaxAmount)
		}
	}
	total, _ := totalNet.Add(totalTax)
	lines = append(lines, JournalLine{AccountCode: AcctAR, Type: Debit, Amount: total})
	return lines, "Customer invoice " + d.ID, nil
}

func projectCustomerReceipt(d Document) ([]JournalLine, string, error) {
	if len(d.Lines) == 0 {
		return nil, "", NewError(ErrConfig, "receipt document %s has no lines", d.ID)
	}
	gross := d.Lines[0].UnitPrice
	net, err := gross.Sub(d.DiscountTaken)
	if err != nil {
		return nil, "", err
	}
	lines := []JournalLine{
		{AccountCode: AcctCash, Type: Debit, Amount: net},
		{AccountCode: AcctAR, Type: Credit, Amount: gross},
	}
	if !d.DiscountTaken.IsZero() {
		lines = append(lines, JournalLine{AccountCode: AcctDiscountExpense, Type: Debit, Amount: d.DiscountTaken})
	}
	return lines, "Customer receipt " + d.ID, nil
}

func projectGoodsReceipt(d Document) ([]JournalLine, string, error) {
	total := Zero(d.Currency)
	for _, l := range d.Lines {
		var err error
		total, err = total.Add(l.LineTotal())
		if err != nil {
			return nil, "", err
		}
	}
	lines := []JournalLine{
		{AccountCode: AcctInventory, Type: Debit, Amount: total},
		{AccountCode: AcctGRIRClearing, Type: Credit, Amount: total},
	}
	return lines, "Goods receipt " + d.ID, nil
}

// ProjectDepreciationEntry projects one month of depreciation for an
// asset into a balanced journal entry (spec §4.4 row "Depreciation").
func ProjectDepreciationEntry(ids *IDAllocator, cal FiscalCalendar, companyCode string, asOf time.Time, amount Money) (JournalEntry, error) {
	if amount.IsZero() {
		return JournalEntry{}, nil
	}
	period := cal.PeriodOf(asOf)
	je := JournalEntry{
		ID:           ids.Next(PrefixJournalEntry, companyCode),
		CompanyCode:  companyCode,
		PostingDate:  asOf,
		FiscalYear:   period.FiscalYear,
		FiscalPeriod: period.Period,
		Lines: []JournalLine{
			{AccountCode: AcctDepreciationExpense, Type: Debit, Amount: amount},
			{AccountCode: AcctAccumDepreciation, Type: Credit, Amount: amount},
		},
		Description: "Monthly depreciation",
		CreatedAt:   asOf,
	}
	if !je.Balanced() {
		return JournalEntry{}, NewError(ErrInvariantViolation, "unbalanced depreciation entry for company %s", companyCode)
	}
	return je, nil
}

// ProjectAccrualEntry projects an accrued-expense or deferred-revenue
// entry (spec §4.4 row "Accrual").
func ProjectAccrualEntry(ids *IDAllocator, cal FiscalCalendar, companyCode string, asOf time.Time, amount Money, isRevenue bool) (JournalEntry, error) {
	period := cal.PeriodOf(asOf)
	var lines []JournalLine
	if isRevenue {
		lines = []JournalLine{
			{AccountCode: AcctAR, Type: Debit, Amount: amount},
			{AccountCode: AcctDeferredRevenue, Type: Credit, Amount: amount},
		}
	} else {
		lines = []JournalLine{
			{AccountCode: AcctAccruedExpense, Type: Debit, Amount: amount},
			{AccountCode: AcctAccruedLiabilities, Type: Credit, Amount: amount},
		}
	}
	je := JournalEntry{
		ID: ids.Next(PrefixJournalEntry, companyCode), CompanyCode: companyCode,
		PostingDate: asOf, FiscalYear: period.FiscalYear, FiscalPeriod: period.Period,
		Lines: lines, Description: "Period accrual", CreatedAt: asOf,
	}
	if !je.Balanced() {
		return JournalEntry{}, NewError(ErrInvariantViolation, "unbalanced accrual entry for company %s", companyCode)
	}
	return je, nil
}

// ProjectTaxProvisionEntry posts a computed tax provision to the
// income tax expense and taxes payable accounts (spec §4.6 row "Tax
// provision").
func ProjectTaxProvisionEntry(ids *IDAllocator, cal FiscalCalendar, companyCode string, asOf time.Time, total Money) (JournalEntry, error) {
	if total.IsZero() {
		return JournalEntry{}, nil
	}
	period := cal.PeriodOf(asOf)
	je := JournalEntry{
		ID: ids.Next(PrefixJournalEntry, companyCode), CompanyCode: companyCode,
		PostingDate: asOf, FiscalYear: period.FiscalYear, FiscalPeriod: period.Period,
		Source: SourceAutomated, Process: ProcessPeriodClose,
		Lines: []JournalLine{
			{AccountCode: AcctIncomeTaxExpense, Type: Debit, Amount: total},
			{AccountCode: AcctTaxesPayable, Type: Credit, Amount: total},
		},
		Description: "Tax provision", CreatedAt: asOf,
	}
	if !je.Balanced() {
		return JournalEntry{}, NewError(ErrInvariantViolation, "unbalanced tax provision entry for company %s", companyCode)
	}
	return je, nil
}

// ProjectIncomeStatementCloseEntry zeroes every income and expense
// account's closing balance for the period and posts the net result to
// retainedEarningsAccount (spec §4.6 "CloseIncomeStatement", testable
// scenario S4). Returns a zero JournalEntry if there is nothing to close.
func ProjectIncomeStatementCloseEntry(ids *IDAllocator, cal FiscalCalendar, companyCode string, asOf time.Time, retainedEarningsAccount AccountCode, lines []IncomeStatementLine, netIncome Money) (JournalEntry, error) {
	var entryLines []JournalLine
	for _, l := range lines {
		if l.Closing.IsZero() {
			continue
		}
		amount := l.Closing
		side := Debit
		if l.Type == AccountExpense {
			side = Credit
		}
		if amount.IsNegative() {
			amount = amount.Neg()
			if side == Debit {
				side = Credit
			} else {
				side = Debit
			}
		}
		entryLines = append(entryLines, JournalLine{AccountCode: l.AccountCode, Type: side, Amount: amount})
	}
	if len(entryLines) == 0 {
		return JournalEntry{}, nil
	}
	if !netIncome.IsZero() {
		side := Credit
		amount := netIncome
		if amount.IsNegative() {
			amount = amount.Neg()
			side = Debit
		}
		entryLines = append(entryLines, JournalLine{AccountCode: retainedEarningsAccount, Type: side, Amount: amount})
	}
	period := cal.PeriodOf(asOf)
	je := JournalEntry{
		ID: ids.Next(PrefixJournalEntry, companyCode), CompanyCode: companyCode,
		PostingDate: asOf, FiscalYear: period.FiscalYear, FiscalPeriod: period.Period,
		Source: SourceAutomated, Process: ProcessPeriodClose,
		Lines: entryLines, Description: "Year-end close of income statement", CreatedAt: asOf,
	}
	if !je.Balanced() {
		return JournalEntry{}, NewError(ErrInvariantViolation, "unbalanced income-statement close entry for company %s", companyCode)
	}
	return je, nil
}

// ReverseEntry produces the exact sign-reversed counterpart of je,
// used both for credit memos and auto-reversing accruals.
func ReverseEntry(ids *IDAllocator, je JournalEntry, postingDate time.Time, cal FiscalCalendar) JournalEntry {
	period := cal.PeriodOf(postingDate)
	reversed := make([]JournalLine, len(je.Lines))
	for i, l := range je.Lines {
		flip := Credit
		if l.Type == Credit {
			flip = Debit
		}
		reversed[i] = JournalLine{
			LineNo: l.LineNo, AccountCode: l.AccountCode, Type: flip, Amount: l.Amount,
			CostCenter: l.CostCenter, ProfitCenter: l.ProfitCenter, PartnerCompany: l.PartnerCompany,
		}
	}
	return JournalEntry{
		ID: ids.Next(PrefixJournalEntry, je.CompanyCode), CompanyCode: je.CompanyCode,
		PostingDate: postingDate, FiscalYear: period.FiscalYear, FiscalPeriod: period.Period,
		SourceDocType: je.SourceDocType, SourceDocID: je.SourceDocID,
		Lines: reversed, Description: "Reversal of " + je.ID, CreatedAt: postingDate,
	}
}
