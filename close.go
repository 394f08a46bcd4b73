package synthledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// CloseTaskStatus is the outcome of running one close task.
type CloseTaskStatus string

const (
	TaskPending               CloseTaskStatus = "PENDING"
	TaskInProgress            CloseTaskStatus = "IN_PROGRESS"
	TaskCompleted             CloseTaskStatus = "COMPLETED"
	TaskCompletedWithWarnings CloseTaskStatus = "COMPLETED_WITH_WARNINGS"
	TaskFailed                CloseTaskStatus = "FAILED"
	TaskSkipped               CloseTaskStatus = "SKIPPED"
)

// CloseTaskResult records one close task's outcome.
type CloseTaskResult struct {
	Name          string
	Status        CloseTaskStatus
	EntriesCreated []JournalEntry
	TotalAmount   Money
	Notes         string
}

// CloseTaskName enumerates the canonical ordered close schedule
// (spec §4.6).
type CloseTaskName string

const (
	TaskRunDepreciation            CloseTaskName = "RunDepreciation"
	TaskPostInventoryRevaluation   CloseTaskName = "PostInventoryRevaluation"
	TaskPostAccruedExpenses        CloseTaskName = "PostAccruedExpenses"
	TaskPostAccruedRevenue         CloseTaskName = "PostAccruedRevenue"
	TaskPostPrepaidAmortization    CloseTaskName = "PostPrepaidAmortization"
	TaskRevalueForeignCurrency     CloseTaskName = "RevalueForeignCurrency"
	TaskReconcileToGL              CloseTaskName = "ReconcileToGL"
	TaskPostIntercompanySettlements CloseTaskName = "PostIntercompanySettlements"
	TaskAllocateCorporateOverhead  CloseTaskName = "AllocateCorporateOverhead"
	TaskTranslateForeignSubsidiaries CloseTaskName = "TranslateForeignSubsidiaries"
	TaskEliminateIntercompany      CloseTaskName = "EliminateIntercompany"
	TaskGenerateTrialBalance       CloseTaskName = "GenerateTrialBalance"
	// Year-end-only tasks, appended after the monthly schedule.
	TaskCalculateTaxProvision          CloseTaskName = "CalculateTaxProvision"
	TaskCloseIncomeStatement           CloseTaskName = "CloseIncomeStatement"
	TaskPostRetainedEarningsRollforward CloseTaskName = "PostRetainedEarningsRollforward"
	TaskGenerateFinancialStatements    CloseTaskName = "GenerateFinancialStatements"
)

// MonthlyCloseSchedule returns the canonical ordered monthly task list.
func MonthlyCloseSchedule() []CloseTaskName {
	return []CloseTaskName{
		TaskRunDepreciation, TaskPostInventoryRevaluation, TaskPostAccruedExpenses,
		TaskPostAccruedRevenue, TaskPostPrepaidAmortization, TaskRevalueForeignCurrency,
		TaskReconcileToGL, TaskPostIntercompanySettlements, TaskAllocateCorporateOverhead,
		TaskTranslateForeignSubsidiaries, TaskEliminateIntercompany, TaskGenerateTrialBalance,
	}
}

// YearEndCloseSchedule appends the year-end-only tasks to the monthly
// schedule.
func YearEndCloseSchedule() []CloseTaskName {
	return append(MonthlyCloseSchedule(),
		TaskCalculateTaxProvision, TaskCloseIncomeStatement,
		TaskPostRetainedEarningsRollforward, TaskGenerateFinancialStatements)
}

// CloseRunStatus summarizes a whole close run.
type CloseRunStatus string

const (
	CloseCompleted           CloseRunStatus = "COMPLETED"
	CloseCompletedWithErrors CloseRunStatus = "COMPLETED_WITH_ERRORS"
)

// CloseRunResult is the outcome of orchestrating an entire close.
type CloseRunResult struct {
	CompanyCode string
	Period      FiscalPeriodID
	Tasks       []CloseTaskResult
	Status      CloseRunStatus
}

// CloseOrchestrator runs the period-close task schedule against a
// company's master data and balance tracker (spec §4.6).
type CloseOrchestrator struct {
	IDs     *IDAllocator
	Cal     FiscalCalendar
	Tracker *BalanceTracker
	Issues  *IssueLog

	// AccruedExpenseRate and AccruedRevenueRate are the fraction of a
	// period's operating-expense/sales-revenue activity posted as an
	// auto-reversing accrual (spec §4.6 "accrual estimation"). Zero
	// disables the corresponding task.
	AccruedExpenseRate decimal.Decimal
	AccruedRevenueRate decimal.Decimal

	// TaxRate is the effective rate ComputeTaxProvision applies to a
	// company's period net income at year-end close. Zero disables the
	// CalculateTaxProvision task.
	TaxRate decimal.Decimal
}

// RunMonthlyClose executes MonthlyCloseSchedule() for companyCode at
// asOf, depreciating every asset the pool still carries active.
func (o *CloseOrchestrator) RunMonthlyClose(companyCode string, asOf time.Time, assets []*FixedAsset, isYearEnd bool, retainedEarningsAccount string) CloseRunResult {
	period := o.Cal.PeriodOf(asOf)
	result := CloseRunResult{CompanyCode: companyCode, Period: period, Status: CloseCompleted}

	schedule := MonthlyCloseSchedule()
	if isYearEnd {
		schedule = YearEndCloseSchedule()
	}

	for _, task := range schedule {
		var r CloseTaskResult
		switch task {
		case TaskRunDepreciation:
			r = o.runDepreciation(companyCode, asOf, assets)
		case TaskPostAccruedExpenses:
			r = o.postAccrual(companyCode, asOf, period, TaskPostAccruedExpenses, o.AccruedExpenseRate, AcctOperatingExpenses, false)
		case TaskPostAccruedRevenue:
			r = o.postAccrual(companyCode, asOf, period, TaskPostAccruedRevenue, o.AccruedRevenueRate, AcctSalesRevenue, true)
		case TaskCalculateTaxProvision:
			r = o.calculateTaxProvision(companyCode, asOf, period)
		case TaskCloseIncomeStatement:
			r = o.closeIncomeStatement(companyCode, asOf, period, retainedEarningsAccount)
		case TaskPostRetainedEarningsRollforward:
			r = CloseTaskResult{Name: string(task), Status: TaskCompleted, Notes: "retained earnings already updated by CloseIncomeStatement; opening balances for next period are carried by the caller's BalanceTracker.Rollforward after this close run returns"}
		default:
			// Tasks without a concrete sub-algorithm in this generator
			// (inventory revaluation, FX translation, etc.) are recorded
			// as skipped rather than silently omitted.
			r = CloseTaskResult{Name: string(task), Status: TaskSkipped, Notes: "no-op in this configuration"}
		}
		if r.Status == TaskFailed {
			result.Status = CloseCompletedWithErrors
		}
		for _, je := range r.EntriesCreated {
			if err := o.Tracker.Apply(je); err != nil && o.Issues != nil {
				o.Issues.Record(ErrInvariantViolation, je.ID, "%v", err)
			}
		}
		result.Tasks = append(result.Tasks, r)
	}
	return result
}

func (o *CloseOrchestrator) runDepreciation(companyCode string, asOf time.Time, assets []*FixedAsset) CloseTaskResult {
	cur := Currency("USD")
	total := Zero(cur)
	var entries []JournalEntry
	for _, a := range assets {
		if a.CompanyCode != companyCode {
			continue
		}
		cur = a.AcquisitionCost.Currency
		amount := CalculateMonthlyDepreciation(*a, asOf)
		if amount.IsZero() {
			continue
		}
		je, err := ProjectDepreciationEntry(o.IDs, o.Cal, companyCode, asOf, amount)
		if err != nil {
			if o.Issues != nil {
				o.Issues.Record(ErrInvariantViolation, a.AssetID, "%v", err)
			}
			continue
		}
		entries = append(entries, je)
		a.AccumulatedDepreciation, _ = a.AccumulatedDepreciation.Add(amount)
		if a.IsFullyDepreciated() {
			a.Status = AssetFullyDepreciated
		}
		total, _ = total.Add(amount)
	}
	return CloseTaskResult{Name: string(TaskRunDepreciation), Status: TaskCompleted, EntriesCreated: entries, TotalAmount: total}
}

// postAccrual estimates an accrual amount as a configured fraction of
// baseAccount's period activity (debits for expense accruals, credits
// for revenue accruals) and posts it via PostAccrual, auto-reversing
// at the start of the next period.
func (o *CloseOrchestrator) postAccrual(companyCode string, asOf time.Time, period FiscalPeriodID, task CloseTaskName, rate decimal.Decimal, baseAccount AccountCode, isRevenue bool) CloseTaskResult {
	if rate.IsZero() {
		return CloseTaskResult{Name: string(task), Status: TaskSkipped, Notes: "accrual rate not configured"}
	}
	snap := o.Tracker.Snapshot(companyCode, period.FiscalYear, period.Period, asOf)
	var base Money
	found := false
	for _, b := range snap.Balances {
		if b.AccountCode == baseAccount {
			if isRevenue {
				base = b.PeriodCredits
			} else {
				base = b.PeriodDebits
			}
			found = true
			break
		}
	}
	if !found || base.IsZero() {
		return CloseTaskResult{Name: string(task), Status: TaskCompleted, Notes: "no activity to accrue against this period"}
	}
	amount := base.Mul(rate)
	if amount.IsZero() {
		return CloseTaskResult{Name: string(task), Status: TaskCompleted}
	}
	entries, err := PostAccrual(o.IDs, o.Cal, asOf, AccrualSchedule{
		CompanyCode: companyCode, Amount: amount, IsRevenue: isRevenue, AutoReverse: true,
	})
	if err != nil {
		if o.Issues != nil {
			o.Issues.Record(ErrInvariantViolation, companyCode, "%v", err)
		}
		return CloseTaskResult{Name: string(task), Status: TaskFailed, Notes: err.Error()}
	}
	return CloseTaskResult{Name: string(task), Status: TaskCompleted, EntriesCreated: entries, TotalAmount: amount}
}

// CalculateMonthlyDepreciation computes the depreciation amount due for
// asset a in the month containing asOf, grounded verbatim on the
// original implementation's per-method formulas including the
// cap-at-salvage rule.
func CalculateMonthlyDepreciation(a FixedAsset, asOf time.Time) Money {
	if !a.Class.IsDepreciable() || a.Status == AssetDisposed || a.UsefulLifeMonths == 0 {
		return Zero(a.AcquisitionCost.Currency)
	}
	nbv := a.NetBookValue()
	if cmp, _ := nbv.Cmp(a.SalvageValue); cmp <= 0 {
		return Zero(a.AcquisitionCost.Currency)
	}
	monthsElapsed := a.MonthsSinceCapitalization(asOf)
	depreciableBase, _ := a.AcquisitionCost.Sub(a.SalvageValue)
	capRoom, _ := nbv.Sub(a.SalvageValue)

	cap := func(m Money) Money {
		if cmp, _ := m.Cmp(capRoom); cmp > 0 {
			return capRoom
		}
		return m
	}

	switch a.DepreciationMethod {
	case DepStraightLine, DepUnitsOfProduction:
		monthly := depreciableBase.Mul(decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(a.UsefulLifeMonths))))
		return cap(monthly)

	case DepDoubleDecliningBalance, DepMACRS:
		annualRate := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(a.UsefulLifeMonths))).Mul(decimal.NewFromInt(12))
		monthlyRate := annualRate.Div(decimal.NewFromInt(12))
		return cap(nbv.Mul(monthlyRate))

	case DepSumOfYearsDigits:
		yearsTotal := a.UsefulLifeMonths / 12
		if yearsTotal == 0 {
			return Zero(a.AcquisitionCost.Currency)
		}
		sumOfYears := yearsTotal * (yearsTotal + 1) / 2
		currentYear := monthsElapsed/12 + 1
		remainingYears := yearsTotal - currentYear + 1
		if remainingYears < 0 {
			remainingYears = 0
		}
		if sumOfYears == 0 || remainingYears == 0 {
			return Zero(a.AcquisitionCost.Currency)
		}
		yearFraction := decimal.NewFromInt(int64(remainingYears)).Div(decimal.NewFromInt(int64(sumOfYears)))
		annual := depreciableBase.Mul(yearFraction)
		monthly := annual.Mul(decimal.NewFromInt(1).Div(decimal.NewFromInt(12)))
		return cap(monthly)

	case DepImmediateExpense:
		if monthsElapsed == 0 {
			return depreciableBase
		}
		return Zero(a.AcquisitionCost.Currency)

	default: // DepNone
		return Zero(a.AcquisitionCost.Currency)
	}
}

// TaxProvisionInput holds the figures needed for the tax-provision
// computation (spec §4.6).
type TaxProvisionInput struct {
	PretaxIncome    Money
	PermanentDiffs  Money
	TemporaryDiffs  Money
	TaxRate         decimal.Decimal
	Credits         Money
	PriorYearAdjustment Money
}

// TaxProvisionResult is the computed provision.
type TaxProvisionResult struct {
	TaxableIncome Money
	CurrentTax    Money
	DeferredTax   Money
	Total         Money
	EffectiveRate decimal.Decimal
}

// ComputeTaxProvision implements spec §4.6's formula:
//
//	taxable_income = pretax + permanent_diffs
//	current_tax    = taxable * rate
//	deferred_tax   = temp_diffs * rate
//	total          = current + deferred - credits + prior_year_adj
//	effective_rate = total / pretax
func ComputeTaxProvision(in TaxProvisionInput) (TaxProvisionResult, error) {
	taxable, err := in.PretaxIncome.Add(in.PermanentDiffs)
	if err != nil {
		return TaxProvisionResult{}, err
	}
	current := taxable.Mul(in.TaxRate)
	deferred := in.TemporaryDiffs.Mul(in.TaxRate)
	total, err := current.Add(deferred)
	if err != nil {
		return TaxProvisionResult{}, err
	}
	total, err = total.Sub(in.Credits)
	if err != nil {
		return TaxProvisionResult{}, err
	}
	total, err = total.Add(in.PriorYearAdjustment)
	if err != nil {
		return TaxProvisionResult{}, err
	}
	var effRate decimal.Decimal
	if !in.PretaxIncome.IsZero() {
		effRate = total.Amount.Div(in.PretaxIncome.Amount)
	}
	return TaxProvisionResult{TaxableIncome: taxable, CurrentTax: current, DeferredTax: deferred, Total: total, EffectiveRate: effRate}, nil
}

func (o *CloseOrchestrator) calculateTaxProvision(companyCode string, asOf time.Time, period FiscalPeriodID) CloseTaskResult {
	if o.TaxRate.IsZero() {
		return CloseTaskResult{Name: string(TaskCalculateTaxProvision), Status: TaskSkipped, Notes: "tax rate not configured"}
	}
	pretax := o.Tracker.NetIncome(companyCode, period.FiscalYear, period.Period)
	provision, err := ComputeTaxProvision(TaxProvisionInput{PretaxIncome: pretax, TaxRate: o.TaxRate})
	if err != nil {
		if o.Issues != nil {
			o.Issues.Record(ErrInvariantViolation, companyCode, "%v", err)
		}
		return CloseTaskResult{Name: string(TaskCalculateTaxProvision), Status: TaskFailed, Notes: err.Error()}
	}
	je, err := ProjectTaxProvisionEntry(o.IDs, o.Cal, companyCode, asOf, provision.Total)
	if err != nil {
		if o.Issues != nil {
			o.Issues.Record(ErrInvariantViolation, companyCode, "%v", err)
		}
		return CloseTaskResult{Name: string(TaskCalculateTaxProvision), Status: TaskFailed, Notes: err.Error()}
	}
	var entries []JournalEntry
	if je.ID != "" {
		entries = append(entries, je)
	}
	return CloseTaskResult{Name: string(TaskCalculateTaxProvision), Status: TaskCompleted, EntriesCreated: entries, TotalAmount: provision.Total}
}

// closeIncomeStatement zeroes the period's revenue/expense accounts and
// posts net income to retainedEarningsAccount (spec §4.6, testable
// scenario S4). It is a year-end-only task: RunMonthlyClose only adds
// it to the schedule when isYearEnd is set.
func (o *CloseOrchestrator) closeIncomeStatement(companyCode string, asOf time.Time, period FiscalPeriodID, retainedEarningsAccount string) CloseTaskResult {
	lines := o.Tracker.IncomeStatementBalances(companyCode, period.FiscalYear, period.Period)
	if len(lines) == 0 {
		return CloseTaskResult{Name: string(TaskCloseIncomeStatement), Status: TaskSkipped, Notes: "no income-statement activity to close"}
	}
	netIncome := o.Tracker.NetIncome(companyCode, period.FiscalYear, period.Period)
	je, err := ProjectIncomeStatementCloseEntry(o.IDs, o.Cal, companyCode, asOf, retainedEarningsAccount, lines, netIncome)
	if err != nil {
		if o.Issues != nil {
			o.Issues.Record(ErrInvariantViolation, companyCode, "%v", err)
		}
		return CloseTaskResult{Name: string(TaskCloseIncomeStatement), Status: TaskFailed, Notes: err.Error()}
	}
	var entries []JournalEntry
	if je.ID != "" {
		entries = append(entries, je)
	}
	return CloseTaskResult{Name: string(TaskCloseIncomeStatement), Status: TaskCompleted, EntriesCreated: entries, TotalAmount: netIncome, Notes: "revenue/expense zeroed; net income posted to " + retainedEarningsAccount}
}

// AccrualSchedule represents a recurring accrual that auto-reverses on
// the first day of the following period when AutoReverse is set (spec
// §4.6), grounded on the teacher's RecognitionSchedule
// (accounting.go) generalized from a fixed-occurrence schedule to a
// single auto-reversing posting.
type AccrualSchedule struct {
	CompanyCode string
	Amount      Money
	IsRevenue   bool
	AutoReverse bool
}

// PostAccrual posts an accrual entry for asOf and, if AutoReverse is
// set, a reversing entry dated the first day of the next fiscal
// period.
func PostAccrual(ids *IDAllocator, cal FiscalCalendar, asOf time.Time, sched AccrualSchedule) ([]JournalEntry, error) {
	entry, err := ProjectAccrualEntry(ids, cal, sched.CompanyCode, asOf, sched.Amount, sched.IsRevenue)
	if err != nil {
		return nil, err
	}
	entries := []JournalEntry{entry}
	if sched.AutoReverse {
		period := cal.PeriodOf(asOf)
		nextStart, _ := cal.PeriodBounds(cal.NextPeriod(period))
		entries = append(entries, ReverseEntry(ids, entry, nextStart, cal))
	}
	return entries, nil
}
