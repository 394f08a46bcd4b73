package synthledger

import "time"

// pickDepartment draws a weighted pick from departments,
// falling back to the zero value (no cost/profit center attribution)
// when none are configured (spec §6 departments).
func pickDepartment(s *Stream, departments []DepartmentConfig) DepartmentConfig {
	if len(departments) == 0 {
		return DepartmentConfig{}
	}
	var total float64
	for _, d := range departments {
		total += d.Weight
	}
	if total <= 0 {
		return departments[s.IntN(len(departments))]
	}
	roll := s.Float64() * total
	for _, d := range departments {
		roll -= d.Weight
		if roll <= 0 {
			return d
		}
	}
	return departments[len(departments)-1]
}

// applyDepartment stamps every line of je with dept's cost/profit
// center, when one is configured.
func applyDepartment(je *JournalEntry, dept DepartmentConfig) {
	if dept.Code == "" {
		return
	}
	for i := range je.Lines {
		je.Lines[i].CostCenter = dept.Code
		je.Lines[i].ProfitCenter = dept.ProfitCenter
	}
}

// pickFraudType draws one FraudType from cfg's weighted distribution,
// falling back to FraudExpenseMisclassification when none is declared.
func pickFraudType(s *Stream, cfg FraudConfig) FraudType {
	if len(cfg.TypeDistribution) == 0 {
		return FraudExpenseMisclassification
	}
	var total float64
	for _, w := range cfg.TypeDistribution {
		total += w.Weight
	}
	if total <= 0 {
		return cfg.TypeDistribution[s.IntN(len(cfg.TypeDistribution))].Type
	}
	roll := s.Float64() * total
	for _, w := range cfg.TypeDistribution {
		roll -= w.Weight
		if roll <= 0 {
			return w.Type
		}
	}
	return cfg.TypeDistribution[len(cfg.TypeDistribution)-1].Type
}

// effectiveFraudRate applies ClusterNearPeriodEnd's bias: entries
// posted in the last three days of a fiscal period are markedly more
// likely to be labeled fraudulent than the base rate, mirroring the
// "period-end cutoff pressure" pattern real fraud schemes exploit
// (spec §6 fraud).
func effectiveFraudRate(cfg FraudConfig, cal FiscalCalendar, postingDate time.Time) float64 {
	if !cfg.Enabled || cfg.FraudRate <= 0 {
		return 0
	}
	if !cfg.ClusterNearPeriodEnd {
		return cfg.FraudRate
	}
	_, end := cal.PeriodBounds(cal.PeriodOf(postingDate))
	if end.Sub(postingDate) <= 3*24*time.Hour {
		return min64(cfg.FraudRate*4, 1)
	}
	return cfg.FraudRate / 4
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// maybeTagFraud labels je as fraudulent per cfg's rate and type mix.
// ApprovalBypassThreshold records, via an issue, that a fraudulent
// entry above the configured amount evaded the approval chain it
// should have triggered (spec §6 fraud, §6 approval).
func maybeTagFraud(s *Stream, cfg FraudConfig, cal FiscalCalendar, je *JournalEntry, issues *IssueLog) {
	rate := effectiveFraudRate(cfg, cal, je.PostingDate)
	if rate <= 0 || !s.Bool(rate) {
		return
	}
	je.IsFraud = true
	je.FraudType = pickFraudType(s, cfg)
	if !cfg.ApprovalBypassThreshold.IsZero() && issues != nil {
		if debitTotal(*je).Amount.Cmp(cfg.ApprovalBypassThreshold.Amount) >= 0 {
			issues.Record(ErrInvariantViolation, je.ID, "fraudulent entry of type %s bypassed approval above threshold", je.FraudType)
		}
	}
}

// debitTotal sums an entry's debit-side lines in their native currency,
// ignoring cross-currency mixing (only used for coarse threshold checks).
func debitTotal(je JournalEntry) Money {
	total := Zero(Currency(""))
	for _, l := range je.Lines {
		if l.Type != Debit {
			continue
		}
		if total.Currency == "" {
			total = Zero(l.Amount.Currency)
		}
		total, _ = total.Add(l.Amount)
	}
	return total
}

// RequiredApprovalLevel returns the highest-amount threshold amount
// is at or above, or "" if amount clears every threshold (spec §6
// approval).
func RequiredApprovalLevel(cfg ApprovalConfig, amount Money) string {
	if !cfg.Enabled {
		return ""
	}
	level := ""
	for _, th := range cfg.Thresholds {
		if amount.Amount.Cmp(th.Amount.Amount) >= 0 {
			level = th.Level
		}
	}
	return level
}

// ExceedsSingleApproverLimit reports whether amount requires a second
// approver under cfg's segregation-of-duties rule (spec §6
// internal_controls).
func ExceedsSingleApproverLimit(cfg InternalControlsConfig, amount Money) bool {
	if !cfg.SegregationOfDutiesEnabled || cfg.MaxSingleApproverAmount.IsZero() {
		return false
	}
	return amount.Amount.Cmp(cfg.MaxSingleApproverAmount.Amount) > 0
}
