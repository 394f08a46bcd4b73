package synthledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the top-level facade over the L0-L9 generation pipeline:
// construct master data, simulate document flows per company, project
// and apply journal entries, run period close and consolidation, and
// optionally extract a privacy-preserving fingerprint of the result.
type Engine struct {
	log     *zap.Logger
	cfg     GeneratorConfig
	ids     *IDAllocator
	root    *Stream
	pool    *MasterDataPool
	tracker *BalanceTracker
	issues  *IssueLog
	storage *Storage
}

// RunResult is everything one generation run produces.
type RunResult struct {
	// RunID uniquely identifies this generation run across companies
	// and repeated invocations, for correlating logs, persisted
	// entities, and fingerprint manifests back to the run that
	// produced them.
	RunID          string
	MasterData     *MasterDataPool
	JournalEntries []JournalEntry
	BalanceSnapshots []BalanceSnapshot
	CloseRuns      []CloseRunResult
	TrialBalances  []TrialBalance
	Consolidated   *TrialBalance
	EliminationJournal *ConsolidationJournal
	IntercompanyTransfers []IntercompanyTransfer
	IntercompanyBalances  []IntercompanyBalance
	Fingerprints   map[string]Fingerprint
	Issues         []RecordedIssue
}

// NewEngine validates cfg and wires an Engine ready to Run. storage
// may be nil, in which case Run does not persist anything (useful for
// tests and one-shot in-memory invocations).
func NewEngine(log *zap.Logger, cfg GeneratorConfig, storage *Storage) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Global.HasSeed {
		return nil, NewError(ErrConfig, "a deterministic seed is required")
	}

	accounts := make([]Account, 0)
	pool := NewMasterDataPool()

	return &Engine{
		log:     log,
		cfg:     cfg,
		ids:     NewIDAllocator(),
		root:    NewRootStream(cfg.Global.Seed),
		pool:    pool,
		tracker: NewBalanceTracker(accounts),
		issues:  &IssueLog{},
		storage: storage,
	}, nil
}

// Run executes one full generation pass: master data, document flows,
// journal projection, period close, consolidation, and reporting. It
// is deterministic for a fixed GeneratorConfig.Global.Seed.
func (e *Engine) Run(ctx context.Context) (RunResult, error) {
	runID := uuid.New().String()
	e.log.Info("generation run starting",
		zap.String("run_id", runID),
		zap.Uint64("seed", e.cfg.Global.Seed),
		zap.Int("companies", len(e.cfg.Companies)),
		zap.Time("start_date", e.cfg.Global.StartDate))

	if err := e.buildMasterData(); err != nil {
		return RunResult{}, fmt.Errorf("master data: %w", err)
	}

	partitions, err := e.simulateDocumentFlows(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("document flows: %w", err)
	}

	// BalanceTracker needs the full chart of accounts before journal
	// entries can be applied; rebuild it now that the pool is populated.
	e.tracker = NewBalanceTracker(e.pool.AllAccounts())

	var allEntries []JournalEntry
	for _, p := range partitions {
		for _, je := range p.entries {
			if err := e.tracker.Apply(je); err != nil {
				return RunResult{}, fmt.Errorf("apply journal entry %s: %w", je.ID, err)
			}
			allEntries = append(allEntries, je)
			if e.storage != nil {
				if err := e.storage.SaveJournalEntry(je); err != nil {
					return RunResult{}, fmt.Errorf("persist journal entry %s: %w", je.ID, err)
				}
			}
		}
		for _, d := range p.documents {
			if e.storage != nil {
				if err := e.storage.SaveDocument(d); err != nil {
					return RunResult{}, fmt.Errorf("persist document %s: %w", d.ID, err)
				}
			}
		}
	}
	e.log.Info("document flows simulated", zap.Int("journal_entries", len(allEntries)))

	result := RunResult{
		RunID:        runID,
		MasterData:   e.pool,
		JournalEntries: allEntries,
		Issues:       e.issues.Issues,
	}

	closeOrch := &CloseOrchestrator{
		IDs: e.ids, Cal: DefaultFiscalCalendar(), Tracker: e.tracker, Issues: e.issues,
		AccruedExpenseRate: decimal.NewFromFloat(e.cfg.Balance.AccruedExpenseRate),
		AccruedRevenueRate: decimal.NewFromFloat(e.cfg.Balance.AccruedRevenueRate),
		TaxRate:            decimal.NewFromFloat(e.cfg.Balance.TaxRate),
	}
	cal := DefaultFiscalCalendar()
	icStream := e.root.DeriveStream("intercompany", 0)

	periodEnd := e.cfg.Global.StartDate
	for m := 0; m < e.cfg.Global.PeriodMonths; m++ {
		periodEnd = periodEnd.AddDate(0, 1, -1)
		isYearEnd := cal.PeriodOf(periodEnd).IsYearEnd()
		pid := cal.PeriodOf(periodEnd)

		if e.cfg.Intercompany.Enabled {
			for _, co := range e.cfg.Companies {
				if co.ParentCode == "" {
					continue
				}
				sub, hasSub := e.pool.Companies[co.Code]
				parent, hasParent := e.pool.Companies[co.ParentCode]
				if !hasSub || !hasParent || !icStream.Bool(e.cfg.Intercompany.TransferRate) {
					continue
				}
				baseAmount := MustParseMoney(fmt.Sprintf("%d", 1_000+icStream.IntN(9_000)), sub.FunctionalCurrency)
				flow, err := SimulateIntercompanyTransfer(e.ids, cal, sub, parent, periodEnd, baseAmount,
					decimal.NewFromFloat(e.cfg.Intercompany.MarkupPercent), decimal.NewFromFloat(0.5))
				if err != nil {
					return RunResult{}, fmt.Errorf("intercompany transfer %s->%s: %w", sub.Code, parent.Code, err)
				}
				for _, je := range []JournalEntry{flow.SellerEntry, flow.BuyerEntry} {
					if err := e.tracker.Apply(je); err != nil {
						return RunResult{}, fmt.Errorf("apply intercompany entry %s: %w", je.ID, err)
					}
					allEntries = append(allEntries, je)
				}
				result.JournalEntries = allEntries
				result.IntercompanyTransfers = append(result.IntercompanyTransfers, flow.Transfer)
			}
		}

		for _, co := range e.cfg.Companies {
			run := closeOrch.RunMonthlyClose(co.Code, periodEnd, e.pool.DepreciableAssets(), isYearEnd, AcctRetainedEarnings)
			result.CloseRuns = append(result.CloseRuns, run)
			for _, task := range run.Tasks {
				allEntries = append(allEntries, task.EntriesCreated...)
			}
			result.JournalEntries = allEntries

			snap := e.tracker.Snapshot(co.Code, pid.FiscalYear, pid.Period, periodEnd)
			result.BalanceSnapshots = append(result.BalanceSnapshots, snap)
			if e.storage != nil {
				if err := e.storage.SaveBalanceSnapshot(snap); err != nil {
					return RunResult{}, fmt.Errorf("persist balance snapshot: %w", err)
				}
			}

			tb, err := BuildTrialBalance(snap, e.pool.AllAccounts(), false)
			if err != nil {
				return RunResult{}, fmt.Errorf("trial balance %s: %w", co.Code, err)
			}
			result.TrialBalances = append(result.TrialBalances, tb)

			if co.ParentCode != "" && e.cfg.Intercompany.Enabled {
				if sub, ok := e.pool.Companies[co.Code]; ok {
					if parent, ok := e.pool.Companies[co.ParentCode]; ok {
						result.IntercompanyBalances = append(result.IntercompanyBalances,
							IntercompanyBalanceFor(e.tracker, sub, parent, pid.FiscalYear, pid.Period))
					}
				}
			}

			if e.cfg.Balance.RollforwardEnabled {
				e.tracker.Rollforward(co.Code, pid, cal.NextPeriod(pid))
			}
		}
		periodEnd = periodEnd.AddDate(0, 0, 1)
	}
	e.log.Info("period close complete", zap.Int("close_runs", len(result.CloseRuns)))

	if cons, err := e.runConsolidation(result); err != nil {
		return RunResult{}, fmt.Errorf("consolidation: %w", err)
	} else if cons != nil {
		result.Consolidated = cons.tb
		result.EliminationJournal = cons.journal
	}

	if e.cfg.Fingerprint.Level != "" {
		fps, err := e.extractFingerprints(result)
		if err != nil {
			return RunResult{}, fmt.Errorf("fingerprint extraction: %w", err)
		}
		result.Fingerprints = fps
		if e.storage != nil {
			for name, fp := range fps {
				sealed, err := SealFingerprint(fp, nil)
				if err != nil {
					return RunResult{}, fmt.Errorf("seal fingerprint %s: %w", name, err)
				}
				if err := e.storage.SaveFingerprint(name, sealed); err != nil {
					return RunResult{}, fmt.Errorf("persist fingerprint %s: %w", name, err)
				}
			}
		}
	}

	result.Issues = e.issues.Issues
	if e.storage != nil {
		if err := e.storage.SaveIssueLog("run", e.issues.Issues); err != nil {
			return RunResult{}, fmt.Errorf("persist issue log: %w", err)
		}
	}

	e.log.Info("generation run complete",
		zap.String("run_id", runID),
		zap.Int("journal_entries", len(allEntries)),
		zap.Int("issues", len(e.issues.Issues)))
	return result, nil
}

// Close releases any storage resources the Engine owns.
func (e *Engine) Close() error {
	if e.storage != nil {
		return e.storage.Close()
	}
	return nil
}
