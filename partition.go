package synthledger

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// documentFlowBatchSize is the number of document chains simulated
// per company before a partition checks ctx for cancellation.
const documentFlowBatchSize = 10_000

// companyPartition is the shared-nothing unit of work for one
// company's document-flow simulation: its own derived PRNG stream, ID
// allocator view, and accumulated output. Partitions never share
// mutable state, so they can run concurrently and merge
// deterministically afterward (spec §5).
type companyPartition struct {
	companyCode string
	documents   []Document
	entries     []JournalEntry
}

// projectingDocTypes are the document kinds that resolve to exactly
// one journal entry; predecessor documents (orders, deliveries,
// goods-receipt-pending purchase orders) do not post on their own.
var projectingDocTypes = map[DocumentType]bool{
	DocVendorInvoice:   true,
	DocPayment:         true,
	DocCustomerInvoice: true,
	DocReceipt:         true,
	DocGoodsReceipt:    true,
}

// simulateDocumentFlows runs one P2P chain per vendor in even months
// and one O2C chain per customer in odd months across the run's
// period, one goroutine per company via errgroup when Parallel is set.
// It returns one partition per company in configuration order, each
// holding its documents and entries in generation order (they are not
// re-sorted by document date or id), so the merged output does not
// depend on goroutine scheduling.
func (e *Engine) simulateDocumentFlows(ctx context.Context) ([]companyPartition, error) {
	partitions := make([]companyPartition, len(e.cfg.Companies))

	g, gctx := errgroup.WithContext(ctx)
	for i, co := range e.cfg.Companies {
		i, co := i, co
		run := func() error {
			stream := e.root.DeriveStream("company", uint64(i))
			company := e.pool.Companies[co.Code]
			vendors := e.pool.Vendors[co.Code]
			customers := e.pool.Customers[co.Code]
			materials := e.pool.Materials[co.Code]
			cal := company.FiscalCalendar

			var p companyPartition
			p.companyCode = co.Code

			monthsToSimulate := e.cfg.Global.PeriodMonths
			chainsEmitted := 0
			for m := 0; m < monthsToSimulate; m++ {
				orderDate := e.cfg.Global.StartDate.AddDate(0, m, 0)
				if m%2 == 0 {
					for _, v := range vendors {
						if err := checkCancelled(gctx); err != nil {
							return err
						}
						chain := SimulateP2P(stream, e.ids, e.cfg, company, v, pickMaterials(stream, materials), orderDate, e.issues)
						mergeChain(&p, chain, e.ids, cal, e.cfg, stream, e.issues)
						chainsEmitted++
						if chainsEmitted%documentFlowBatchSize == 0 {
							if err := checkCancelled(gctx); err != nil {
								return err
							}
						}
					}
				} else {
					for _, c := range customers {
						if err := checkCancelled(gctx); err != nil {
							return err
						}
						chain := SimulateO2C(stream, e.ids, e.cfg, company, c, pickMaterials(stream, materials), orderDate, e.issues)
						mergeChain(&p, chain, e.ids, cal, e.cfg, stream, e.issues)
						chainsEmitted++
						if chainsEmitted%documentFlowBatchSize == 0 {
							if err := checkCancelled(gctx); err != nil {
								return err
							}
						}
					}
				}
			}

			partitions[i] = p
			return nil
		}

		if e.cfg.Global.Parallel {
			g.Go(run)
		} else if err := run(); err != nil {
			return nil, err
		}
	}
	if e.cfg.Global.Parallel {
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return partitions, nil
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// pickMaterials selects a small deterministic subset of a company's
// materials for one document chain, so not every chain touches the
// entire catalog.
func pickMaterials(s *Stream, materials []Material) []Material {
	if len(materials) == 0 {
		return nil
	}
	n := 1 + s.IntN(min(5, len(materials)))
	out := make([]Material, 0, n)
	seen := make(map[int]bool, n)
	for len(out) < n {
		idx := s.IntN(len(materials))
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, materials[idx])
	}
	return out
}

// mergeChain projects every journal-relevant document in chain and
// appends the results to p, recording rather than aborting on a
// projection failure so one malformed chain cannot halt the run. Each
// projected entry is stamped with a department (spec §6 departments)
// and, when configured, labeled as fraudulent (spec §6 fraud) and
// checked against the approval chain (spec §6 approval,
// internal_controls).
func mergeChain(p *companyPartition, chain DocumentChain, ids *IDAllocator, cal FiscalCalendar, cfg GeneratorConfig, s *Stream, issues *IssueLog) {
	p.documents = append(p.documents, chain.Documents...)
	for _, d := range chain.Documents {
		if !projectingDocTypes[d.Type] {
			continue
		}
		je, err := ProjectJournalEntry(ids, cal, d)
		if err != nil {
			if issues != nil {
				kind := ErrInvalidFormat
				var ge *GenError
				if errors.As(err, &ge) {
					kind = ge.Kind
				}
				issues.Record(kind, d.ID, "journal projection skipped: %v", err)
			}
			continue
		}
		applyDepartment(&je, pickDepartment(s, cfg.Departments))
		maybeTagFraud(s, cfg.Fraud, cal, &je, issues)
		if gross, err := d.GrossTotal(); err == nil {
			if ExceedsSingleApproverLimit(cfg.InternalControls, gross) && !je.IsFraud && issues != nil {
				issues.Record(ErrInsufficientData, je.ID, "amount requires approval level %s under segregation of duties", RequiredApprovalLevel(cfg.Approval, gross))
			}
		}
		p.entries = append(p.entries, je)
	}
}
