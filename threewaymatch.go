package synthledger

import "github.com/shopspring/decimal"

// MatchVerdict is the outcome of running the three-way match rules
// against a vendor invoice (spec §4.3, testable property 8).
type MatchVerdict struct {
	Matched bool
	Reason  string
}

// ThreeWayMatch validates an invoice against its purchase order and
// the set of goods receipts referenced by it. All three rules must
// pass for the invoice to be classified "matched":
//  1. every invoice line references a PO line for the same material;
//  2. cumulative invoiced quantity per PO line <= cumulative received
//     quantity for that line;
//  3. |invoice unit price - PO unit price| / PO unit price <= tolerance.
//
// A failing match is recorded but never blocks posting (spec: "real
// systems block; here we preserve the flagged state for analytic
// realism").
func ThreeWayMatch(po Document, receipts []Document, invoice Document, priceTolerance float64) MatchVerdict {
	poByMaterial := map[string]DocumentLine{}
	for _, l := range po.Lines {
		poByMaterial[l.MaterialID] = l
	}

	receivedByMaterial := map[string]decimal.Decimal{}
	for _, gr := range receipts {
		for _, l := range gr.Lines {
			receivedByMaterial[l.MaterialID] = receivedByMaterial[l.MaterialID].Add(l.Quantity)
		}
	}

	invoicedByMaterial := map[string]decimal.Decimal{}
	for _, l := range invoice.Lines {
		poLine, ok := poByMaterial[l.MaterialID]
		if !ok {
			return MatchVerdict{Matched: false, Reason: "invoice line references unknown PO material " + l.MaterialID}
		}

		invoicedByMaterial[l.MaterialID] = invoicedByMaterial[l.MaterialID].Add(l.Quantity)
		if invoicedByMaterial[l.MaterialID].GreaterThan(receivedByMaterial[l.MaterialID]) {
			return MatchVerdict{Matched: false, Reason: "cumulative invoiced quantity exceeds received for material " + l.MaterialID}
		}

		if poLine.UnitPrice.Currency != l.UnitPrice.Currency || poLine.UnitPrice.Amount.IsZero() {
			continue
		}
		diff := l.UnitPrice.Amount.Sub(poLine.UnitPrice.Amount).Abs()
		ratio := diff.Div(poLine.UnitPrice.Amount)
		tol := decimal.NewFromFloat(priceTolerance)
		if ratio.GreaterThan(tol) {
			return MatchVerdict{Matched: false, Reason: "unit price variance exceeds tolerance for material " + l.MaterialID}
		}
	}

	return MatchVerdict{Matched: true}
}
