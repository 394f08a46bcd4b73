package synthledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentReference links a follow-on document back to a predecessor
// in its P2P/O2C chain. References are created strictly forward in
// time and are immutable once recorded (spec §9: no cycles by
// construction).
type DocumentReference struct {
	SourceType DocumentType `json:"source_type"`
	SourceID   string       `json:"source_id"`
	TargetType DocumentType `json:"target_type"`
	TargetID   string       `json:"target_id"`
	Kind       string       `json:"kind"` // "predecessor", "follow_on", "payment", "reversal"
	Date       time.Time    `json:"date"`
}

// DocumentChain is the result of simulating one P2P or one O2C flow:
// every document produced plus the cross-reference records linking
// them.
type DocumentChain struct {
	Documents  []Document
	References []DocumentReference
}

// behaviorOffsetDays returns the expected payment-timing offset (in
// days from the due date) for a payment-behavior bucket, per spec
// §4.3's canonical ranges.
func behaviorOffsetDays(s *Stream, behaviorOffset int) int {
	switch {
	case behaviorOffset <= -10:
		return -5 - s.IntN(11) // early payer: -5..-15
	case behaviorOffset < 0:
		return -2 + s.IntN(6) // on-time: -2..+3
	case behaviorOffset < 10:
		return 5 + s.IntN(11) // slightly late: +5..+15
	case behaviorOffset < 30:
		return 15 + s.IntN(31) // often late: +15..+45
	default:
		return 30 + s.IntN(61) // high-risk: +30..+90
	}
}

// SimulateP2P runs one Procure-to-Pay chain: PurchaseOrder -> 1..N
// GoodsReceipt -> VendorInvoice -> Payment. Each document carries one
// status: the PO stays open, goods receipts and the payment are
// completed, and the invoice is completed or, when the three-way match
// fails, blocked. The PO's Draft -> Released -> received -> Invoiced ->
// Paid -> Closed progression is not tracked.
func SimulateP2P(s *Stream, ids *IDAllocator, cfg GeneratorConfig, company Company, vendor Vendor, materials []Material, orderDate time.Time, issues *IssueLog) DocumentChain {
	chain := DocumentChain{}
	poID := ids.Next(PrefixPurchaseOrder, company.Code)

	materialByID := make(map[string]Material, len(materials))
	for _, m := range materials {
		materialByID[m.ID] = m
	}

	lines := make([]DocumentLine, 0, len(materials))
	for i, m := range materials {
		qty := decimal.NewFromInt(int64(1 + s.IntN(50)))
		tax := m.UnitPrice.Mul(qty).Mul(m.TaxRatePercent.Div(decimal.NewFromInt(100)))
		lines = append(lines, DocumentLine{
			LineNo: i + 1, MaterialID: m.ID, Quantity: qty,
			UnitPrice: m.UnitCost, TaxAmount: tax,
		})
	}
	po := Document{
		ID: poID, Type: DocPurchaseOrder, CompanyCode: company.Code,
		CounterpartyID: vendor.ID, DocumentDate: orderDate, Status: DocOpen,
		Lines: lines, Currency: vendor.Currency,
	}
	chain.Documents = append(chain.Documents, po)

	// Goods receipts: full or (if forced) partial, split 3-10 days apart.
	received := make([]decimal.Decimal, len(lines))
	grDates := []time.Time{orderDate.AddDate(0, 0, 3+s.IntN(8))}
	if s.Bool(cfg.DocumentFlows.PartialDeliveryRate) {
		grDates = append(grDates, grDates[0].AddDate(0, 0, 3+s.IntN(8)))
	}
	for gi, grDate := range grDates {
		grLines := make([]DocumentLine, 0, len(lines))
		for li, l := range lines {
			var qty decimal.Decimal
			if len(grDates) == 1 {
				overDelivery := decimal.NewFromFloat(1.0 + s.Float64()*0.10)
				qty = l.Quantity.Mul(overDelivery).Round(0)
			} else if gi == 0 {
				frac := decimal.NewFromFloat(0.4 + s.Float64()*0.3)
				qty = l.Quantity.Mul(frac).Round(0)
			} else {
				qty = l.Quantity.Sub(received[li])
			}
			received[li] = received[li].Add(qty)
			grLines = append(grLines, DocumentLine{LineNo: l.LineNo, MaterialID: l.MaterialID, Quantity: qty, UnitPrice: l.UnitPrice})
		}
		grID := ids.Next(PrefixGoodsReceipt, company.Code)
		gr := Document{
			ID: grID, Type: DocGoodsReceipt, CompanyCode: company.Code,
			CounterpartyID: vendor.ID, DocumentDate: grDate, Status: DocCompleted,
			Lines: grLines, References: []string{poID}, Currency: vendor.Currency,
		}
		chain.Documents = append(chain.Documents, gr)
		chain.References = append(chain.References, DocumentReference{
			SourceType: DocGoodsReceipt, SourceID: grID, TargetType: DocPurchaseOrder, TargetID: poID,
			Kind: "predecessor", Date: grDate,
		})
	}

	// Vendor invoice: price variance may trigger a three-way-match flag.
	invoiceDate := grDates[len(grDates)-1].AddDate(0, 0, 1+s.IntN(5))
	invLines := make([]DocumentLine, 0, len(lines))
	for _, l := range lines {
		variance := decimal.NewFromFloat(1.0 + (s.Float64()*2-1)*cfg.DocumentFlows.MaxPriceVariancePercent/100)
		price := l.UnitPrice.Mul(variance)
		taxRate := materialByID[l.MaterialID].TaxRatePercent
		tax := price.Mul(l.Quantity).Mul(taxRate.Div(decimal.NewFromInt(100)))
		invLines = append(invLines, DocumentLine{LineNo: l.LineNo, MaterialID: l.MaterialID, Quantity: l.Quantity, UnitPrice: price, TaxAmount: tax})
	}
	invID := ids.Next(PrefixVendorInvoice, company.Code)
	grIDs := make([]string, 0, len(chain.Documents)-1)
	for _, d := range chain.Documents {
		if d.Type == DocGoodsReceipt {
			grIDs = append(grIDs, d.ID)
		}
	}
	refs := append([]string{poID}, grIDs...)
	invoice := Document{
		ID: invID, Type: DocVendorInvoice, CompanyCode: company.Code,
		CounterpartyID: vendor.ID, DocumentDate: invoiceDate, Status: DocOpen,
		Lines: invLines, References: refs, Currency: vendor.Currency,
	}

	verdict := ThreeWayMatch(po, grIDsToDocs(chain.Documents, grIDs), invoice, cfg.DocumentFlows.MaxPriceVariancePercent/100)
	if !verdict.Matched {
		invoice.Status = DocBlocked
		if issues != nil {
			issues.Record(ErrMatchFailure, invID, "three-way match failed: %s", verdict.Reason)
		}
	} else {
		invoice.Status = DocCompleted
	}
	chain.Documents = append(chain.Documents, invoice)
	for _, grID := range grIDs {
		chain.References = append(chain.References, DocumentReference{
			SourceType: DocVendorInvoice, SourceID: invID, TargetType: DocGoodsReceipt, TargetID: grID,
			Kind: "predecessor", Date: invoiceDate,
		})
	}

	// Payment: timing driven by vendor payment-behavior offset.
	dueDate := invoiceDate.AddDate(0, 0, vendor.PaymentTerms.NetDays)
	offset := behaviorOffsetDays(s, vendor.PaymentBehaviorDaysOffset)
	payDate := dueDate.AddDate(0, 0, offset)
	discountDate := invoiceDate.AddDate(0, 0, vendor.PaymentTerms.DiscountDays)
	tookDiscount := vendor.PaymentTerms.DiscountDays > 0 && !payDate.After(discountDate) && s.Bool(cfg.DocumentFlows.EarlyPaymentDiscountRate)

	gross, _ := invoice.GrossTotal()
	discount := Zero(vendor.Currency)
	if tookDiscount {
		discount = gross.Mul(vendor.PaymentTerms.DiscountPercent.Div(decimal.NewFromInt(100)))
	}
	payID := ids.Next(PrefixPayment, company.Code)
	payment := Document{
		ID: payID, Type: DocPayment, CompanyCode: company.Code,
		CounterpartyID: vendor.ID, DocumentDate: payDate, Status: DocCompleted,
		Lines:         []DocumentLine{{LineNo: 1, UnitPrice: gross, Quantity: decimal.NewFromInt(1)}},
		DiscountTaken: discount,
		References:    []string{invID}, Currency: vendor.Currency,
	}
	chain.Documents = append(chain.Documents, payment)
	chain.References = append(chain.References, DocumentReference{
		SourceType: DocPayment, SourceID: payID, TargetType: DocVendorInvoice, TargetID: invID,
		Kind: "payment", Date: payDate,
	})
	return chain
}

func grIDsToDocs(docs []Document, ids []string) []Document {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var out []Document
	for _, d := range docs {
		if idSet[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

// SimulateO2C runs one Order-to-Cash chain: SalesOrder -> 1..N
// Delivery -> CustomerInvoice -> CustomerReceipt, with a CreditCheck
// gate before release and bad-debt customers never paying.
func SimulateO2C(s *Stream, ids *IDAllocator, cfg GeneratorConfig, company Company, customer Customer, materials []Material, orderDate time.Time, issues *IssueLog) DocumentChain {
	chain := DocumentChain{}
	soID := ids.Next(PrefixSalesOrder, company.Code)

	lines := make([]DocumentLine, 0, len(materials))
	for i, m := range materials {
		qty := decimal.NewFromInt(int64(1 + s.IntN(50)))
		tax := m.UnitPrice.Mul(qty).Mul(m.TaxRatePercent.Div(decimal.NewFromInt(100)))
		lines = append(lines, DocumentLine{LineNo: i + 1, MaterialID: m.ID, Quantity: qty, UnitPrice: m.UnitPrice, TaxAmount: tax})
	}
	so := Document{
		ID: soID, Type: DocSalesOrder, CompanyCode: company.Code,
		CounterpartyID: customer.ID, DocumentDate: orderDate, Status: DocOpen,
		Lines: lines, Currency: customer.Currency,
	}

	orderTotal, _ := so.GrossTotal()
	availableCredit, _ := customer.Credit.CreditLimit.Sub(customer.Credit.CurrentExposure)
	failProb := cfg.DocumentFlows.CreditCheckFailureRate
	if cmp, err := orderTotal.Cmp(availableCredit); err == nil && cmp > 0 {
		failProb = 1.0 // exceeding available credit always fails the check
	}
	if s.Bool(failProb) {
		so.Status = DocCancelled
		chain.Documents = append(chain.Documents, so)
		if issues != nil {
			issues.Record(ErrCreditRefused, soID, "credit check failed for customer %s", customer.ID)
		}
		return chain
	}
	so.Status = DocOpen
	chain.Documents = append(chain.Documents, so)

	shipped := make([]decimal.Decimal, len(lines))
	dlDates := []time.Time{orderDate.AddDate(0, 0, 2+s.IntN(6))}
	if s.Bool(cfg.DocumentFlows.PartialDeliveryRate) {
		dlDates = append(dlDates, dlDates[0].AddDate(0, 0, 3+s.IntN(8)))
	}
	for di, dlDate := range dlDates {
		dlLines := make([]DocumentLine, 0, len(lines))
		for li, l := range lines {
			var qty decimal.Decimal
			if len(dlDates) == 1 {
				qty = l.Quantity
			} else if di == 0 {
				frac := decimal.NewFromFloat(0.4 + s.Float64()*0.3)
				qty = l.Quantity.Mul(frac).Round(0)
			} else {
				qty = l.Quantity.Sub(shipped[li])
			}
			shipped[li] = shipped[li].Add(qty)
			dlLines = append(dlLines, DocumentLine{LineNo: l.LineNo, MaterialID: l.MaterialID, Quantity: qty, UnitPrice: l.UnitPrice})
		}
		dlID := ids.Next(PrefixDelivery, company.Code)
		delivery := Document{
			ID: dlID, Type: DocDelivery, CompanyCode: company.Code,
			CounterpartyID: customer.ID, DocumentDate: dlDate, Status: DocCompleted,
			Lines: dlLines, References: []string{soID}, Currency: customer.Currency,
		}
		chain.Documents = append(chain.Documents, delivery)
		chain.References = append(chain.References, DocumentReference{
			SourceType: DocDelivery, SourceID: dlID, TargetType: DocSalesOrder, TargetID: soID,
			Kind: "predecessor", Date: dlDate,
		})
	}

	invDate := dlDates[len(dlDates)-1].AddDate(0, 0, 1)
	invID := ids.Next(PrefixCustomerInvoice, company.Code)
	invoice := Document{
		ID: invID, Type: DocCustomerInvoice, CompanyCode: company.Code,
		CounterpartyID: customer.ID, DocumentDate: invDate, Status: DocOpen,
		Lines: lines, References: []string{soID}, Currency: customer.Currency,
	}
	chain.Documents = append(chain.Documents, invoice)
	chain.References = append(chain.References, DocumentReference{
		SourceType: DocCustomerInvoice, SourceID: invID, TargetType: DocSalesOrder, TargetID: soID,
		Kind: "predecessor", Date: invDate,
	})

	// Bad-debt customers never pay; chain ends with an open invoice.
	if s.Bool(customer.BadDebtPropensity) {
		if issues != nil {
			issues.Record(ErrBadDebt, invID, "customer %s flagged bad debt, invoice unpaid", customer.ID)
		}
		return chain
	}

	dueDate := invDate.AddDate(0, 0, customer.PaymentTerms.NetDays)
	offset := behaviorOffsetDays(s, customer.PaymentBehaviorDaysOffset)
	payDate := dueDate.AddDate(0, 0, offset)
	discountDate := invDate.AddDate(0, 0, customer.PaymentTerms.DiscountDays)
	tookDiscount := customer.PaymentTerms.DiscountDays > 0 && !payDate.After(discountDate) && s.Bool(cfg.DocumentFlows.EarlyPaymentDiscountRate)

	gross, _ := invoice.GrossTotal()
	discount := Zero(customer.Currency)
	if tookDiscount {
		discount = gross.Mul(customer.PaymentTerms.DiscountPercent.Div(decimal.NewFromInt(100)))
	}
	rcID := ids.Next(PrefixReceipt, company.Code)
	receipt := Document{
		ID: rcID, Type: DocReceipt, CompanyCode: company.Code,
		CounterpartyID: customer.ID, DocumentDate: payDate, Status: DocCompleted,
		Lines:         []DocumentLine{{LineNo: 1, UnitPrice: gross, Quantity: decimal.NewFromInt(1)}},
		DiscountTaken: discount,
		References:    []string{invID}, Currency: customer.Currency,
	}
	chain.Documents = append(chain.Documents, receipt)
	chain.References = append(chain.References, DocumentReference{
		SourceType: DocReceipt, SourceID: rcID, TargetType: DocCustomerInvoice, TargetID: invID,
		Kind: "payment", Date: payDate,
	})
	return chain
}
