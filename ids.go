package synthledger

import (
	"fmt"
	"sync"
)

// IDAllocator generates monotonically increasing, prefix-scoped
// identifiers such as "PO-ACME-000042" (spec §3). Counters are kept
// per (prefix, company) pair so numbering restarts cleanly across
// companies and document types, mirroring the teacher's per-entity
// ID convention (accounting.go's ID fields) generalized to a shared
// allocator instead of one uuid per entity.
type IDAllocator struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewIDAllocator constructs an empty allocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{counters: make(map[string]uint64)}
}

// Next returns the next id for (prefix, companyCode), formatted as
// "<prefix>-<companyCode>-<seq>" with a zero-padded 6-digit sequence.
func (a *IDAllocator) Next(prefix, companyCode string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := prefix + "\x00" + companyCode
	a.counters[key]++
	seq := a.counters[key]
	return fmt.Sprintf("%s-%s-%06d", prefix, companyCode, seq)
}

// Peek returns the most recently allocated sequence number for
// (prefix, companyCode) without advancing it; zero if none allocated.
func (a *IDAllocator) Peek(prefix, companyCode string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters[prefix+"\x00"+companyCode]
}

// Document id prefixes, spec §3.
const (
	PrefixPurchaseOrder   = "PO"
	PrefixGoodsReceipt    = "GR"
	PrefixVendorInvoice   = "VI"
	PrefixPayment         = "PAY"
	PrefixSalesOrder      = "SO"
	PrefixDelivery        = "DL"
	PrefixCustomerInvoice = "CI"
	PrefixReceipt         = "RC"
	PrefixJournalEntry    = "JE"
	PrefixFixedAsset      = "FA"
	PrefixVendor          = "VEN"
	PrefixCustomer        = "CUS"
	PrefixMaterial        = "MAT"
)
