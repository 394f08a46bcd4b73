package synthledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProjectJournalEntryCustomerInvoiceBalances(t *testing.T) {
	ids := NewIDAllocator()
	cal := DefaultFiscalCalendar()

	doc := Document{
		ID: "CI-C1-000001", Type: DocCustomerInvoice, CompanyCode: "C1",
		CounterpartyID: "CUS-C1-000001", DocumentDate: mustDate(2025, 3, 10),
		Status: DocOpen, Currency: "USD",
		Lines: []DocumentLine{
			{LineNo: 1, MaterialID: "MAT-C1-000001", Quantity: decimal.NewFromInt(1000),
				UnitPrice: MustParseMoney("120", "USD"), TaxAmount: Zero("USD")},
		},
	}

	je, err := ProjectJournalEntry(ids, cal, doc)
	require.NoError(t, err)
	require.True(t, je.Balanced())
	require.Equal(t, 2025, je.FiscalYear)
	require.Equal(t, 3, je.FiscalPeriod)

	var debitTotal, creditTotal decimal.Decimal
	for _, l := range je.Lines {
		if l.Type == Debit {
			debitTotal = debitTotal.Add(l.Amount.Amount)
		} else {
			creditTotal = creditTotal.Add(l.Amount.Amount)
		}
	}
	require.True(t, debitTotal.Equal(creditTotal))
	require.Equal(t, "120000", debitTotal.StringFixed(0))
}

func TestProjectJournalEntryRejectsNonProjectingDocType(t *testing.T) {
	ids := NewIDAllocator()
	cal := DefaultFiscalCalendar()

	doc := Document{ID: "PO-C1-000001", Type: DocPurchaseOrder, CompanyCode: "C1", DocumentDate: mustDate(2025, 1, 1), Currency: "USD"}
	_, err := ProjectJournalEntry(ids, cal, doc)
	require.Error(t, err)
}
