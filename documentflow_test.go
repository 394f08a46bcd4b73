package synthledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testMaterials() []Material {
	return []Material{
		{ID: "MAT-1", CompanyCode: "C1", Description: "Widget", Type: "GOODS",
			UnitPrice: MustParseMoney("50", "USD"), UnitCost: MustParseMoney("30", "USD"),
			TaxRatePercent: decimal.NewFromInt(10)},
	}
}

func testVendor() Vendor {
	return Vendor{
		ID: "VEN-1", CompanyCode: "C1", Name: "Acme Supply", Country: "US", Currency: "USD",
		PaymentTerms: PaymentTerms{NetDays: 30, DiscountDays: 10, DiscountPercent: decimal.NewFromInt(2)},
		PaymentBehaviorDaysOffset: 0,
	}
}

func testCustomer(badDebt float64) Customer {
	return Customer{
		ID: "CUS-1", CompanyCode: "C1", Name: "Big Buyer", Country: "US", Currency: "USD",
		PaymentTerms: PaymentTerms{NetDays: 30},
		Credit:       CreditProfile{CreditLimit: MustParseMoney("1000000", "USD"), CurrentExposure: Zero("USD")},
		BadDebtPropensity: badDebt,
	}
}

func testDocFlowConfig() GeneratorConfig {
	return GeneratorConfig{
		DocumentFlows: DocumentFlowConfig{
			PartialDeliveryRate:      0,
			MaxPriceVariancePercent:  0,
			EarlyPaymentDiscountRate: 0,
			CreditCheckFailureRate:   0,
		},
	}
}

func TestSimulateP2PProducesFullChainInOrder(t *testing.T) {
	s := NewRootStream(1)
	ids := NewIDAllocator()
	issues := &IssueLog{}
	cfg := testDocFlowConfig()

	chain := SimulateP2P(s, ids, cfg, Company{Code: "C1"}, testVendor(), testMaterials(), mustDate(2025, 1, 1), issues)

	var types []DocumentType
	for _, d := range chain.Documents {
		types = append(types, d.Type)
	}
	require.Equal(t, []DocumentType{DocPurchaseOrder, DocGoodsReceipt, DocVendorInvoice, DocPayment}, types)
	require.NotEmpty(t, chain.References)

	payment := chain.Documents[len(chain.Documents)-1]
	require.Equal(t, DocPayment, payment.Type)
	require.True(t, payment.DocumentDate.After(chain.Documents[0].DocumentDate))
}

func TestSimulateP2PPartialDeliverySplitsAcrossTwoReceipts(t *testing.T) {
	s := NewRootStream(2)
	ids := NewIDAllocator()
	cfg := testDocFlowConfig()
	cfg.DocumentFlows.PartialDeliveryRate = 1

	chain := SimulateP2P(s, ids, cfg, Company{Code: "C1"}, testVendor(), testMaterials(), mustDate(2025, 1, 1), &IssueLog{})

	grCount := 0
	for _, d := range chain.Documents {
		if d.Type == DocGoodsReceipt {
			grCount++
		}
	}
	require.Equal(t, 2, grCount)
}

func TestSimulateO2CProducesFullChainForGoodCustomer(t *testing.T) {
	s := NewRootStream(3)
	ids := NewIDAllocator()
	cfg := testDocFlowConfig()

	chain := SimulateO2C(s, ids, cfg, Company{Code: "C1"}, testCustomer(0), testMaterials(), mustDate(2025, 1, 1), &IssueLog{})

	var types []DocumentType
	for _, d := range chain.Documents {
		types = append(types, d.Type)
	}
	require.Equal(t, []DocumentType{DocSalesOrder, DocDelivery, DocCustomerInvoice, DocReceipt}, types)
}

func TestSimulateO2CBadDebtCustomerNeverPays(t *testing.T) {
	s := NewRootStream(4)
	ids := NewIDAllocator()
	cfg := testDocFlowConfig()

	chain := SimulateO2C(s, ids, cfg, Company{Code: "C1"}, testCustomer(1), testMaterials(), mustDate(2025, 1, 1), &IssueLog{})

	for _, d := range chain.Documents {
		require.NotEqual(t, DocReceipt, d.Type)
	}
	last := chain.Documents[len(chain.Documents)-1]
	require.Equal(t, DocCustomerInvoice, last.Type)
}

func TestSimulateO2CCreditCheckFailureCancelsOrder(t *testing.T) {
	s := NewRootStream(5)
	ids := NewIDAllocator()
	cfg := testDocFlowConfig()
	cfg.DocumentFlows.CreditCheckFailureRate = 1

	chain := SimulateO2C(s, ids, cfg, Company{Code: "C1"}, testCustomer(0), testMaterials(), mustDate(2025, 1, 1), &IssueLog{})

	require.Len(t, chain.Documents, 1)
	require.Equal(t, DocCancelled, chain.Documents[0].Status)
}
