package synthledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MasterDataPool owns every generated company, chart of accounts,
// vendor, customer, material and fixed asset for a run, indexed for
// the document-flow simulator's lookups. Grounded on the teacher's
// Company/CompanySettings shape (multi_company.go) and the original's
// FixedAssetPool class/company indices (fixed_asset.rs).
type MasterDataPool struct {
	Companies map[string]Company
	Accounts  map[string][]Account // by company code
	Vendors   map[string][]Vendor
	Customers map[string][]Customer
	Materials map[string][]Material
	Assets    map[string][]FixedAsset
	assetsByClass map[AssetClass][]*FixedAsset
}

// NewMasterDataPool constructs an empty pool.
func NewMasterDataPool() *MasterDataPool {
	return &MasterDataPool{
		Companies: make(map[string]Company),
		Accounts:  make(map[string][]Account),
		Vendors:   make(map[string][]Vendor),
		Customers: make(map[string][]Customer),
		Materials: make(map[string][]Material),
		Assets:    make(map[string][]FixedAsset),
		assetsByClass: make(map[AssetClass][]*FixedAsset),
	}
}

// AddCompany registers a company and seeds its standard chart of
// accounts.
func (p *MasterDataPool) AddCompany(c Company) {
	p.Companies[c.Code] = c
	p.Accounts[c.Code] = standardChartOfAccounts(c.Code, c.FunctionalCurrency)
}

// AddVendor registers a vendor under its company code.
func (p *MasterDataPool) AddVendor(v Vendor) {
	p.Vendors[v.CompanyCode] = append(p.Vendors[v.CompanyCode], v)
}

// AddCustomer registers a customer under its company code.
func (p *MasterDataPool) AddCustomer(c Customer) {
	p.Customers[c.CompanyCode] = append(p.Customers[c.CompanyCode], c)
}

// AddMaterial registers a material under its company code.
func (p *MasterDataPool) AddMaterial(m Material) {
	p.Materials[m.CompanyCode] = append(p.Materials[m.CompanyCode], m)
}

// AddAsset registers a fixed asset under its company code and class
// index.
func (p *MasterDataPool) AddAsset(a FixedAsset) {
	p.Assets[a.CompanyCode] = append(p.Assets[a.CompanyCode], a)
	last := &p.Assets[a.CompanyCode][len(p.Assets[a.CompanyCode])-1]
	p.assetsByClass[a.Class] = append(p.assetsByClass[a.Class], last)
}

// DepreciableAssets returns every active, not-yet-fully-depreciated
// asset across all companies, mirroring the original's
// get_depreciable_assets filter.
func (p *MasterDataPool) DepreciableAssets() []*FixedAsset {
	var out []*FixedAsset
	for code := range p.Assets {
		assets := p.Assets[code]
		for i := range assets {
			a := &assets[i]
			if a.Class.IsDepreciable() && a.Status == AssetActive && !a.IsFullyDepreciated() {
				out = append(out, a)
			}
		}
	}
	return out
}

// AllAccounts flattens the chart of accounts across every registered
// company, for callers (BalanceTracker, trial-balance reporting) that
// operate on the full chart regardless of company.
func (p *MasterDataPool) AllAccounts() []Account {
	var out []Account
	for _, accts := range p.Accounts {
		out = append(out, accts...)
	}
	return out
}

// standardChartOfAccounts returns a minimal but complete chart covering
// every account type the document-flow and close logic need to post
// against.
func standardChartOfAccounts(companyCode string, cur Currency) []Account {
	now := time.Now
	_ = now
	entries := []struct {
		code, name string
		typ        AccountType
	}{
		{"100000", "Cash and Cash Equivalents", AccountAsset},
		{"110000", "Accounts Receivable", AccountAsset},
		{"120000", "Inventory", AccountAsset},
		{"130000", "Prepaid Expenses", AccountAsset},
		{"160000", "Fixed Assets", AccountAsset},
		{"169000", "Accumulated Depreciation", AccountContraAsset},
		{"180000", "Investment in Subsidiaries", AccountAsset},
		{"190000", "Goodwill", AccountAsset},
		{"199000", "Intercompany Receivable", AccountAsset},
		{"200000", "Accounts Payable", AccountLiability},
		{"205000", "GR/IR Clearing", AccountLiability},
		{"210000", "Accrued Liabilities", AccountLiability},
		{"220000", "Taxes Payable", AccountLiability},
		{"230000", "Deferred Revenue", AccountLiability},
		{"299000", "Intercompany Payable", AccountLiability},
		{"300000", "Common Stock", AccountEquity},
		{"310000", "Retained Earnings", AccountEquity},
		{"320000", "Minority Interest", AccountEquity},
		{"400000", "Sales Revenue", AccountIncome},
		{"410000", "Intercompany Revenue", AccountIncome},
		{"420000", "Discount Income", AccountIncome},
		{"500000", "Cost of Goods Sold", AccountExpense},
		{"510000", "Intercompany Cost of Goods Sold", AccountExpense},
		{"600000", "Operating Expenses", AccountExpense},
		{"610000", "Bad Debt Expense", AccountExpense},
		{"620000", "Accrued Expense", AccountExpense},
		{"630000", "Discount Expense", AccountExpense},
		{"640000", "Depreciation Expense", AccountExpense},
		{"700000", "Foreign Exchange Gain/Loss", AccountExpense},
		{"800000", "Income Tax Provision", AccountExpense},
		{"810000", "Gain on Disposal", AccountIncome},
		{"840000", "Loss on Disposal", AccountExpense},
	}
	accounts := make([]Account, 0, len(entries))
	for _, e := range entries {
		accounts = append(accounts, Account{
			ID:          companyCode + "-" + e.code,
			CompanyCode: companyCode,
			Code:        e.code,
			Name:        e.name,
			Type:        e.typ,
			Currency:    cur,
		})
	}
	return accounts
}

// GenerateVendors creates n synthetic vendors for a company using s,
// drawing payment terms and behavior offsets from plausible
// distributions.
func GenerateVendors(s *Stream, ids *IDAllocator, companyCode string, cur Currency, n int) []Vendor {
	countries := []string{"US", "DE", "GB", "CN", "JP", "IN"}
	vendors := make([]Vendor, 0, n)
	for i := 0; i < n; i++ {
		netDays := Pick(s, []int{15, 30, 45, 60, 90})
		vendors = append(vendors, Vendor{
			ID:          ids.Next(PrefixVendor, companyCode),
			CompanyCode: companyCode,
			Name:        syntheticVendorName(s, i),
			Country:     Pick(s, countries),
			Currency:    cur,
			PaymentTerms: PaymentTerms{
				NetDays:         netDays,
				DiscountDays:    netDays / 3,
				DiscountPercent: decimal.NewFromFloat(1.0 + s.Float64()*1.5).Round(2),
			},
			PaymentBehaviorDaysOffset: int(s.NormFloat64() * 5),
		})
	}
	return vendors
}

// GenerateCustomers creates n synthetic customers for a company using s.
func GenerateCustomers(s *Stream, ids *IDAllocator, companyCode string, cur Currency, n int) []Customer {
	countries := []string{"US", "DE", "GB", "CN", "JP", "IN"}
	customers := make([]Customer, 0, n)
	for i := 0; i < n; i++ {
		limit := decimal.NewFromInt(int64(10000 + s.IntN(990000)))
		customers = append(customers, Customer{
			ID:          ids.Next(PrefixCustomer, companyCode),
			CompanyCode: companyCode,
			Name:        syntheticCustomerName(s, i),
			Country:     Pick(s, countries),
			Currency:    cur,
			PaymentTerms: PaymentTerms{NetDays: Pick(s, []int{30, 45, 60})},
			Credit: CreditProfile{
				CreditLimit:     NewMoney(limit, cur),
				CurrentExposure: Zero(cur),
			},
			BadDebtPropensity:         s.Float64() * 0.05,
			PaymentBehaviorDaysOffset: int(s.NormFloat64() * 5),
		})
	}
	return customers
}

// GenerateMaterials creates n synthetic materials for a company using s.
func GenerateMaterials(s *Stream, ids *IDAllocator, companyCode string, cur Currency, n int) []Material {
	materials := make([]Material, 0, n)
	for i := 0; i < n; i++ {
		cost := decimal.NewFromFloat(5 + s.Float64()*995).Round(2)
		margin := decimal.NewFromFloat(1.1 + s.Float64()*0.9)
		price := cost.Mul(margin).Round(2)
		typ := MaterialGoods
		if s.Bool(0.2) {
			typ = MaterialService
		}
		materials = append(materials, Material{
			ID:             ids.Next(PrefixMaterial, companyCode),
			CompanyCode:    companyCode,
			Description:    syntheticMaterialName(s, i),
			Type:           typ,
			UnitPrice:      NewMoney(price, cur),
			UnitCost:       NewMoney(cost, cur),
			TaxRatePercent: decimal.NewFromFloat(Pick(s, []float64{0, 5, 7.5, 10, 15, 20})),
		})
	}
	return materials
}

var vendorNameStems = []string{"Global", "Prime", "Summit", "Atlas", "Vertex", "Nova", "Pioneer", "Cascade", "Horizon", "Keystone"}
var vendorNameSuffixes = []string{"Supply Co.", "Industries", "Materials Ltd.", "Logistics Group", "Manufacturing", "Components Inc.", "Trading Co."}

func syntheticVendorName(s *Stream, _ int) string {
	return Pick(s, vendorNameStems) + " " + Pick(s, vendorNameSuffixes)
}

var customerNameStems = []string{"Brightline", "Northfield", "Cedar", "Harborview", "Meridian", "Redwood", "Silverlake", "Ironwood", "Fairview", "Stonebridge"}
var customerNameSuffixes = []string{"Retail", "Holdings", "Enterprises", "Partners", "Distribution", "Group", "Co."}

func syntheticCustomerName(s *Stream, _ int) string {
	return Pick(s, customerNameStems) + " " + Pick(s, customerNameSuffixes)
}

var materialAdjectives = []string{"Standard", "Premium", "Industrial", "Compact", "Heavy-Duty", "Precision", "Modular"}
var materialNouns = []string{"Widget", "Bracket", "Assembly", "Connector", "Panel", "Fastener", "Housing", "Consulting Hours"}

func syntheticMaterialName(s *Stream, _ int) string {
	return Pick(s, materialAdjectives) + " " + Pick(s, materialNouns)
}
