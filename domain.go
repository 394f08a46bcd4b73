package synthledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ----------------------------------------------------------------------
// Chart of accounts
// ----------------------------------------------------------------------

// AccountType classifies an account for balance-normal-side and
// financial-statement-placement purposes.
type AccountType string

const (
	AccountAsset           AccountType = "ASSET"
	AccountContraAsset     AccountType = "CONTRA_ASSET"
	AccountLiability       AccountType = "LIABILITY"
	AccountContraLiability AccountType = "CONTRA_LIABILITY"
	AccountEquity          AccountType = "EQUITY"
	AccountContraEquity    AccountType = "CONTRA_EQUITY"
	AccountIncome          AccountType = "INCOME"
	AccountExpense         AccountType = "EXPENSE"
)

// NormalSide returns the entry type (debit or credit) that increases an
// account of this type, per spec §4.5's canonical debit/credit-normal
// table. Contra accounts carry the opposite normal side of the type
// they offset.
func (t AccountType) NormalSide() EntryType {
	switch t {
	case AccountAsset, AccountExpense, AccountContraLiability, AccountContraEquity:
		return Debit
	default:
		return Credit
	}
}

// IsContra reports whether t offsets another account type rather than
// carrying its own independent balance.
func (t AccountType) IsContra() bool {
	switch t {
	case AccountContraAsset, AccountContraLiability, AccountContraEquity:
		return true
	default:
		return false
	}
}

// Account is a node in a company's chart of accounts.
type Account struct {
	ID          string      `json:"id"`
	CompanyCode string      `json:"company_code"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	ParentCode  string      `json:"parent_code,omitempty"`
	Currency    Currency    `json:"currency"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ----------------------------------------------------------------------
// Double-entry journal primitives
// ----------------------------------------------------------------------

// EntryType is one side of a double-entry posting.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// JournalLine is a single debit or credit line within a JournalEntry.
type JournalLine struct {
	LineNo      int       `json:"line_no,omitempty"`
	AccountCode string `json:"account_code"`
	Type        EntryType `json:"type"`
	Amount      Money     `json:"amount"`
	CostCenter  string    `json:"cost_center,omitempty"`
	ProfitCenter string   `json:"profit_center,omitempty"`
	// PartnerCompany, when set, names the other group member on the
	// opposite side of an intercompany transaction this line records.
	// Consolidation's IC-balance elimination (spec §4.7) does not read
	// it: it matches on the reserved intercompany account codes.
	PartnerCompany string `json:"partner_company,omitempty"`
}

// FraudType categorizes the kind of irregularity a fraud-labeled
// journal entry simulates (spec §6 fraud.fraud_types).
type FraudType string

const (
	FraudRevenueRecognition FraudType = "REVENUE_RECOGNITION"
	FraudExpenseMisclassification FraudType = "EXPENSE_MISCLASSIFICATION"
	FraudRoundTripping      FraudType = "ROUND_TRIPPING"
	FraudChannelStuffing    FraudType = "CHANNEL_STUFFING"
	FraudCookieJarReserves  FraudType = "COOKIE_JAR_RESERVES"
	FraudBillAndHold        FraudType = "BILL_AND_HOLD"
)

// BusinessProcess tags the end-to-end process a journal entry belongs
// to, independent of its immediate source document type.
type BusinessProcess string

const (
	ProcessP2P         BusinessProcess = "PROCURE_TO_PAY"
	ProcessO2C         BusinessProcess = "ORDER_TO_CASH"
	ProcessFixedAssets BusinessProcess = "FIXED_ASSETS"
	ProcessPeriodClose BusinessProcess = "PERIOD_CLOSE"
	ProcessConsolidation BusinessProcess = "CONSOLIDATION"
)

// JournalEntry is a balanced (sum of debits == sum of credits) posting
// to the general ledger, generated from a source Document.
type JournalEntry struct {
	ID            string        `json:"id"`
	CompanyCode   string        `json:"company_code"`
	PostingDate   time.Time     `json:"posting_date"`
	FiscalYear    int           `json:"fiscal_year"`
	FiscalPeriod  int           `json:"fiscal_period"`
	Source        TransactionSource `json:"source,omitempty"`
	Process       BusinessProcess   `json:"process,omitempty"`
	SourceDocType DocumentType  `json:"source_doc_type"`
	SourceDocID   string        `json:"source_doc_id"`
	Lines         []JournalLine `json:"lines"`
	Description   string        `json:"description,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	// IsFraud marks an entry generated by the fraud-injection pipeline
	// (spec §6 fraud), carrying its ground-truth label through to the
	// output dataset for supervised-detection benchmarking.
	IsFraud   bool      `json:"is_fraud,omitempty"`
	FraudType FraudType `json:"fraud_type,omitempty"`
}

// Balanced reports whether the sum of debit lines equals the sum of
// credit lines, per currency. Mixed-currency entries are summed per
// currency independently (spec §4.4 invariant).
func (je JournalEntry) Balanced() bool {
	totals := map[Currency]decimal.Decimal{}
	for _, l := range je.Lines {
		sign := decimal.NewFromInt(1)
		if l.Type == Credit {
			sign = decimal.NewFromInt(-1)
		}
		totals[l.Amount.Currency] = totals[l.Amount.Currency].Add(l.Amount.Amount.Mul(sign))
	}
	for _, sum := range totals {
		if !sum.IsZero() {
			return false
		}
	}
	return true
}

// ----------------------------------------------------------------------
// Master data: Vendor, Customer, Material
// ----------------------------------------------------------------------

// PaymentTerms describes how many days after an invoice date payment is
// due, with an optional early-payment cash discount.
type PaymentTerms struct {
	NetDays          int             `json:"net_days"`
	DiscountDays     int             `json:"discount_days,omitempty"`
	DiscountPercent  decimal.Decimal `json:"discount_percent,omitempty"`
}

// Vendor is a supplier master record used by the P2P document flow.
type Vendor struct {
	ID           string       `json:"id"`
	CompanyCode  string       `json:"company_code"`
	Name         string       `json:"name"`
	Country      string       `json:"country"`
	Currency     Currency     `json:"currency"`
	PaymentTerms PaymentTerms `json:"payment_terms"`
	// PaymentBehavior skews simulated payment timing: negative values
	// tend to pay early, positive values tend to pay late (days offset
	// from the due date's expected value).
	PaymentBehaviorDaysOffset int `json:"payment_behavior_days_offset"`
}

// CreditProfile controls O2C credit-check behavior for a customer.
type CreditProfile struct {
	CreditLimit    Money `json:"credit_limit"`
	CurrentExposure Money `json:"current_exposure"`
}

// Customer is a buyer master record used by the O2C document flow.
type Customer struct {
	ID            string        `json:"id"`
	CompanyCode   string        `json:"company_code"`
	Name          string        `json:"name"`
	Country       string        `json:"country"`
	Currency      Currency      `json:"currency"`
	PaymentTerms  PaymentTerms  `json:"payment_terms"`
	Credit        CreditProfile `json:"credit"`
	// BadDebtPropensity in [0,1] is the probability a customer's
	// receivable is ultimately written off rather than collected.
	BadDebtPropensity float64 `json:"bad_debt_propensity"`
	// PaymentBehaviorDaysOffset skews simulated receipt timing the same
	// way Vendor.PaymentBehaviorDaysOffset does on the payment side:
	// negative values tend to pay early, positive values tend to pay
	// late (days offset from the due date's expected value).
	PaymentBehaviorDaysOffset int `json:"payment_behavior_days_offset"`
}

// MaterialType distinguishes stocked goods from services.
type MaterialType string

const (
	MaterialGoods    MaterialType = "GOODS"
	MaterialService  MaterialType = "SERVICE"
)

// Material is a purchasable/sellable item master record.
type Material struct {
	ID            string          `json:"id"`
	CompanyCode   string          `json:"company_code"`
	Description   string          `json:"description"`
	Type          MaterialType    `json:"type"`
	UnitPrice     Money           `json:"unit_price"`
	UnitCost      Money           `json:"unit_cost"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
}

// ----------------------------------------------------------------------
// Fixed assets
// ----------------------------------------------------------------------

// AssetClass categorizes a fixed asset for default depreciation rules.
// Machinery/MachineryEquipment and Furniture/FurnitureFixtures are
// recognized as equivalent aliases (see DESIGN.md open-question note);
// both map onto the same defaults below.
type AssetClass string

const (
	AssetBuildings             AssetClass = "BUILDINGS"
	AssetBuildingImprovements  AssetClass = "BUILDING_IMPROVEMENTS"
	AssetLand                  AssetClass = "LAND"
	AssetMachineryEquipment    AssetClass = "MACHINERY_EQUIPMENT"
	AssetMachinery             AssetClass = "MACHINERY"
	AssetComputerHardware      AssetClass = "COMPUTER_HARDWARE"
	AssetITEquipment           AssetClass = "IT_EQUIPMENT"
	AssetFurnitureFixtures     AssetClass = "FURNITURE_FIXTURES"
	AssetFurniture             AssetClass = "FURNITURE"
	AssetVehicles              AssetClass = "VEHICLES"
	AssetLeaseholdImprovements AssetClass = "LEASEHOLD_IMPROVEMENTS"
	AssetIntangibles           AssetClass = "INTANGIBLES"
	AssetSoftware              AssetClass = "SOFTWARE"
	AssetConstructionInProgress AssetClass = "CONSTRUCTION_IN_PROGRESS"
	AssetLowValueAssets        AssetClass = "LOW_VALUE_ASSETS"
)

// DepreciationMethod is the formula used to spread an asset's
// depreciable base over its useful life.
type DepreciationMethod string

const (
	DepStraightLine             DepreciationMethod = "STRAIGHT_LINE"
	DepDoubleDecliningBalance   DepreciationMethod = "DOUBLE_DECLINING_BALANCE"
	DepSumOfYearsDigits         DepreciationMethod = "SUM_OF_YEARS_DIGITS"
	DepUnitsOfProduction        DepreciationMethod = "UNITS_OF_PRODUCTION"
	DepMACRS                    DepreciationMethod = "MACRS"
	DepImmediateExpense         DepreciationMethod = "IMMEDIATE_EXPENSE"
	DepNone                     DepreciationMethod = "NONE"
)

// DefaultUsefulLifeMonths returns the class's standard useful life,
// grounded verbatim on the original implementation's asset-class table.
func (c AssetClass) DefaultUsefulLifeMonths() int {
	switch c {
	case AssetBuildings, AssetBuildingImprovements:
		return 480
	case AssetLand, AssetConstructionInProgress:
		return 0
	case AssetMachineryEquipment, AssetMachinery:
		return 120
	case AssetComputerHardware, AssetITEquipment:
		return 36
	case AssetFurnitureFixtures, AssetFurniture:
		return 84
	case AssetVehicles:
		return 60
	case AssetLeaseholdImprovements:
		return 120
	case AssetIntangibles, AssetSoftware:
		return 60
	case AssetLowValueAssets:
		return 12
	default:
		return 120
	}
}

// IsDepreciable reports whether assets of this class ever depreciate.
func (c AssetClass) IsDepreciable() bool {
	return c != AssetLand && c != AssetConstructionInProgress
}

// DefaultDepreciationMethod returns the class's standard method.
func (c AssetClass) DefaultDepreciationMethod() DepreciationMethod {
	switch c {
	case AssetBuildings, AssetBuildingImprovements, AssetLeaseholdImprovements:
		return DepStraightLine
	case AssetMachineryEquipment, AssetMachinery:
		return DepStraightLine
	case AssetComputerHardware, AssetITEquipment:
		return DepDoubleDecliningBalance
	case AssetFurnitureFixtures, AssetFurniture:
		return DepStraightLine
	case AssetVehicles:
		return DepDoubleDecliningBalance
	case AssetIntangibles, AssetSoftware:
		return DepStraightLine
	case AssetLowValueAssets:
		return DepImmediateExpense
	case AssetLand, AssetConstructionInProgress:
		return DepNone
	default:
		return DepStraightLine
	}
}

// AssetStatus is the lifecycle state of a fixed asset.
type AssetStatus string

const (
	AssetUnderConstruction AssetStatus = "UNDER_CONSTRUCTION"
	AssetActive            AssetStatus = "ACTIVE"
	AssetInactive          AssetStatus = "INACTIVE"
	AssetFullyDepreciated  AssetStatus = "FULLY_DEPRECIATED"
	AssetPendingDisposal   AssetStatus = "PENDING_DISPOSAL"
	AssetDisposed          AssetStatus = "DISPOSED"
)

// FixedAsset is a depreciable (or non-depreciable, e.g. land) capital
// asset master record.
type FixedAsset struct {
	AssetID              string             `json:"asset_id"`
	CompanyCode          string             `json:"company_code"`
	Description          string             `json:"description"`
	Class                AssetClass         `json:"asset_class"`
	AcquisitionDate      time.Time          `json:"acquisition_date"`
	CapitalizedDate      time.Time          `json:"capitalized_date"`
	AcquisitionCost      Money              `json:"acquisition_cost"`
	DepreciationMethod   DepreciationMethod `json:"depreciation_method"`
	UsefulLifeMonths     int                `json:"useful_life_months"`
	SalvageValue         Money              `json:"salvage_value"`
	AccumulatedDepreciation Money           `json:"accumulated_depreciation"`
	Status               AssetStatus        `json:"status"`
	VendorID             string             `json:"vendor_id,omitempty"`
	DisposalDate         *time.Time         `json:"disposal_date,omitempty"`
	DisposalProceeds     *Money             `json:"disposal_proceeds,omitempty"`
}

// NewFixedAsset builds an asset with class-default useful life and
// depreciation method, zero salvage value, and Active status —
// mirroring the original's FixedAsset::new constructor.
func NewFixedAsset(assetID, companyCode, description string, class AssetClass, acquisitionDate time.Time, cost Money) FixedAsset {
	return FixedAsset{
		AssetID:            assetID,
		CompanyCode:        companyCode,
		Description:        description,
		Class:              class,
		AcquisitionDate:    acquisitionDate,
		CapitalizedDate:    acquisitionDate,
		AcquisitionCost:    cost,
		DepreciationMethod: class.DefaultDepreciationMethod(),
		UsefulLifeMonths:   class.DefaultUsefulLifeMonths(),
		SalvageValue:       Zero(cost.Currency),
		AccumulatedDepreciation: Zero(cost.Currency),
		Status:             AssetActive,
	}
}

// NetBookValue returns acquisition cost less accumulated depreciation.
func (a FixedAsset) NetBookValue() Money {
	nbv, _ := a.AcquisitionCost.Sub(a.AccumulatedDepreciation)
	return nbv
}

// IsFullyDepreciated reports whether net book value has reached salvage.
func (a FixedAsset) IsFullyDepreciated() bool {
	cmp, err := a.NetBookValue().Cmp(a.SalvageValue)
	return err == nil && cmp <= 0
}

// MonthsSinceCapitalization counts whole civil months between the asset's
// capitalized date and asOf, floored at zero.
func (a FixedAsset) MonthsSinceCapitalization(asOf time.Time) int {
	if asOf.Before(a.CapitalizedDate) {
		return 0
	}
	cy, cm, _ := a.CapitalizedDate.Date()
	ay, am, _ := asOf.Date()
	months := (ay-cy)*12 + int(am) - int(cm)
	if months < 0 {
		return 0
	}
	return months
}

// RemainingUsefulLifeMonths returns useful life left as of asOf.
func (a FixedAsset) RemainingUsefulLifeMonths(asOf time.Time) int {
	remaining := a.UsefulLifeMonths - a.MonthsSinceCapitalization(asOf)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ----------------------------------------------------------------------
// Documents (P2P / O2C)
// ----------------------------------------------------------------------

// DocumentType identifies a document kind within the P2P or O2C chains.
type DocumentType string

const (
	DocPurchaseOrder   DocumentType = "PURCHASE_ORDER"
	DocGoodsReceipt    DocumentType = "GOODS_RECEIPT"
	DocVendorInvoice   DocumentType = "VENDOR_INVOICE"
	DocPayment         DocumentType = "PAYMENT"
	DocSalesOrder      DocumentType = "SALES_ORDER"
	DocDelivery        DocumentType = "DELIVERY"
	DocCustomerInvoice DocumentType = "CUSTOMER_INVOICE"
	DocReceipt         DocumentType = "RECEIPT"
)

// DocumentStatus is the shared lifecycle state progression used by
// both the P2P and O2C document chains.
type DocumentStatus string

const (
	DocOpen       DocumentStatus = "OPEN"
	DocPartial    DocumentStatus = "PARTIAL"
	DocCompleted  DocumentStatus = "COMPLETED"
	DocCancelled  DocumentStatus = "CANCELLED"
	DocBlocked    DocumentStatus = "BLOCKED" // e.g. three-way match failure, credit hold
)

// DocumentLine is one priced line of a document.
type DocumentLine struct {
	LineNo     int     `json:"line_no"`
	MaterialID string  `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  Money   `json:"unit_price"`
	TaxAmount  Money   `json:"tax_amount"`
}

// LineTotal returns quantity * unit price for the line, excluding tax.
func (l DocumentLine) LineTotal() Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// Document is a generic header for any node in the P2P/O2C chains.
// References link a document back to its chain predecessor(s); a
// GoodsReceipt references one PurchaseOrder, a VendorInvoice may
// reference several GoodsReceipts, etc. (spec §3).
type Document struct {
	ID           string         `json:"id"`
	Type         DocumentType   `json:"type"`
	CompanyCode  string         `json:"company_code"`
	CounterpartyID string       `json:"counterparty_id"` // vendor or customer id
	DocumentDate time.Time      `json:"document_date"`
	Status       DocumentStatus `json:"status"`
	Lines        []DocumentLine `json:"lines"`
	References   []string       `json:"references,omitempty"` // predecessor document ids
	Currency     Currency       `json:"currency"`
	// DiscountTaken is the early-payment cash discount applied to a
	// Payment or Receipt document, kept separate from the gross line
	// amount so the full invoice/AR can be cleared while the discount
	// posts to its own income/expense account (spec §4.4).
	DiscountTaken Money `json:"discount_taken,omitempty"`
}

// GrossTotal sums line totals plus tax across the document.
func (d Document) GrossTotal() (Money, error) {
	total := Zero(d.Currency)
	for _, l := range d.Lines {
		t, err := total.Add(l.LineTotal())
		if err != nil {
			return Money{}, err
		}
		total, err = t.Add(l.TaxAmount)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// ----------------------------------------------------------------------
// Periods & Company
// ----------------------------------------------------------------------

// PeriodStatus is the open/closed state of a fiscal period.
type PeriodStatus string

const (
	PeriodOpen       PeriodStatus = "OPEN"
	PeriodSoftClosed PeriodStatus = "SOFT_CLOSED"
	PeriodHardClosed PeriodStatus = "HARD_CLOSED"
)

// Period is one fiscal period of one company's books.
type Period struct {
	CompanyCode string         `json:"company_code"`
	FiscalYear  int            `json:"fiscal_year"`
	FiscalPeriod int           `json:"fiscal_period"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Status      PeriodStatus   `json:"status"`
}

// Company is a legal entity participating in the generated ledger,
// optionally owned by a parent within a consolidation group (§4.7).
type Company struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	FunctionalCurrency Currency `json:"functional_currency"`
	Region         Region   `json:"region"`
	FiscalCalendar FiscalCalendar `json:"-"`
	ParentCode     string   `json:"parent_code,omitempty"`
	OwnershipPercent decimal.Decimal `json:"ownership_percent,omitempty"`
}

// ----------------------------------------------------------------------
// Running balances
// ----------------------------------------------------------------------

// AccountBalance is the closing balance of one account in one fiscal
// period, expressed on the account's natural (debit- or credit-normal)
// side.
type AccountBalance struct {
	CompanyCode  string `json:"company_code"`
	AccountCode  string `json:"account_code"`
	FiscalYear   int    `json:"fiscal_year"`
	FiscalPeriod int    `json:"fiscal_period"`
	OpeningBalance Money `json:"opening_balance"`
	PeriodDebits   Money `json:"period_debits"`
	PeriodCredits  Money `json:"period_credits"`
	ClosingBalance Money `json:"closing_balance"`
}

// BalanceSnapshot is a point-in-time export of every account balance
// for a company as of a fiscal period, used as the basis for a trial
// balance or consolidation run.
type BalanceSnapshot struct {
	CompanyCode  string           `json:"company_code"`
	FiscalYear   int              `json:"fiscal_year"`
	FiscalPeriod int              `json:"fiscal_period"`
	Balances     []AccountBalance `json:"balances"`
	TakenAt      time.Time        `json:"taken_at"`
}

// ----------------------------------------------------------------------
// Eliminations
// ----------------------------------------------------------------------

// EliminationType categorizes a consolidation elimination entry.
type EliminationType string

const (
	ElimIntercompanyBalance         EliminationType = "IC_BALANCE"
	ElimIntercompanyRevenueExpense  EliminationType = "IC_REVENUE_EXPENSE"
	ElimUnrealizedProfitInInventory EliminationType = "UNREALIZED_PROFIT_INVENTORY"
	ElimUnrealizedProfitInFixedAssets EliminationType = "UNREALIZED_PROFIT_FIXED_ASSETS"
	ElimInvestmentEquity   EliminationType = "INVESTMENT_EQUITY"
	ElimIntercompanyDividends EliminationType = "IC_DIVIDENDS"
	ElimIntercompanyLoans    EliminationType = "IC_LOANS"
	ElimIntercompanyInterest EliminationType = "IC_INTEREST"
	ElimMinorityInterest   EliminationType = "MINORITY_INTEREST"
	ElimGoodwill           EliminationType = "GOODWILL"
	ElimCurrencyTranslation EliminationType = "CURRENCY_TRANSLATION"
)

// ConsolidationMethod is how a subsidiary's results are combined into
// the parent's consolidated financials.
type ConsolidationMethod string

const (
	ConsolidationFull         ConsolidationMethod = "FULL"
	ConsolidationEquity       ConsolidationMethod = "EQUITY"
	ConsolidationProportional ConsolidationMethod = "PROPORTIONAL"
)

// OwnershipLink declares one parent-subsidiary relationship within an
// OwnershipStructure.
type OwnershipLink struct {
	ParentCode      string              `json:"parent_code"`
	SubsidiaryCode  string              `json:"subsidiary_code"`
	OwnershipPercent decimal.Decimal    `json:"ownership_percent"`
	Method          ConsolidationMethod `json:"method"`
}

// OwnershipStructure declares the full group hierarchy consolidation
// operates over (spec §4.7).
type OwnershipStructure struct {
	GroupCode string          `json:"group_code"`
	Links     []OwnershipLink `json:"links"`
}

// LinkFor returns the ownership link for subsidiaryCode, if declared.
func (s OwnershipStructure) LinkFor(subsidiaryCode string) (OwnershipLink, bool) {
	for _, l := range s.Links {
		if l.SubsidiaryCode == subsidiaryCode {
			return l, true
		}
	}
	return OwnershipLink{}, false
}

// ConsolidationJournal is the set of elimination entries produced for
// one group/fiscal-period consolidation run.
type ConsolidationJournal struct {
	GroupCode    string              `json:"group_code"`
	FiscalYear   int                 `json:"fiscal_year"`
	FiscalPeriod int                 `json:"fiscal_period"`
	Entries      []EliminationEntry  `json:"entries"`
}

// IntercompanyBalance is one side of a matched intercompany
// receivable/payable pair used for IC balance elimination.
type IntercompanyBalance struct {
	CompanyCode    string `json:"company_code"`
	CounterpartyCode string `json:"counterparty_code"`
	ReceivableAccount string `json:"receivable_account"`
	PayableAccount    string `json:"payable_account"`
	ReceivableBalance Money `json:"receivable_balance"`
	PayableBalance    Money `json:"payable_balance"`
}

// IntercompanyTransfer is one aggregated intercompany sale of goods
// or services between two group members in a fiscal period, used for
// revenue/expense elimination and unrealized-profit calculations.
type IntercompanyTransfer struct {
	SellerCode    string `json:"seller_code"`
	BuyerCode     string `json:"buyer_code"`
	TransactionType string `json:"transaction_type"` // "GOODS" or "SERVICE"
	Amount        Money  `json:"amount"`
	// MarkupPercent is the seller's average markup on this transfer,
	// used to back out unrealized profit still sitting in the buyer's
	// inventory or fixed assets at period end.
	MarkupPercent decimal.Decimal `json:"markup_percent"`
	// RemainingPercent is the fraction of the transferred goods still
	// held (not yet resold to a third party, or not yet depreciated
	// through, for fixed-asset transfers) at period end.
	RemainingPercent decimal.Decimal `json:"remaining_percent"`
}

// EliminationEntry is a consolidation-level adjustment removing the
// effect of an intercompany transaction or ownership structure from
// the consolidated trial balance.
type EliminationEntry struct {
	ID           string          `json:"id"`
	GroupCode    string          `json:"group_code"`
	Type         EliminationType `json:"type"`
	FiscalYear   int             `json:"fiscal_year"`
	FiscalPeriod int             `json:"fiscal_period"`
	Lines        []JournalLine   `json:"lines"`
	Description  string          `json:"description,omitempty"`
}
