package synthledger

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// buildMasterData populates the engine's MasterDataPool: one Company
// per configured entity, plus vendors/customers/materials/fixed
// assets sized off each company's configured annual transaction
// volume. Grounded on the teacher's per-company onboarding flow
// (multi_company.go) generalized into deterministic synthetic
// generation instead of operator-entered data.
func (e *Engine) buildMasterData() error {
	for _, co := range e.cfg.Companies {
		cal := DefaultFiscalCalendar()
		company := Company{
			Code:               co.Code,
			Name:               co.Name,
			FunctionalCurrency: co.Currency,
			Region:             co.Country,
			FiscalCalendar:     cal,
			ParentCode:         co.ParentCode,
		}
		if co.OwnershipPercent > 0 {
			company.OwnershipPercent = decimal.NewFromFloat(co.OwnershipPercent)
		}
		e.pool.AddCompany(company)

		stream := e.root.DeriveStream("masterdata", hashString(co.Code))

		scale := masterDataScale(co.AnnualTransactionVolume.Count())
		scale = applyMasterDataOverrides(scale, e.cfg.MasterData)
		vendors := GenerateVendors(stream, e.ids, co.Code, co.Currency, scale.vendors)
		customers := GenerateCustomers(stream, e.ids, co.Code, co.Currency, scale.customers)
		materials := GenerateMaterials(stream, e.ids, co.Code, co.Currency, scale.materials)
		for _, v := range vendors {
			e.pool.AddVendor(v)
		}
		for _, c := range customers {
			e.pool.AddCustomer(c)
		}
		for _, m := range materials {
			e.pool.AddMaterial(m)
		}

		for i := 0; i < scale.assets; i++ {
			class := assetClassCycle[i%len(assetClassCycle)]
			assetID := e.ids.Next(PrefixFixedAsset, co.Code)
			cost := MustParseMoney(strconv.Itoa(5_000+stream.IntN(95_000)), co.Currency)
			acquired := e.cfg.Global.StartDate.AddDate(0, -stream.IntN(24), 0)
			e.pool.AddAsset(NewFixedAsset(assetID, co.Code, fmt.Sprintf("%s unit %d", class, i+1), class, acquired, cost))
		}
	}
	return nil
}

type masterDataVolumes struct {
	vendors, customers, materials, assets int
}

// masterDataScale maps an annual transaction-volume count to master
// data population sizes; bigger companies carry a proportionally
// larger (but sublinear) vendor/customer/material base.
func masterDataScale(annualVolume int) masterDataVolumes {
	switch {
	case annualVolume >= 1_000_000:
		return masterDataVolumes{vendors: 50, customers: 80, materials: 120, assets: 30}
	case annualVolume >= 100_000:
		return masterDataVolumes{vendors: 20, customers: 35, materials: 60, assets: 15}
	case annualVolume >= 10_000:
		return masterDataVolumes{vendors: 8, customers: 15, materials: 25, assets: 6}
	default:
		return masterDataVolumes{vendors: 3, customers: 5, materials: 10, assets: 2}
	}
}

// applyMasterDataOverrides replaces scale's volume-based defaults with
// cfg's explicit counts wherever cfg names one (spec §6 master_data).
func applyMasterDataOverrides(scale masterDataVolumes, cfg MasterDataConfig) masterDataVolumes {
	if cfg.VendorCount > 0 {
		scale.vendors = cfg.VendorCount
	}
	if cfg.CustomerCount > 0 {
		scale.customers = cfg.CustomerCount
	}
	if cfg.MaterialCount > 0 {
		scale.materials = cfg.MaterialCount
	}
	if cfg.FixedAssetCount > 0 {
		scale.assets = cfg.FixedAssetCount
	}
	return scale
}

var assetClassCycle = []AssetClass{
	AssetMachineryEquipment, AssetComputerHardware, AssetFurnitureFixtures, AssetVehicles, AssetSoftware,
}

func hashString(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// consolidationResult bundles the consolidated trial balance and the
// elimination journal that produced it.
type consolidationResult struct {
	tb      *TrialBalance
	journal *ConsolidationJournal
}

// runConsolidation builds an ownership structure from configured
// parent/subsidiary links and, when any exist, runs the eliminations
// and produces a consolidated trial balance for the most recent
// period in result. Returns (nil, nil) when no company declares a
// ParentCode (nothing to consolidate).
func (e *Engine) runConsolidation(result RunResult) (*consolidationResult, error) {
	var links []OwnershipLink
	groupCode := ""
	for _, co := range e.cfg.Companies {
		if co.ParentCode == "" {
			continue
		}
		groupCode = co.ParentCode
		links = append(links, OwnershipLink{
			ParentCode: co.ParentCode, SubsidiaryCode: co.Code,
			OwnershipPercent: decimal.NewFromFloat(co.OwnershipPercent), Method: ConsolidationFull,
		})
	}
	if len(links) == 0 {
		return nil, nil
	}
	structure := OwnershipStructure{GroupCode: groupCode, Links: links}

	latestByCompany := make(map[string]TrialBalance)
	for _, tb := range result.TrialBalances {
		cur, ok := latestByCompany[tb.CompanyCode]
		if !ok || (tb.FiscalYear > cur.FiscalYear) || (tb.FiscalYear == cur.FiscalYear && tb.FiscalPeriod > cur.FiscalPeriod) {
			latestByCompany[tb.CompanyCode] = tb
		}
	}

	equities := make(map[string]SubsidiaryEquity)
	for _, link := range links {
		tb, ok := latestByCompany[link.SubsidiaryCode]
		if !ok {
			continue
		}
		equity, err := tb.CategorySubtotals[AccountEquity].Add(tb.CategorySubtotals[AccountIncome])
		if err != nil {
			return nil, err
		}
		// No acquisition is posted on the parent's books, so the
		// investment is carried at the parent's share of the
		// subsidiary's equity and no goodwill arises.
		equities[link.SubsidiaryCode] = SubsidiaryEquity{
			SubsidiaryCode:   link.SubsidiaryCode,
			CommonStock:      tb.CategorySubtotals[AccountEquity],
			RetainedEarnings: Zero(tb.TotalDebits.Currency),
			NetIncome:        tb.CategorySubtotals[AccountIncome],
			InvestmentBalance: equity.Mul(link.OwnershipPercent),
		}
	}

	parentTB, hasParent := latestByCompany[groupCode]
	if !hasParent {
		return nil, nil
	}

	consolidator := &Consolidator{IDs: e.ids, Issues: e.issues}
	journal, err := consolidator.RunConsolidation(structure, parentTB.FiscalYear, parentTB.FiscalPeriod, result.IntercompanyBalances, result.IntercompanyTransfers, equities)
	if err != nil {
		return nil, err
	}

	var companyTBs []TrialBalance
	accountNames := make(map[string]string)
	for _, a := range e.pool.AllAccounts() {
		accountNames[a.Code] = a.Name
	}
	for _, link := range links {
		if tb, ok := latestByCompany[link.SubsidiaryCode]; ok {
			companyTBs = append(companyTBs, tb)
		}
	}
	companyTBs = append(companyTBs, parentTB)

	consolidated, err := ConsolidatedTrialBalance(companyTBs, groupCode+"-CONSOLIDATED", journal.Entries, accountNames)
	if err != nil {
		return nil, err
	}

	return &consolidationResult{tb: &consolidated, journal: &journal}, nil
}

// extractFingerprints runs the L9 fingerprint pipeline over the run's
// journal entry lines, one fingerprint per company.
func (e *Engine) extractFingerprints(result RunResult) (map[string]Fingerprint, error) {
	byCompany := make(map[string][]JournalEntry)
	for _, je := range result.JournalEntries {
		byCompany[je.CompanyCode] = append(byCompany[je.CompanyCode], je)
	}

	headers := []string{"company_code", "fiscal_year", "fiscal_period", "source_doc_type", "account_code", "entry_type", "amount"}
	out := make(map[string]Fingerprint)

	for companyCode, entries := range byCompany {
		var rows [][]string
		for _, je := range entries {
			for _, l := range je.Lines {
				rows = append(rows, []string{
					je.CompanyCode,
					strconv.Itoa(je.FiscalYear),
					strconv.Itoa(je.FiscalPeriod),
					string(je.SourceDocType),
					l.AccountCode,
					string(l.Type),
					l.Amount.Amount.String(),
				})
			}
		}
		if len(rows) == 0 {
			continue
		}

		extractor := &FingerprintExtractor{Config: ExtractionConfig{
			Fingerprint:         e.cfg.Fingerprint,
			ExtractCorrelations: true,
			Rng:                 e.root.DeriveStream("fingerprint", hashString(companyCode)),
		}}

		fp, err := extractor.ExtractFromMemory(companyCode, headers, rows)
		if err != nil {
			return nil, fmt.Errorf("company %s: %w", companyCode, err)
		}
		out[companyCode] = fp
	}

	return out, nil
}

