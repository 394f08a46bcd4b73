package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	synthledger "synthledger"
)

func main() {
	fmt.Println("Synthetic Enterprise-Accounting Data Generator")
	fmt.Println("===============================================")

	dbFile := "demo_run.db"
	os.Remove(dbFile)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	storage, err := synthledger.NewStorage(dbFile)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer storage.Close()
	defer os.Remove(dbFile)

	cfg := synthledger.GeneratorConfig{
		Global: synthledger.GlobalConfig{
			Seed:          42,
			HasSeed:       true,
			StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodMonths:  12,
			GroupCurrency: "USD",
			Parallel:      true,
		},
		Companies: []synthledger.CompanyConfig{
			{
				Code: "US01", Name: "Acme Holdings US", Currency: "USD", Country: synthledger.RegionUS,
				AnnualTransactionVolume: synthledger.AnnualVolume{Name: "TenK"}, VolumeWeight: 0.6,
			},
			{
				Code: "DE01", Name: "Acme GmbH", Currency: "EUR", Country: synthledger.RegionDE,
				AnnualTransactionVolume: synthledger.AnnualVolume{Name: "TenK"}, VolumeWeight: 0.4,
				ParentCode: "US01", OwnershipPercent: 0.8,
			},
		},
		ChartOfAccounts: synthledger.ChartOfAccountsConfig{Complexity: synthledger.ChartMedium},
		Transactions: synthledger.TransactionConfig{
			SourceDistribution: map[synthledger.TransactionSource]float64{
				synthledger.SourceManual:    0.3,
				synthledger.SourceAutomated: 0.7,
			},
			BenfordEnabled: true,
		},
		Fingerprint: synthledger.FingerprintConfig{
			Level: synthledger.PrivacyStandard, KAnonymity: 5, MinRows: 10,
		},
		DocumentFlows: synthledger.DocumentFlowConfig{
			PartialDeliveryRate:    0.15,
			CreditCheckFailureRate: 0.05,
		},
		Intercompany: synthledger.IntercompanyConfig{
			Enabled: true, TransferRate: 0.3, MarkupPercent: 15,
		},
		Balance: synthledger.BalanceConfig{
			RollforwardEnabled: true,
			AccruedExpenseRate: 0.02,
			AccruedRevenueRate: 0.01,
			TaxRate:            0.21,
		},
		Output: synthledger.OutputConfig{
			Mode:               synthledger.OutputModeFile,
			Formats:            []synthledger.OutputFormat{synthledger.FormatJSON, synthledger.FormatCSV},
			Compression:        synthledger.CompressionGzip,
			BatchSize:          5_000,
			PartitionByCompany: true,
		},
	}

	fmt.Println("\nStep 1: Validating configuration")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	fmt.Println("configuration valid")

	engine, err := synthledger.NewEngine(logger, cfg, storage)
	if err != nil {
		log.Fatalf("failed to construct engine: %v", err)
	}
	defer engine.Close()

	fmt.Println("\nStep 2: Running generation (master data, P2P/O2C document flows, period close, consolidation, fingerprinting)")
	result, err := engine.Run(context.Background())
	if err != nil {
		log.Fatalf("generation run failed: %v", err)
	}

	fmt.Printf("\nStep 3: Results\n")
	fmt.Printf("  journal entries posted: %d\n", len(result.JournalEntries))
	fmt.Printf("  balance snapshots taken: %d\n", len(result.BalanceSnapshots))
	fmt.Printf("  period close runs: %d\n", len(result.CloseRuns))
	fmt.Printf("  trial balances built: %d\n", len(result.TrialBalances))
	fmt.Printf("  non-fatal issues recorded: %d\n", len(result.Issues))

	if result.Consolidated != nil {
		fmt.Printf("\nConsolidated trial balance for group %s:\n", result.Consolidated.CompanyCode)
		fmt.Printf("  total debits:  %s\n", result.Consolidated.TotalDebits)
		fmt.Printf("  total credits: %s\n", result.Consolidated.TotalCredits)
		fmt.Printf("  equation valid: %v\n", result.Consolidated.IsEquationValid)
	}

	if len(result.TrialBalances) > 0 {
		last := result.TrialBalances[len(result.TrialBalances)-1]
		fmt.Printf("\nTrial balance for %s, period %d/%d:\n", last.CompanyCode, last.FiscalYear, last.FiscalPeriod)
		for _, line := range last.Lines {
			fmt.Printf("  %-10s %-24s dr %12s  cr %12s\n", line.AccountCode, line.AccountName, line.Debit, line.Credit)
		}
		fmt.Printf("  equation valid: %v\n", last.IsEquationValid)
	}

	for company, fp := range result.Fingerprints {
		fmt.Printf("\nFingerprint for %s: %d rows, %d columns, epsilon spent %.3f\n",
			company, fp.Manifest.RowCount, fp.Manifest.ColumnCount, fp.Manifest.EpsilonSpent)
		sealed, err := synthledger.SealFingerprint(fp, nil)
		if err != nil {
			log.Fatalf("failed to seal fingerprint: %v", err)
		}
		fmt.Printf("  sealed container: %d bytes\n", len(sealed))
		if _, err := synthledger.OpenFingerprint(sealed, nil); err != nil {
			log.Fatalf("failed to round-trip fingerprint: %v", err)
		}
		fmt.Println("  round-trip verified")
	}

	outDir := "demo_output"
	defer os.RemoveAll(outDir)
	if err := synthledger.WriteOutput(cfg.Output, outDir, result); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
	fmt.Printf("\nStep 4: Exported journal entries to %s (%s, compressed %s)\n", outDir, cfg.Output.Formats, cfg.Output.Compression)

	fmt.Println("\nDone.")
}
