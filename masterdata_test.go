package synthledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMasterDataPoolAllAccountsFlattensAcrossCompanies(t *testing.T) {
	pool := NewMasterDataPool()
	pool.AddCompany(Company{Code: "C1", FunctionalCurrency: "USD"})
	pool.AddCompany(Company{Code: "C2", FunctionalCurrency: "EUR"})

	all := pool.AllAccounts()
	require.Len(t, all, len(pool.Accounts["C1"])+len(pool.Accounts["C2"]))

	seen := map[string]bool{}
	for _, a := range all {
		seen[a.ID] = true
	}
	require.True(t, seen["C1-100000"])
	require.True(t, seen["C2-100000"])
}

func TestMasterDataPoolDepreciableAssetsFiltersByStatus(t *testing.T) {
	pool := NewMasterDataPool()
	ids := NewIDAllocator()

	active := NewFixedAsset(ids.Next(PrefixFixedAsset, "C1"), "C1", "Unit 1", AssetMachineryEquipment, mustDate(2024, 1, 1), MustParseMoney("10000", "USD"))
	pool.AddAsset(active)

	nonDepreciable := NewFixedAsset(ids.Next(PrefixFixedAsset, "C1"), "C1", "Land", AssetLand, mustDate(2024, 1, 1), MustParseMoney("50000", "USD"))
	pool.AddAsset(nonDepreciable)

	out := pool.DepreciableAssets()
	require.Len(t, out, 1)
	require.Equal(t, AssetMachineryEquipment, out[0].Class)
}
