package accounts

import (
	"wallet_state/internal/domain/entity"
	"wallet_state/internal/pkg/utils"
)

// PriceSource resolves the main-currency price of one whole unit of a symbol.
type PriceSource interface {
	PriceBySymbol(symbol string) (float64, bool)
}

// Accounts returns every ready record in ascending address order.
func Accounts(s State) []entity.AccountRecord {
	records := make([]entity.AccountRecord, 0, s.Len())
	s.Each(func(_ string, entry entity.AccountState) {
		if ready, ok := entry.(entity.Ready); ok {
			records = append(records, ready.Record)
		}
	})
	return records
}

// LoadingAddresses returns the addresses still waiting for data.
func LoadingAddresses(s State) []string {
	var out []string
	s.Each(func(address string, entry entity.AccountState) {
		if _, ok := entry.(entity.Loading); ok {
			out = append(out, address)
		}
	})
	return out
}

// TrackedAddresses returns every tracked address, loading or ready.
func TrackedAddresses(s State) []string {
	out := make([]string, 0, s.Len())
	s.Each(func(address string, _ entity.AccountState) {
		out = append(out, address)
	})
	return out
}

// Account returns the ready record for address.
func Account(s State, address string) (entity.AccountRecord, bool) {
	entry, ok := s.Entry(address)
	if !ok {
		return entity.AccountRecord{}, false
	}
	ready, ok := entry.(entity.Ready)
	if !ok {
		return entity.AccountRecord{}, false
	}
	return ready.Record, true
}

// Portfolio returns the combined assets with their total value. The assets are
// the ones computed by the last balance update, so an account deleted since
// then is still counted; use LivePortfolio for a view of the current records.
// Symbols the price source does not know contribute nothing to the total. A
// nil source yields a zero total.
func Portfolio(s State, prices PriceSource) entity.CombinedPortfolio {
	return valued(s.CombinedAssets(), prices)
}

// LivePortfolio is Portfolio with the assets folded from the records tracked
// in s right now.
func LivePortfolio(s State, prices PriceSource) entity.CombinedPortfolio {
	return valued(combineAssets(s), prices)
}

func valued(assets []entity.AssetAmount, prices PriceSource) entity.CombinedPortfolio {
	total := 0.0
	if prices != nil {
		for _, a := range assets {
			price, ok := prices.PriceBySymbol(a.Asset.Symbol)
			if !ok {
				continue
			}
			total += utils.ToFloat(a.Amount, a.Asset.Decimals) * price
		}
	}
	return entity.CombinedPortfolio{TotalMainCurrencyValue: total, Assets: assets}
}

// FormatAmount renders a base-unit amount in whole units.
func FormatAmount(amount entity.AssetAmount) string {
	return utils.FormatBigInt(amount.Amount, amount.Asset.Decimals)
}
