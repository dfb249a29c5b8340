package restapi

import (
	"net/http"
	"sort"

	"wallet_state/internal/accounts"
	"wallet_state/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// PortfolioView is the combined portfolio as served over HTTP.
type PortfolioView struct {
	TotalMainCurrencyValue float64       `json:"totalMainCurrencyValue"`
	Assets                 []BalanceView `json:"assets"`
	Accounts               int           `json:"accounts"`
	Loading                int           `json:"loading"`
}

// GetPortfolio handles GET /portfolio. Assets are summed over the accounts
// tracked at request time.
func (h *Handler) GetPortfolio(c *gin.Context) {
	state := h.directory.Snapshot()
	portfolio := accounts.LivePortfolio(state, h.prices)

	view := PortfolioView{
		TotalMainCurrencyValue: portfolio.TotalMainCurrencyValue,
		Assets:                 make([]BalanceView, 0, len(portfolio.Assets)),
		Accounts:               len(accounts.Accounts(state)),
		Loading:                len(accounts.LoadingAddresses(state)),
	}
	for _, a := range portfolio.Assets {
		view.Assets = append(view.Assets, amountView(a))
	}
	c.JSON(http.StatusOK, view)
}

// GetPollErrors handles GET /poll/errors.
func (h *Handler) GetPollErrors(c *gin.Context) {
	errs := []entity.PollError{}
	if h.poller != nil {
		errs = append(errs, h.poller.LastErrors()...)
	}
	c.JSON(http.StatusOK, gin.H{"errors": errs})
}

func sortedSymbols(balances map[string]entity.AssetBalance) []string {
	symbols := make([]string, 0, len(balances))
	for symbol := range balances {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
