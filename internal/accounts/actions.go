package accounts

import "wallet_state/internal/domain/entity"

// Action is a state change request for the account directory.
type Action interface {
	apply(State) State
}

// LoadAccount starts tracking an address.
type LoadAccount struct {
	Address string
}

// DeleteAccount stops tracking an address.
type DeleteAccount struct {
	Address string
}

// UpdateAccountBalance merges a batch of balances.
type UpdateAccountBalance struct {
	Balances []entity.AssetBalance
}

// RefreshBalances merges polled balances into accounts that are still
// tracked. Unlike UpdateAccountBalance it never creates a record.
type RefreshBalances struct {
	Balances []entity.AssetBalance
}

// UpdateAccountName attaches a resolved ENS name.
type UpdateAccountName struct {
	Address string
	Network entity.NetworkDefinition
	Name    string
}

// UpdateENSAvatar attaches a resolved ENS avatar.
type UpdateENSAvatar struct {
	Address   string
	Network   entity.NetworkDefinition
	AvatarURL string
}

func (a LoadAccount) apply(s State) State   { return s.LoadAccount(a.Address) }
func (a DeleteAccount) apply(s State) State { return s.DeleteAccount(a.Address) }

func (a UpdateAccountBalance) apply(s State) State {
	return s.UpdateAccountBalance(a.Balances)
}

func (a RefreshBalances) apply(s State) State {
	return s.RefreshBalances(a.Balances)
}

func (a UpdateAccountName) apply(s State) State {
	return s.UpdateAccountName(a.Address, a.Network, a.Name)
}

func (a UpdateENSAvatar) apply(s State) State {
	return s.UpdateENSAvatar(a.Address, a.Network, a.AvatarURL)
}

// Reduce applies action to state. A nil action returns state unchanged.
func Reduce(state State, action Action) State {
	if action == nil {
		return state
	}
	return action.apply(state)
}

// ActionName returns a short label for an action, used in logs and metrics.
func ActionName(action Action) string {
	switch action.(type) {
	case LoadAccount:
		return "load_account"
	case DeleteAccount:
		return "delete_account"
	case UpdateAccountBalance:
		return "update_account_balance"
	case RefreshBalances:
		return "refresh_balances"
	case UpdateAccountName:
		return "update_account_name"
	case UpdateENSAvatar:
		return "update_ens_avatar"
	default:
		return "unknown"
	}
}
