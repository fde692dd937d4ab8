// Package assets moves value between principals and the ledger's custody.
package assets

import (
	"context"
	"sync"

	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// Transfer failures
var (
	ErrInsufficientBalance   = &models.Error{Kind: models.KindInvalidState, Code: "insufficient_balance", Message: "insufficient balance"}
	ErrInsufficientAllowance = &models.Error{Kind: models.KindInvalidState, Code: "insufficient_allowance", Message: "insufficient allowance"}
	ErrInsufficientCustody   = &models.Error{Kind: models.KindInvalidState, Code: "insufficient_custody", Message: "custody does not hold enough of the asset"}
	ErrNativeApproval        = &models.Error{Kind: models.KindInvalidArgument, Code: "native_approval", Message: "native value is sent with the call and needs no allowance"}
)

type holding struct {
	asset  models.Address
	holder models.Address
}

// Vault is an in-process custody of native value and tokens. Principals hold
// balances per asset; token pulls additionally consume an allowance the
// holder granted to custody, native pulls do not.
type Vault struct {
	mu         sync.Mutex
	balances   map[holding]models.Amount
	allowances map[holding]models.Amount
	custody    map[models.Address]models.Amount
}

// NewVault creates an empty vault
func NewVault() *Vault {
	return &Vault{
		balances:   make(map[holding]models.Amount),
		allowances: make(map[holding]models.Amount),
		custody:    make(map[models.Address]models.Amount),
	}
}

// Mint credits amount of asset to a principal
func (v *Vault) Mint(asset, to models.Address, amount models.Amount) error {
	if to.IsZero() {
		return models.ErrInvalidAddress.With("address", to)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	k := holding{asset, to}
	v.balances[k] = v.balances[k].Add(amount)
	return nil
}

// Approve sets the allowance custody may pull from holder in asset
func (v *Vault) Approve(asset, holder models.Address, amount models.Amount) error {
	if asset.IsNative() {
		return ErrNativeApproval
	}
	if holder.IsZero() {
		return models.ErrInvalidAddress.With("address", holder)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.allowances[holding{asset, holder}] = amount
	return nil
}

// BalanceOf returns what holder owns of asset outside custody
func (v *Vault) BalanceOf(asset, holder models.Address) models.Amount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[holding{asset, holder}]
}

// Allowance returns what custody may still pull from holder in asset
func (v *Vault) Allowance(asset, holder models.Address) models.Amount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.allowances[holding{asset, holder}]
}

// CustodyBalance returns what custody holds of asset
func (v *Vault) CustodyBalance(asset models.Address) models.Amount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.custody[asset]
}

// Pull moves amount of asset from a principal into custody
func (v *Vault) Pull(ctx context.Context, asset, from models.Address, amount models.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	k := holding{asset, from}
	remaining, ok := v.balances[k].Sub(amount)
	if !ok {
		return ErrInsufficientBalance.With("asset", asset).With("holder", from)
	}

	if !asset.IsNative() {
		allowance, ok := v.allowances[k].Sub(amount)
		if !ok {
			return ErrInsufficientAllowance.With("asset", asset).With("holder", from)
		}
		v.allowances[k] = allowance
	}

	v.balances[k] = remaining
	v.custody[asset] = v.custody[asset].Add(amount)
	return nil
}

// Push moves amount of asset from custody to a principal
func (v *Vault) Push(ctx context.Context, asset, to models.Address, amount models.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	remaining, ok := v.custody[asset].Sub(amount)
	if !ok {
		return ErrInsufficientCustody.With("asset", asset)
	}

	v.custody[asset] = remaining
	k := holding{asset, to}
	v.balances[k] = v.balances[k].Add(amount)
	return nil
}
