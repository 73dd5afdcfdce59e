package rewards

import (
	"math/big"
	"time"

	"marketnet/core/events"
	"marketnet/core/types"
	"marketnet/native/market"
)

type engineState interface {
	BonusPut(*Bonus) error
	BonusGet(id [32]byte) (*Bonus, bool, error)
	BonusDelete(id [32]byte) error
	MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error)
	BountyPoolBalance(marketplace [32]byte, asset string) (*big.Int, error)
	SetBountyPoolBalance(marketplace [32]byte, asset string, amount *big.Int) error
	BountyVaultAddress() [20]byte
	Transfer(from, to [20]byte, asset string, amount *big.Int) error
}

type rewardsEvent struct {
	evt *types.Event
}

func (e rewardsEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e rewardsEvent) Event() *types.Event { return e.evt }

// Engine tracks per-principal promotional bonus and the marketplace bounty
// pools backing it. Accrual never conjures value: every accrued unit was
// first deposited into the pool by the marketplace authority, and the pool
// balance stays >= the sum of outstanding bonus balances.
type Engine struct {
	st      engineState
	emitter events.Emitter
	nowFn   func() int64
}

func NewEngine(st engineState) *Engine {
	return &Engine{
		st:      st,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(rewardsEvent{evt: evt})
}

func (e *Engine) marketplace(id [32]byte) (*market.Marketplace, error) {
	mkt, exists, err := e.st.MarketplaceGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrMarketplaceGone
	}
	return mkt, nil
}

// FundBounty moves reward-asset funds from the marketplace authority into
// the bounty pool. Only the authority may fund.
func (e *Engine) FundBounty(caller [20]byte, marketplaceID [32]byte, amount *big.Int) error {
	mkt, err := e.marketplace(marketplaceID)
	if err != nil {
		return err
	}
	if mkt.Authority != caller {
		return ErrUnauthorized
	}
	if mkt.Rewards.RewardAsset == "" {
		return ErrNoRewardAsset
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.st.Transfer(caller, e.st.BountyVaultAddress(), mkt.Rewards.RewardAsset, amount); err != nil {
		return err
	}
	pool, err := e.st.BountyPoolBalance(marketplaceID, mkt.Rewards.RewardAsset)
	if err != nil {
		return err
	}
	pool = new(big.Int).Add(pool, amount)
	if err := e.st.SetBountyPoolBalance(marketplaceID, mkt.Rewards.RewardAsset, pool); err != nil {
		return err
	}
	e.emit(NewBountyFundedEvent(marketplaceID, mkt.Rewards.RewardAsset, amount, pool))
	return nil
}

// InitAccrual creates an empty bonus record for the principal. Duplicate
// creation fails so concurrent initialisation cannot shadow an existing
// balance.
func (e *Engine) InitAccrual(principal [20]byte, marketplaceID [32]byte) (*Bonus, error) {
	mkt, err := e.marketplace(marketplaceID)
	if err != nil {
		return nil, err
	}
	if mkt.Rewards.RewardAsset == "" {
		return nil, ErrNoRewardAsset
	}
	id := DeriveBonusID(marketplaceID, principal)
	if _, exists, err := e.st.BonusGet(id); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrAlreadyExists
	}
	bonus := &Bonus{
		ID:          id,
		Marketplace: marketplaceID,
		Principal:   principal,
		Asset:       mkt.Rewards.RewardAsset,
		Balance:     big.NewInt(0),
		CreatedAt:   e.nowFn(),
	}
	if err := e.st.BonusPut(bonus); err != nil {
		return nil, err
	}
	e.emit(NewAccrualInitialisedEvent(bonus))
	return bonus.Clone(), nil
}

// Accrue credits amount to the principal's bonus, debiting the marketplace
// bounty pool. Invoked by the settlement engine while the promotion is open;
// the record is created lazily when missing. The pool must cover the amount.
func (e *Engine) Accrue(principal [20]byte, marketplaceID [32]byte, amount *big.Int) (*Bonus, error) {
	mkt, err := e.marketplace(marketplaceID)
	if err != nil {
		return nil, err
	}
	if !mkt.Rewards.RewardsEnabled {
		return nil, ErrPromotionClosed
	}
	if mkt.Rewards.RewardAsset == "" {
		return nil, ErrNoRewardAsset
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := e.st.BountyPoolBalance(marketplaceID, mkt.Rewards.RewardAsset)
	if err != nil {
		return nil, err
	}
	if pool.Cmp(amount) < 0 {
		return nil, ErrInsufficientBounty
	}
	id := DeriveBonusID(marketplaceID, principal)
	bonus, exists, err := e.st.BonusGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		bonus = &Bonus{
			ID:          id,
			Marketplace: marketplaceID,
			Principal:   principal,
			Asset:       mkt.Rewards.RewardAsset,
			Balance:     big.NewInt(0),
			CreatedAt:   e.nowFn(),
		}
	}
	bonus.Balance = new(big.Int).Add(bonus.Balance, amount)
	if err := e.st.SetBountyPoolBalance(marketplaceID, mkt.Rewards.RewardAsset, new(big.Int).Sub(pool, amount)); err != nil {
		return nil, err
	}
	if err := e.st.BonusPut(bonus); err != nil {
		return nil, err
	}
	e.emit(NewBonusAccruedEvent(bonus, amount))
	return bonus.Clone(), nil
}

// Withdraw drains the caller's bonus balance to their external balance and
// closes the record. Withdrawal is vested: it fails while the marketplace
// promotion is still open.
func (e *Engine) Withdraw(caller [20]byte, marketplaceID [32]byte) (*big.Int, error) {
	mkt, err := e.marketplace(marketplaceID)
	if err != nil {
		return nil, err
	}
	if mkt.Rewards.RewardsEnabled {
		return nil, ErrOpenPromotion
	}
	id := DeriveBonusID(marketplaceID, caller)
	bonus, exists, err := e.st.BonusGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	if bonus.Principal != caller {
		return nil, ErrUnauthorized
	}
	amount := new(big.Int).Set(bonus.Balance)
	if amount.Sign() > 0 {
		if err := e.st.Transfer(e.st.BountyVaultAddress(), caller, bonus.Asset, amount); err != nil {
			return nil, err
		}
	}
	if err := e.st.BonusDelete(id); err != nil {
		return nil, err
	}
	bonus.Balance = big.NewInt(0)
	e.emit(NewBonusWithdrawnEvent(bonus, amount))
	return amount, nil
}

// Balance reports the outstanding bonus for a principal, zero when no record
// exists.
func (e *Engine) Balance(principal [20]byte, marketplaceID [32]byte) (*big.Int, error) {
	bonus, exists, err := e.st.BonusGet(DeriveBonusID(marketplaceID, principal))
	if err != nil {
		return nil, err
	}
	if !exists {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(bonus.Balance), nil
}
