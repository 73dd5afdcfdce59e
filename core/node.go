package core

import (
	"math/big"
	"sync"
	"time"

	"marketnet/core/events"
	"marketnet/core/state"
	"marketnet/core/types"
	"marketnet/native/access"
	"marketnet/native/catalog"
	"marketnet/native/market"
	"marketnet/native/payments"
	"marketnet/native/rewards"
	"marketnet/native/settlement"
	"marketnet/storage"
)

// Node hosts the settlement engines over a shared state manager. Operations
// execute one at a time under the node mutex: each runs against a state
// snapshot with a buffering emitter, and only a fully successful run commits
// its writes and publishes its events. A failed operation leaves no trace.
type Node struct {
	mu    sync.Mutex
	db    storage.Database
	state *state.Manager
	bus   *eventBus
	nowFn func() int64
}

// NewNode creates a node over the given database.
func NewNode(db storage.Database) *Node {
	return &Node{
		db:    db,
		state: state.NewManager(db),
		bus:   newEventBus(),
		nowFn: func() int64 { return time.Now().Unix() },
	}
}

// SetNowFunc overrides the node clock. Passing nil restores wall time.
func (n *Node) SetNowFunc(now func() int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if now == nil {
		n.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	n.nowFn = now
}

// SubscribeEvents registers an event subscriber. Events emitted by committed
// operations are delivered in order; a slow subscriber drops events rather
// than blocking settlement. The returned func cancels the subscription.
func (n *Node) SubscribeEvents(buffer int) (<-chan *types.Event, func()) {
	return n.bus.subscribe(buffer)
}

// --- atomic operation plumbing ---

// bufferedEmitter collects engine events during a speculative run. Events
// reach subscribers only after the snapshot commits.
type bufferedEmitter struct {
	events []*types.Event
}

type eventCarrier interface {
	Event() *types.Event
}

func (b *bufferedEmitter) Emit(evt events.Event) {
	carrier, ok := evt.(eventCarrier)
	if !ok {
		return
	}
	if e := carrier.Event(); e != nil {
		b.events = append(b.events, e)
	}
}

type engineSet struct {
	registry *market.Registry
	catalog  *catalog.Catalog
	access   *access.Gateway
	rewards  *rewards.Engine
	payments *payments.Engine
	settle   *settlement.Engine
	state    *state.Manager
}

func (n *Node) engines(snap *state.Manager, emitter events.Emitter) *engineSet {
	set := &engineSet{
		registry: market.NewRegistry(snap),
		catalog:  catalog.NewCatalog(snap),
		access:   access.NewGateway(snap),
		rewards:  rewards.NewEngine(snap),
		payments: payments.NewEngine(snap),
		state:    snap,
	}
	set.settle = settlement.NewEngine(snap, set.payments, set.rewards)
	set.registry.SetEmitter(emitter)
	set.catalog.SetEmitter(emitter)
	set.access.SetEmitter(emitter)
	set.rewards.SetEmitter(emitter)
	set.payments.SetEmitter(emitter)
	set.settle.SetEmitter(emitter)
	set.registry.SetNowFunc(n.nowFn)
	set.catalog.SetNowFunc(n.nowFn)
	set.access.SetNowFunc(n.nowFn)
	set.rewards.SetNowFunc(n.nowFn)
	set.payments.SetNowFunc(n.nowFn)
	set.settle.SetNowFunc(n.nowFn)
	return set
}

func (n *Node) withSnapshot(fn func(*engineSet) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	snap := n.state.Snapshot()
	buf := &bufferedEmitter{}
	if err := fn(n.engines(snap, buf)); err != nil {
		return err
	}
	if err := snap.Commit(); err != nil {
		return err
	}
	n.bus.publish(buf.events)
	return nil
}

// withView runs a read-only function against current state.
func (n *Node) withView(fn func(*engineSet) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return fn(n.engines(n.state.Snapshot(), events.NoopEmitter{}))
}

// --- marketplace operations ---

func (n *Node) CreateMarketplace(authority [20]byte, cfg *market.Marketplace) (*market.Marketplace, error) {
	var created *market.Marketplace
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		created, err = set.registry.Create(authority, cfg)
		return err
	})
	return created, err
}

func (n *Node) EditMarketplace(caller [20]byte, cfg *market.Marketplace) (*market.Marketplace, error) {
	var updated *market.Marketplace
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		updated, err = set.registry.Edit(caller, cfg)
		return err
	})
	return updated, err
}

func (n *Node) GetMarketplace(id [32]byte) (*market.Marketplace, error) {
	var mkt *market.Marketplace
	err := n.withView(func(set *engineSet) error {
		var err error
		mkt, err = set.registry.Get(id)
		return err
	})
	return mkt, err
}

// --- catalog operations ---

func (n *Node) CreateProduct(seller [20]byte, marketplaceID [32]byte, compositeID string, price *big.Int, paymentAsset string, exemplars, refundWindow int64) (*catalog.Product, error) {
	var created *catalog.Product
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		created, err = set.catalog.Create(seller, marketplaceID, compositeID, price, paymentAsset, exemplars, refundWindow)
		return err
	})
	return created, err
}

func (n *Node) EditProduct(caller [20]byte, productID [32]byte, newPrice *big.Int, newPaymentAsset *string) (*catalog.Product, error) {
	var updated *catalog.Product
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		updated, err = set.catalog.Edit(caller, productID, newPrice, newPaymentAsset)
		return err
	})
	return updated, err
}

func (n *Node) DeleteProduct(caller [20]byte, productID [32]byte) error {
	return n.withSnapshot(func(set *engineSet) error {
		return set.catalog.Delete(caller, productID)
	})
}

func (n *Node) GetProduct(id [32]byte) (*catalog.Product, error) {
	var product *catalog.Product
	err := n.withView(func(set *engineSet) error {
		var err error
		product, err = set.catalog.Get(id)
		return err
	})
	return product, err
}

// --- access operations ---

func (n *Node) RequestAccess(principal [20]byte, marketplaceID [32]byte) (*access.Request, error) {
	var request *access.Request
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		request, err = set.access.Request(principal, marketplaceID)
		return err
	})
	return request, err
}

func (n *Node) AcceptAccess(caller [20]byte, requestID [32]byte) error {
	return n.withSnapshot(func(set *engineSet) error {
		return set.access.Accept(caller, requestID)
	})
}

// --- settlement operations ---

func (n *Node) Purchase(buyer [20]byte, productID [32]byte, units uint64) (*settlement.Receipt, error) {
	var receipt *settlement.Receipt
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		receipt, err = set.settle.Purchase(buyer, productID, units)
		return err
	})
	return receipt, err
}

func (n *Node) RefundPayment(caller [20]byte, paymentID [32]byte) (*payments.Payment, error) {
	var payment *payments.Payment
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		payment, err = set.payments.Refund(caller, paymentID)
		return err
	})
	return payment, err
}

func (n *Node) WithdrawFunds(caller [20]byte, paymentID [32]byte) (*payments.Payment, error) {
	var payment *payments.Payment
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		payment, err = set.payments.Withdraw(caller, paymentID)
		return err
	})
	return payment, err
}

func (n *Node) GetPayment(id [32]byte) (*payments.Payment, error) {
	var payment *payments.Payment
	err := n.withView(func(set *engineSet) error {
		var err error
		payment, err = set.payments.Get(id)
		return err
	})
	return payment, err
}

// --- rewards operations ---

func (n *Node) InitAccrual(principal [20]byte, marketplaceID [32]byte) (*rewards.Bonus, error) {
	var bonus *rewards.Bonus
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		bonus, err = set.rewards.InitAccrual(principal, marketplaceID)
		return err
	})
	return bonus, err
}

func (n *Node) WithdrawReward(caller [20]byte, marketplaceID [32]byte) (*big.Int, error) {
	var amount *big.Int
	err := n.withSnapshot(func(set *engineSet) error {
		var err error
		amount, err = set.rewards.Withdraw(caller, marketplaceID)
		return err
	})
	return amount, err
}

func (n *Node) FundBounty(caller [20]byte, marketplaceID [32]byte, amount *big.Int) error {
	return n.withSnapshot(func(set *engineSet) error {
		return set.rewards.FundBounty(caller, marketplaceID, amount)
	})
}

func (n *Node) RewardBalance(principal [20]byte, marketplaceID [32]byte) (*big.Int, error) {
	var balance *big.Int
	err := n.withView(func(set *engineSet) error {
		var err error
		balance, err = set.rewards.Balance(principal, marketplaceID)
		return err
	})
	return balance, err
}

// --- asset and balance operations ---

func (n *Node) RegisterAsset(symbol, name string, decimals uint8, mintAuthority []byte) error {
	return n.withSnapshot(func(set *engineSet) error {
		return set.state.RegisterAsset(symbol, name, decimals, mintAuthority)
	})
}

func (n *Node) MintAsset(caller [20]byte, asset string, to [20]byte, amount *big.Int) error {
	return n.withSnapshot(func(set *engineSet) error {
		return set.state.MintAsset(caller, asset, to, amount)
	})
}

func (n *Node) Balance(addr [20]byte, asset string) (*big.Int, error) {
	var balance *big.Int
	err := n.withView(func(set *engineSet) error {
		var err error
		balance, err = set.state.Balance(addr, asset)
		return err
	})
	return balance, err
}

func (n *Node) Assets() ([]string, error) {
	var assets []string
	err := n.withView(func(set *engineSet) error {
		var err error
		assets, err = set.state.Assets()
		return err
	})
	return assets, err
}

func (n *Node) CredentialBalance(scope [32]byte, addr [20]byte) (uint64, error) {
	var units uint64
	err := n.withView(func(set *engineSet) error {
		var err error
		units, err = set.state.CredentialBalance(scope, addr)
		return err
	})
	return units, err
}
