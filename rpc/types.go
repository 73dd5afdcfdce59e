package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"marketnet/crypto"
	"marketnet/native/catalog"
	"marketnet/native/market"
	"marketnet/native/payments"
	"marketnet/native/rewards"
	"marketnet/native/settlement"
)

func parseAddress(raw string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(raw))
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Array(), nil
}

func parseHash(raw string) ([32]byte, error) {
	var out [32]byte
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, fmt.Errorf("invalid hash: %w", err)
	}
	if len(decoded) != len(out) {
		return out, fmt.Errorf("invalid hash length %d", len(decoded))
	}
	copy(out[:], decoded)
	return out, nil
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must be non-negative")
	}
	return amount, nil
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("parameter object required")
	}
	return json.Unmarshal(req.Params[0], out)
}

func formatHash(h [32]byte) string {
	return "0x" + hex.EncodeToString(h[:])
}

func formatAddress(a [20]byte) string {
	return crypto.MustNewAddress(a).String()
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// --- result payloads ---

type marketplaceResult struct {
	ID                string `json:"id"`
	Authority         string `json:"authority"`
	FeeBps            uint32 `json:"feeBps"`
	FeeReductionBps   uint32 `json:"feeReductionBps"`
	DiscountAsset     string `json:"discountAsset,omitempty"`
	FeePayer          string `json:"feePayer"`
	RewardAsset       string `json:"rewardAsset,omitempty"`
	TriggerAsset      string `json:"triggerAsset,omitempty"`
	SellerRewardBps   uint32 `json:"sellerRewardBps"`
	BuyerRewardBps    uint32 `json:"buyerRewardBps"`
	RewardsEnabled    bool   `json:"rewardsEnabled"`
	Permissionless    bool   `json:"permissionless"`
	AllowSecondary    bool   `json:"allowSecondary"`
	DeliverCredential bool   `json:"deliverCredential"`
	CreatedAt         int64  `json:"createdAt"`
	UpdatedAt         int64  `json:"updatedAt"`
}

func marketplaceResultFrom(m *market.Marketplace) marketplaceResult {
	return marketplaceResult{
		ID:                formatHash(m.ID),
		Authority:         formatAddress(m.Authority),
		FeeBps:            m.Fees.FeeBps,
		FeeReductionBps:   m.Fees.FeeReductionBps,
		DiscountAsset:     m.Fees.DiscountAsset,
		FeePayer:          m.Fees.FeePayer.String(),
		RewardAsset:       m.Rewards.RewardAsset,
		TriggerAsset:      m.Rewards.TriggerAsset,
		SellerRewardBps:   m.Rewards.SellerRewardBps,
		BuyerRewardBps:    m.Rewards.BuyerRewardBps,
		RewardsEnabled:    m.Rewards.RewardsEnabled,
		Permissionless:    m.Access.Permissionless,
		AllowSecondary:    m.Access.AllowSecondary,
		DeliverCredential: m.DeliverCredential,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

type productResult struct {
	ID             string `json:"id"`
	Marketplace    string `json:"marketplace"`
	Authority      string `json:"authority"`
	CompositeID    string `json:"compositeId"`
	PaymentAsset   string `json:"paymentAsset"`
	Price          string `json:"price"`
	Exemplars      int64  `json:"exemplars"`
	SoldCount      uint64 `json:"soldCount"`
	RefundWindow   int64  `json:"refundWindow"`
	ActivePayments uint64 `json:"activePayments"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

func productResultFrom(p *catalog.Product) productResult {
	return productResult{
		ID:             formatHash(p.ID),
		Marketplace:    formatHash(p.Marketplace),
		Authority:      formatAddress(p.Authority),
		CompositeID:    p.CompositeID,
		PaymentAsset:   p.PaymentAsset,
		Price:          formatAmount(p.Price),
		Exemplars:      p.Exemplars,
		SoldCount:      p.SoldCount,
		RefundWindow:   p.RefundWindow,
		ActivePayments: p.ActivePayments,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type paymentResult struct {
	ID             string `json:"id"`
	Product        string `json:"product"`
	Marketplace    string `json:"marketplace"`
	Seller         string `json:"seller"`
	Buyer          string `json:"buyer"`
	Asset          string `json:"asset"`
	Amount         string `json:"amount"`
	FeeAmount      string `json:"feeAmount"`
	FeePayer       string `json:"feePayer"`
	Units          uint64 `json:"units"`
	PurchasedAt    int64  `json:"purchasedAt"`
	RefundDeadline int64  `json:"refundDeadline"`
}

func paymentResultFrom(p *payments.Payment) paymentResult {
	return paymentResult{
		ID:             formatHash(p.ID),
		Product:        formatHash(p.Product),
		Marketplace:    formatHash(p.Marketplace),
		Seller:         formatAddress(p.Seller),
		Buyer:          formatAddress(p.Buyer),
		Asset:          p.Asset,
		Amount:         formatAmount(p.Amount),
		FeeAmount:      formatAmount(p.FeeAmount),
		FeePayer:       p.FeePayer.String(),
		Units:          p.Units,
		PurchasedAt:    p.PurchasedAt,
		RefundDeadline: p.RefundDeadline,
	}
}

type purchaseResult struct {
	Product     string `json:"product"`
	Marketplace string `json:"marketplace"`
	Seller      string `json:"seller"`
	Buyer       string `json:"buyer"`
	Asset       string `json:"asset"`
	Units       uint64 `json:"units"`
	Gross       string `json:"gross"`
	Fee         string `json:"fee"`
	SellerBonus string `json:"sellerBonus,omitempty"`
	BuyerBonus  string `json:"buyerBonus,omitempty"`
	Payment     string `json:"payment,omitempty"`
}

func purchaseResultFrom(r *settlement.Receipt) purchaseResult {
	result := purchaseResult{
		Product:     formatHash(r.Product),
		Marketplace: formatHash(r.Marketplace),
		Seller:      formatAddress(r.Seller),
		Buyer:       formatAddress(r.Buyer),
		Asset:       r.Asset,
		Units:       r.Units,
		Gross:       formatAmount(r.Gross),
		Fee:         formatAmount(r.Fee),
	}
	if r.SellerBonus != nil && r.SellerBonus.Sign() > 0 {
		result.SellerBonus = r.SellerBonus.String()
	}
	if r.BuyerBonus != nil && r.BuyerBonus.Sign() > 0 {
		result.BuyerBonus = r.BuyerBonus.String()
	}
	if r.PaymentID != nil {
		result.Payment = formatHash(*r.PaymentID)
	}
	return result
}

type bonusResult struct {
	ID          string `json:"id"`
	Marketplace string `json:"marketplace"`
	Principal   string `json:"principal"`
	Asset       string `json:"asset"`
	Balance     string `json:"balance"`
	CreatedAt   int64  `json:"createdAt"`
}

func bonusResultFrom(b *rewards.Bonus) bonusResult {
	return bonusResult{
		ID:          formatHash(b.ID),
		Marketplace: formatHash(b.Marketplace),
		Principal:   formatAddress(b.Principal),
		Asset:       b.Asset,
		Balance:     formatAmount(b.Balance),
		CreatedAt:   b.CreatedAt,
	}
}
