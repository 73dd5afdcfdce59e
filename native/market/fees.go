package market

import (
	"fmt"
	"math/big"
)

// Distribution summarises how the gross amount of a sale splits between the
// seller and the marketplace fee recipient. The fee is computed once, on the
// aggregate amount, with integer floor division; truncation remainder stays
// with the marketplace.
type Distribution struct {
	// Fee is the marketplace fee drawn from the sale.
	Fee *big.Int
	// SellerProceeds is what the seller ultimately receives. When the buyer
	// bears the fee this equals the gross amount.
	SellerProceeds *big.Int
	// BuyerCharge is the total the buyer is debited: gross plus fee when
	// the buyer bears it.
	BuyerCharge *big.Int
}

// CalculateDistribution applies the marketplace fee policy to a gross sale
// amount. The effective rate drops by FeeReductionBps when the sale is paid
// in the discount asset.
func CalculateDistribution(fees FeesConfig, paymentAsset string, gross *big.Int) (Distribution, error) {
	if gross == nil || gross.Sign() < 0 {
		return Distribution{}, fmt.Errorf("%w: gross amount must be non-negative", ErrInvalidConfig)
	}
	adjustedBps := fees.FeeBps
	if fees.DiscountAsset != "" && normalizeAsset(paymentAsset) == fees.DiscountAsset {
		if fees.FeeReductionBps > adjustedBps {
			adjustedBps = 0
		} else {
			adjustedBps -= fees.FeeReductionBps
		}
	}
	fee := new(big.Int).Mul(gross, new(big.Int).SetUint64(uint64(adjustedBps)))
	fee.Div(fee, big.NewInt(BpsDenominator))

	dist := Distribution{Fee: fee}
	switch fees.FeePayer {
	case FeePayerBuyer:
		dist.SellerProceeds = new(big.Int).Set(gross)
		dist.BuyerCharge = new(big.Int).Add(gross, fee)
	default:
		dist.SellerProceeds = new(big.Int).Sub(gross, fee)
		dist.BuyerCharge = new(big.Int).Set(gross)
	}
	return dist, nil
}

// RewardFor computes the bonus owed to one side of a sale at the given rate.
// The result uses the same aggregate floor division as the fee path.
func RewardFor(gross *big.Int, bps uint32) *big.Int {
	if gross == nil || gross.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	reward := new(big.Int).Mul(gross, new(big.Int).SetUint64(uint64(bps)))
	return reward.Div(reward, big.NewInt(BpsDenominator))
}
