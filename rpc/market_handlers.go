package rpc

import (
	"net/http"

	"marketnet/native/market"
)

type marketConfigParams struct {
	Caller            string `json:"caller"`
	FeeBps            uint32 `json:"feeBps"`
	FeeReductionBps   uint32 `json:"feeReductionBps"`
	DiscountAsset     string `json:"discountAsset"`
	FeePayer          string `json:"feePayer"`
	RewardAsset       string `json:"rewardAsset"`
	TriggerAsset      string `json:"triggerAsset"`
	SellerRewardBps   uint32 `json:"sellerRewardBps"`
	BuyerRewardBps    uint32 `json:"buyerRewardBps"`
	RewardsEnabled    bool   `json:"rewardsEnabled"`
	Permissionless    bool   `json:"permissionless"`
	AllowSecondary    bool   `json:"allowSecondary"`
	DeliverCredential bool   `json:"deliverCredential"`
}

func (p *marketConfigParams) decode() ([20]byte, *market.Marketplace, error) {
	caller, err := parseAddress(p.Caller)
	if err != nil {
		return [20]byte{}, nil, err
	}
	feePayer := market.FeePayerBuyer
	if p.FeePayer != "" {
		feePayer, err = market.ParseFeePayer(p.FeePayer)
		if err != nil {
			return [20]byte{}, nil, err
		}
	}
	cfg := &market.Marketplace{
		Fees: market.FeesConfig{
			FeeBps:          p.FeeBps,
			FeeReductionBps: p.FeeReductionBps,
			DiscountAsset:   p.DiscountAsset,
			FeePayer:        feePayer,
		},
		Rewards: market.RewardsConfig{
			RewardAsset:     p.RewardAsset,
			TriggerAsset:    p.TriggerAsset,
			SellerRewardBps: p.SellerRewardBps,
			BuyerRewardBps:  p.BuyerRewardBps,
			RewardsEnabled:  p.RewardsEnabled,
		},
		Access: market.PermissionConfig{
			Permissionless: p.Permissionless,
			AllowSecondary: p.AllowSecondary,
		},
		DeliverCredential: p.DeliverCredential,
	}
	return caller, cfg, nil
}

func (s *Server) handleMarketCreate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params marketConfigParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	authority, cfg, err := params.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	created, err := s.node.CreateMarketplace(authority, cfg)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, marketplaceResultFrom(created))
}

func (s *Server) handleMarketUpdate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params marketConfigParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, cfg, err := params.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	updated, err := s.node.EditMarketplace(caller, cfg)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, marketplaceResultFrom(updated))
}

func (s *Server) handleMarketGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	id, err := parseHash(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	mkt, err := s.node.GetMarketplace(id)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, marketplaceResultFrom(mkt))
}
