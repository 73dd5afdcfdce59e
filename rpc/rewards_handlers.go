package rpc

import (
	"net/http"
)

func (s *Server) handleRewardsInit(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Principal   string `json:"principal"`
		Marketplace string `json:"marketplace"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	principal, err := parseAddress(params.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	marketplaceID, err := parseHash(params.Marketplace)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	bonus, err := s.node.InitAccrual(principal, marketplaceID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, bonusResultFrom(bonus))
}

func (s *Server) handleRewardsWithdraw(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller      string `json:"caller"`
		Marketplace string `json:"marketplace"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	marketplaceID, err := parseHash(params.Marketplace)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := s.node.WithdrawReward(caller, marketplaceID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"amount": formatAmount(amount)})
}

func (s *Server) handleRewardsFundBounty(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller      string `json:"caller"`
		Marketplace string `json:"marketplace"`
		Amount      string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	marketplaceID, err := parseHash(params.Marketplace)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.FundBounty(caller, marketplaceID, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"funded": true})
}

func (s *Server) handleRewardsBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Principal   string `json:"principal"`
		Marketplace string `json:"marketplace"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	principal, err := parseAddress(params.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	marketplaceID, err := parseHash(params.Marketplace)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	balance, err := s.node.RewardBalance(principal, marketplaceID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"balance": formatAmount(balance)})
}
