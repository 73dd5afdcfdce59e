package rpc

import (
	"net/http"

	"marketnet/observability/metrics"
)

func (s *Server) handleSettlementPurchase(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Buyer   string `json:"buyer"`
		Product string `json:"product"`
		Units   uint64 `json:"units"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	productID, err := parseHash(params.Product)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	receipt, err := s.node.Purchase(buyer, productID, params.Units)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	metrics.ObservePurchase(receipt.Asset, receipt.Units, receipt.PaymentID != nil)
	writeResult(w, req.ID, purchaseResultFrom(receipt))
}

func (s *Server) handleEscrowRefund(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller  string `json:"caller"`
		Payment string `json:"payment"`
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
	paymentID, err := parseHash(params.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	payment, err := s.node.RefundPayment(caller, paymentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	metrics.ObserveRefund(payment.Asset)
	writeResult(w, req.ID, paymentResultFrom(payment))
}

func (s *Server) handleEscrowWithdraw(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller  string `json:"caller"`
		Payment string `json:"payment"`
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
	paymentID, err := parseHash(params.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	payment, err := s.node.WithdrawFunds(caller, paymentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	metrics.ObserveWithdrawal(payment.Asset)
	writeResult(w, req.ID, paymentResultFrom(payment))
}

func (s *Server) handleEscrowGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	paymentID, err := parseHash(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	payment, err := s.node.GetPayment(paymentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, paymentResultFrom(payment))
}
