package rpc

import (
	"math/big"
	"net/http"
)

func (s *Server) handleCatalogCreate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Seller       string `json:"seller"`
		Marketplace  string `json:"marketplace"`
		CompositeID  string `json:"compositeId"`
		Price        string `json:"price"`
		PaymentAsset string `json:"paymentAsset"`
		Exemplars    int64  `json:"exemplars"`
		RefundWindow int64  `json:"refundWindow"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	seller, err := parseAddress(params.Seller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	marketplaceID, err := parseHash(params.Marketplace)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	created, err := s.node.CreateProduct(seller, marketplaceID, params.CompositeID, price, params.PaymentAsset, params.Exemplars, params.RefundWindow)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, productResultFrom(created))
}

func (s *Server) handleCatalogUpdate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller       string  `json:"caller"`
		ID           string  `json:"id"`
		Price        *string `json:"price"`
		PaymentAsset *string `json:"paymentAsset"`
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
	productID, err := parseHash(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	var newPrice *big.Int
	if params.Price != nil {
		newPrice, err = parseAmount(*params.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
	}
	updated, err := s.node.EditProduct(caller, productID, newPrice, params.PaymentAsset)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, productResultFrom(updated))
}

func (s *Server) handleCatalogDelete(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		ID     string `json:"id"`
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
	productID, err := parseHash(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.DeleteProduct(caller, productID); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"deleted": true})
}

func (s *Server) handleCatalogGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	productID, err := parseHash(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	product, err := s.node.GetProduct(productID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, productResultFrom(product))
}
