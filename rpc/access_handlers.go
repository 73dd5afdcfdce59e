package rpc

import (
	"encoding/hex"
	"net/http"
)

func (s *Server) handleAccessRequest(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Requester   string `json:"requester"`
		Marketplace string `json:"marketplace"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	requester, err := parseAddress(params.Requester)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	marketplaceID, err := parseHash(params.Marketplace)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	request, err := s.node.RequestAccess(requester, marketplaceID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{
		"id":          formatHash(request.ID),
		"marketplace": formatHash(request.Marketplace),
		"requester":   formatAddress(request.Requester),
		"createdAt":   request.CreatedAt,
	})
}

func (s *Server) handleAccessAccept(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller  string `json:"caller"`
		Request string `json:"request"`
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
	requestID, err := parseHash(params.Request)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.AcceptAccess(caller, requestID); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"accepted": true})
}

func (s *Server) handleCredentialBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Scope   string `json:"scope"`
		Address string `json:"address"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	scope, err := parseHash(params.Scope)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	units, err := s.node.CredentialBalance(scope, addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{
		"scope":   "0x" + hex.EncodeToString(scope[:]),
		"address": params.Address,
		"units":   units,
	})
}
