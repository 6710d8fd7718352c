// Package api exposes Bank's four operations over HTTP via gorilla/mux. It
// is an optional convenience surface, not part of the settlement protocol:
// nothing in mr01 or bank depends on it, and it carries none of the
// protocol's own invariants beyond forwarding Bank's errors faithfully.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mr01settle/paycheck/bank"
	"github.com/mr01settle/paycheck/internal/mlog"
	"github.com/mr01settle/paycheck/mr01"
)

// Server wires a bank.Bank to an HTTP mux.
type Server struct {
	bank   *bank.Bank
	log    *mlog.Logger
	router *mux.Router
}

// New constructs a Server. A nil logger defaults to mlog.Root().
func New(b *bank.Bank, logger *mlog.Logger) *Server {
	if logger == nil {
		logger = mlog.Root()
	}
	s := &Server{bank: b, log: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/deposit", s.handleDeposit).Methods(http.MethodPost)
	s.router.HandleFunc("/pay", s.handlePay).Methods(http.MethodPost)
	s.router.HandleFunc("/process", s.handleProcess).Methods(http.MethodPost)
	s.router.HandleFunc("/report-double-spend", s.handleReportDoubleSpend).Methods(http.MethodPost)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userKey := req.UserKey.pubKey()
	if err := s.bank.Deposit(userKey, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depositResponse{
		Balance:       s.bank.Balance(userKey),
		TotalReceived: s.bank.TotalReceived(userKey),
	})
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := req.Check
	tx, err := mr01.NewTransaction(c.SN, c.Amount, c.SenderKey.pubKey(), c.ReceiverKey.pubKey(), c.Timestamp)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(c.SenderSig) == 0 {
		writeError(w, errors.New("api: check is missing sender_sig"))
		return
	}
	writeJSON(w, http.StatusOK, payResponse{Check: checkPayload{
		SN:          tx.SN,
		Amount:      tx.Amount,
		SenderKey:   c.SenderKey,
		ReceiverKey: c.ReceiverKey,
		Timestamp:   tx.Timestamp,
		SenderSig:   c.SenderSig,
	}})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := transactionFromPayload(req.Check)
	if err != nil {
		writeError(w, err)
		return
	}
	payable, err := tx.Evaluate(req.Check.SenderSig, req.Check.ReceiverSig, s.bank.Macropayment())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.bank.ProcessPayment(tx, req.Check.SenderSig, req.Check.ReceiverSig); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, processResponse{Payable: payable})
}

func (s *Server) handleReportDoubleSpend(w http.ResponseWriter, r *http.Request) {
	var req reportDoubleSpendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx1, err := transactionFromPayload(req.First)
	if err != nil {
		writeError(w, err)
		return
	}
	tx2, err := transactionFromPayload(req.Second)
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.bank.ReportDoubleSpend(
		tx1, req.First.SenderSig, req.First.ReceiverSig,
		tx2, req.Second.SenderSig, req.Second.ReceiverSig,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func transactionFromPayload(c checkPayload) (*mr01.Transaction, error) {
	return mr01.NewTransaction(c.SN, c.Amount, c.SenderKey.pubKey(), c.ReceiverKey.pubKey(), c.Timestamp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a Bank/mr01 sentinel error to an HTTP status. Validation
// failures (bad signatures, bad intervals, insufficient funds) are 400s;
// an unknown sender is a 404; anything unrecognized is a 500, since Bank
// never returns a partially-applied error for its own protocol violations.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, bank.ErrUnknownSender):
		status = http.StatusNotFound
	case errors.Is(err, mr01.ErrInvalidTransaction),
		errors.Is(err, mr01.ErrInvalidSignature),
		errors.Is(err, mr01.ErrNotPayable),
		errors.Is(err, bank.ErrAlreadyProcessed),
		errors.Is(err, bank.ErrDoubleSpend),
		errors.Is(err, bank.ErrInvalidCoinInterval),
		errors.Is(err, bank.ErrNotEnoughFunds),
		errors.Is(err, bank.ErrInvalidAmount):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
