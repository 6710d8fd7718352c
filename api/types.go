package api

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mr01settle/paycheck/mr01"
)

// hexPubKey round-trips a mr01.PubKey through 0x-prefixed hex for JSON, the
// way the teacher's RPC types encode fixed-length byte arrays.
type hexPubKey mr01.PubKey

func (k hexPubKey) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(k[:])), nil
}

func (k *hexPubKey) UnmarshalText(data []byte) error {
	b, err := hexutil.Decode(string(data))
	if err != nil {
		return err
	}
	if len(b) != mr01.PubKeySize {
		return fmt.Errorf("api: public key must be %d bytes, got %d", mr01.PubKeySize, len(b))
	}
	copy(k[:], b)
	return nil
}

func (k hexPubKey) pubKey() mr01.PubKey { return mr01.PubKey(k) }

// depositRequest is the POST /deposit body.
type depositRequest struct {
	UserKey hexPubKey `json:"user_key"`
	Amount  uint64    `json:"amount"`
}

// depositResponse reports the account state after a successful deposit.
type depositResponse struct {
	Balance      uint64 `json:"balance"`
	TotalReceived uint64 `json:"total_received"`
}

// checkPayload is the wire shape of a signed (or partially signed) check: a
// Transaction plus whichever signatures have been produced so far.
type checkPayload struct {
	SN          uint64       `json:"sn"`
	Amount      uint64       `json:"amount"`
	SenderKey   hexPubKey    `json:"sender_key"`
	ReceiverKey hexPubKey    `json:"receiver_key"`
	Timestamp   int64        `json:"timestamp"`
	SenderSig   hexutil.Bytes `json:"sender_sig,omitempty"`
	ReceiverSig hexutil.Bytes `json:"receiver_sig,omitempty"`
}

// payRequest is the POST /pay body: a sender proposes a check, signed only
// by itself. The handler returns the sender's VRF contribution so the
// receiver's wallet can complete sign_receive off-band.
type payRequest struct {
	Check checkPayload `json:"check"`
}

// payResponse carries the sender-signed check back to the caller for the
// receiver to complete the two-party handshake.
type payResponse struct {
	Check checkPayload `json:"check"`
}

// processRequest is the POST /process body: a fully-signed check ready for
// settlement.
type processRequest struct {
	Check checkPayload `json:"check"`
}

// processResponse reports the settled payable amount.
type processResponse struct {
	Payable uint64 `json:"payable"`
}

// reportDoubleSpendRequest is the POST /report-double-spend body: two
// independently-signed checks alleged to overlap.
type reportDoubleSpendRequest struct {
	First  checkPayload `json:"first"`
	Second checkPayload `json:"second"`
}

// errorResponse is the uniform error body every handler returns on failure.
type errorResponse struct {
	Error string `json:"error"`
}
