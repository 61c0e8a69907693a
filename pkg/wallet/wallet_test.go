package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

// Throwaway development key, account 0 of the standard test mnemonic.
const (
	testKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "bare-hex-key", key: testKeyHex, wantErr: false},
		{name: "prefixed-hex-key", key: "0x" + testKeyHex, wantErr: false},
		{name: "empty-key", key: "", wantErr: true},
		{name: "invalid-hex", key: "zz0974", wantErr: true},
		{name: "truncated-key", key: testKeyHex[:32], wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if w.Address() != testAddress {
				t.Errorf("expected address %s, got %s", testAddress, w.Address())
			}
		})
	}
}

func TestSignPayload(t *testing.T) {
	w, err := New(testKeyHex)
	if err != nil {
		t.Fatalf("failed to create wallet: %v", err)
	}

	payload := []byte(`{"type":"BatchedOrders","user_chain_id":"chain-1","orders":[],"nonce":1}`)

	sigHex, err := w.SignPayload(payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		t.Fatalf("signature is not valid hex: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("expected 65-byte recoverable signature, got %d bytes", len(sig))
	}

	// Recovering the public key from the signature must yield the wallet's
	// own address.
	digest := crypto.Keccak256(payload)
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		t.Fatalf("failed to recover public key: %v", err)
	}
	if got := crypto.PubkeyToAddress(*pub).Hex(); got != w.Address() {
		t.Errorf("recovered address %s does not match wallet address %s", got, w.Address())
	}
}

func TestSignPayload_Deterministic(t *testing.T) {
	w, err := New(testKeyHex)
	if err != nil {
		t.Fatalf("failed to create wallet: %v", err)
	}

	first, err := w.SignPayload([]byte("payload-a"))
	if err != nil {
		t.Fatalf("first sign failed: %v", err)
	}
	second, err := w.SignPayload([]byte("payload-a"))
	if err != nil {
		t.Fatalf("second sign failed: %v", err)
	}
	other, err := w.SignPayload([]byte("payload-b"))
	if err != nil {
		t.Fatalf("third sign failed: %v", err)
	}

	if first != second {
		t.Error("expected identical signatures for identical payloads")
	}
	if first == other {
		t.Error("expected different signatures for different payloads")
	}
}
