package crypto

import (
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	var raw [20]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr := MustNewAddress(raw)
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(MktPrefix)+"1") {
		t.Fatalf("encoded address %q missing prefix", encoded)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Array() != raw {
		t.Fatal("round trip changed the payload")
	}
}

func TestDecodeAddressRejectsBadInput(t *testing.T) {
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatal("garbage input must fail")
	}
	// A valid bech32 string with a foreign prefix is rejected.
	var raw [20]byte
	foreign := NewAddress("cosmos", raw[:]).String()
	if _, err := DecodeAddress(foreign); err == nil {
		t.Fatal("foreign prefix must fail")
	}
}

func TestDecodeAddressTrimsWhitespace(t *testing.T) {
	var raw [20]byte
	raw[0] = 0xAB
	encoded := "  " + MustNewAddress(raw).String() + "  "
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Array() != raw {
		t.Fatal("whitespace-trimmed decode changed the payload")
	}
}
