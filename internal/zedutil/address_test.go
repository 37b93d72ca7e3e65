// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zedutil

import (
	"strings"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	seed := strings.Repeat("00", 16)

	w1, err := Generate(seed)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	w2, err := Generate(seed)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if w1.Address != w2.Address {
		t.Fatalf("derivation not deterministic: %q != %q", w1.Address, w2.Address)
	}
	if !strings.HasPrefix(w1.Address, AddressPrefix) {
		t.Fatalf("address %q missing prefix %q", w1.Address, AddressPrefix)
	}
}

func TestGenerateRandomSeed(t *testing.T) {
	w1, err := Generate("")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	w2, err := Generate("")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w1.Seed == w2.Seed {
		t.Fatalf("two random seeds collided: %q", w1.Seed)
	}
	if !Validate(w1.Address) {
		t.Fatalf("randomly generated address %q does not validate", w1.Address)
	}
}

func TestValidateRoundTrip(t *testing.T) {
	seeds := []string{
		strings.Repeat("00", 16),
		strings.Repeat("ff", 16),
		"a1b2c3d4e5f60718293a4b5c6d7e8f90",
	}

	for _, seed := range seeds {
		wallet, err := Generate(seed)
		if err != nil {
			t.Fatalf("Generate(%q): %v", seed, err)
		}
		if !Validate(wallet.Address) {
			t.Errorf("Validate(%q) = false, want true", wallet.Address)
		}
		if !VerifyOwnership(wallet.Address, seed) {
			t.Errorf("VerifyOwnership(%q, %q) = false, want true", wallet.Address, seed)
		}
	}
}

func TestValidateRejectsMutation(t *testing.T) {
	wallet, err := Generate(strings.Repeat("11", 16))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	addr := wallet.Address
	for i := range addr {
		if addr[i] == '-' {
			continue
		}
		mutated := []byte(addr)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		if Validate(string(mutated)) {
			t.Errorf("mutating byte %d of %q still validates as %q", i, addr, mutated)
		}
	}
}

func TestValidateStructural(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"empty", "", false},
		{"no prefix", "XYZ-a-b-c-d-ffff", false},
		{"too few parts", "ZED-a-b-c-ffff", false},
		{"too many parts", "ZED-a-b-c-d-e-ffff", false},
		{"node pseudo-address", NodeAddress, false},
	}

	for _, tc := range tests {
		if got := Validate(tc.addr); got != tc.want {
			t.Errorf("%s: Validate(%q) = %v, want %v", tc.name, tc.addr, got, tc.want)
		}
	}
}

func TestVerifyOwnershipWrongSeed(t *testing.T) {
	wallet, err := Generate(strings.Repeat("22", 16))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if VerifyOwnership(wallet.Address, strings.Repeat("33", 16)) {
		t.Fatal("VerifyOwnership succeeded with the wrong seed")
	}
}

func TestImportRequiresSeed(t *testing.T) {
	if _, err := Import(""); err != ErrEmptySeed {
		t.Fatalf("Import(\"\") error = %v, want %v", err, ErrEmptySeed)
	}
}
