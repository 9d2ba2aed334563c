// Package keys implements Sprout spending keys, shielded payment addresses
// and transparent addresses with their Base58Check string forms.
//
// Zcash prefixes use two version bytes. A Sprout payment address string is
// Base58Check(version(2) || a_pk(32) || pk_enc(32)).
package keys

import (
	"fmt"
	"strings"
)

// Network holds the address prefixes of one chain.
type Network struct {
	Name             string
	PubKeyHash       uint16
	ScriptHash       uint16
	WIF              byte
	ZcPaymentAddress uint16
	ZcSpendingKey    uint16
}

var (
	MainNet = &Network{
		Name:             "main",
		PubKeyHash:       0x1cb8,
		ScriptHash:       0x1cbd,
		WIF:              0x80,
		ZcPaymentAddress: 0x169a,
		ZcSpendingKey:    0xab36,
	}
	TestNet = &Network{
		Name:             "test",
		PubKeyHash:       0x1d25,
		ScriptHash:       0x1cba,
		WIF:              0xef,
		ZcPaymentAddress: 0x16b6,
		ZcSpendingKey:    0xac08,
	}
)

// NetworkByName accepts "main"/"mainnet" and "test"/"testnet".
func NetworkByName(name string) (*Network, error) {
	switch strings.ToLower(name) {
	case "", "main", "mainnet":
		return MainNet, nil
	case "test", "testnet":
		return TestNet, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}
