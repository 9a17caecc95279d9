package account_test

import (
	"testing"

	"github.com/bitmark-inc/noteledger/account"
)

func TestDeriveChildPrivateKeyDeterministic(t *testing.T) {
	parent, err := account.NewBase58EncodedSeedV2(true)
	if nil != err {
		t.Fatalf("NewBase58EncodedSeedV2: %s", err)
	}
	parentKey, err := account.PrivateKeyFromBase58Seed(parent)
	if nil != err {
		t.Fatalf("PrivateKeyFromBase58Seed: %s", err)
	}

	a, err := account.DeriveChildPrivateKey(parentKey, 7, 42)
	if nil != err {
		t.Fatalf("DeriveChildPrivateKey: %s", err)
	}
	b, err := account.DeriveChildPrivateKey(parentKey, 7, 42)
	if nil != err {
		t.Fatalf("DeriveChildPrivateKey: %s", err)
	}

	if a.String() != b.String() {
		t.Fatal("derivation is not deterministic for the same indices")
	}

	c, err := account.DeriveChildPrivateKey(parentKey, 7, 43)
	if nil != err {
		t.Fatalf("DeriveChildPrivateKey: %s", err)
	}
	if a.String() == c.String() {
		t.Fatal("different address indices produced the same child key")
	}
}

func TestDeriveChildAccountMatchesPrivateKey(t *testing.T) {
	parent, err := account.NewBase58EncodedSeedV2(false)
	if nil != err {
		t.Fatalf("NewBase58EncodedSeedV2: %s", err)
	}
	parentKey, err := account.PrivateKeyFromBase58Seed(parent)
	if nil != err {
		t.Fatalf("PrivateKeyFromBase58Seed: %s", err)
	}

	child, err := account.DeriveChildPrivateKey(parentKey, 1, 2)
	if nil != err {
		t.Fatalf("DeriveChildPrivateKey: %s", err)
	}

	acc, err := account.DeriveChildAccount(parentKey, 1, 2)
	if nil != err {
		t.Fatalf("DeriveChildAccount: %s", err)
	}

	if child.Account().String() != acc.String() {
		t.Fatal("DeriveChildAccount does not match DeriveChildPrivateKey's account")
	}
}

func TestPrivateKeyFromMnemonicMatchesSeed(t *testing.T) {
	seed, err := account.NewBase58EncodedSeedV1(false)
	if nil != err {
		t.Fatalf("NewBase58EncodedSeedV1: %s", err)
	}

	fromSeed, err := account.PrivateKeyFromBase58Seed(seed)
	if nil != err {
		t.Fatalf("PrivateKeyFromBase58Seed: %s", err)
	}
	fromMnemonic, err := account.PrivateKeyFromMnemonic(seed)
	if nil != err {
		t.Fatalf("PrivateKeyFromMnemonic: %s", err)
	}

	if fromSeed.String() != fromMnemonic.String() {
		t.Fatal("PrivateKeyFromMnemonic diverged from PrivateKeyFromBase58Seed")
	}
}
