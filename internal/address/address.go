package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	"github.com/gemwalletcom/swapper/internal/chain"
)

var ErrInvalidAddress = errors.New("invalid address")

const (
	thorchainHRP   = "thor"
	tronVersion    = 0x41
	tronPayloadLen = 20
)

var (
	nearAccountRe = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)
	suiAddressRe  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// Validate checks that addr is well formed for the given chain.
func Validate(c chain.Chain, addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty address for %s", ErrInvalidAddress, c)
	}

	var err error
	switch c.Family() {
	case chain.FamilyEvm:
		if !ecommon.IsHexAddress(addr) {
			err = errors.New("not a hex address")
		}
	case chain.FamilyBitcoin:
		err = validateUtxo(c, addr)
	case chain.FamilySolana:
		_, err = solana.PublicKeyFromBase58(addr)
	case chain.FamilyThorchain:
		err = validateBech32(addr, thorchainHRP)
	case chain.FamilyTron:
		err = validateTron(addr)
	case chain.FamilyNear:
		err = validateNear(addr)
	case chain.FamilySui:
		if !suiAddressRe.MatchString(addr) {
			err = errors.New("not a 32 byte hex address")
		}
	case chain.FamilyTon:
		// raw and user-friendly forms are both accepted by wallets
	default:
		return fmt.Errorf("%w: unsupported chain %s", ErrInvalidAddress, c)
	}
	if err != nil {
		return fmt.Errorf("%w: %s on %s: %v", ErrInvalidAddress, addr, c, err)
	}
	return nil
}

func validateBech32(addr, hrp string) error {
	prefix, data, err := bech32.Decode(addr)
	if err != nil {
		return err
	}
	if prefix != hrp {
		return fmt.Errorf("unexpected prefix %q", prefix)
	}
	if len(data) == 0 {
		return errors.New("empty payload")
	}
	return nil
}

func validateTron(addr string) error {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return err
	}
	if version != tronVersion || len(payload) != tronPayloadLen {
		return errors.New("not a tron base58 address")
	}
	return nil
}

func validateNear(addr string) error {
	if len(addr) < 2 || len(addr) > 64 {
		return errors.New("account id length out of range")
	}
	if !nearAccountRe.MatchString(strings.ToLower(addr)) || strings.ToLower(addr) != addr {
		return errors.New("not a near account id")
	}
	return nil
}
