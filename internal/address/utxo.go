package address

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	bchchaincfg "github.com/gcash/bchd/chaincfg"
	"github.com/gcash/bchutil"
	ltcchaincfg "github.com/ltcsuite/ltcd/chaincfg"
	"github.com/ltcsuite/ltcd/ltcutil"

	"github.com/gemwalletcom/swapper/internal/chain"
)

// DogeMainNetParams defines Dogecoin mainnet parameters.
var DogeMainNetParams = chaincfg.Params{
	Name:             "mainnet",
	Net:              0xc0c0c0c0,
	PubKeyHashAddrID: 0x1E, // D prefix
	ScriptHashAddrID: 0x16, // 9 or A prefix
}

// validateUtxo decodes addr with the chain's own library so that an address
// of one UTXO chain is never accepted for another.
func validateUtxo(c chain.Chain, addr string) error {
	switch c {
	case chain.Bitcoin:
		a, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams)
		if err != nil {
			return err
		}
		if !a.IsForNet(&chaincfg.MainNetParams) {
			return fmt.Errorf("not a mainnet address")
		}
	case chain.Litecoin:
		a, err := ltcutil.DecodeAddress(addr, &ltcchaincfg.MainNetParams)
		if err != nil {
			return err
		}
		if !a.IsForNet(&ltcchaincfg.MainNetParams) {
			return fmt.Errorf("not a mainnet address")
		}
	case chain.BitcoinCash:
		if _, err := bchutil.DecodeAddress(addr, &bchchaincfg.MainNetParams); err != nil {
			return err
		}
	case chain.Doge:
		if _, err := btcutil.DecodeAddress(addr, &DogeMainNetParams); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported UTXO chain: %s", c)
	}
	return nil
}
