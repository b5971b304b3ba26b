package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/libhttp"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

const (
	swapModeExactIn = "ExactIn"
	ProgramID       = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
)

type Provider struct {
	client   *Client
	accounts AccountReader
	logger   logrus.FieldLogger
}

// NewProvider builds the Jupiter adapter. accounts may be nil, fee accounts
// are then derived for the classic token program only.
func NewProvider(client *Client, accounts AccountReader, logger logrus.FieldLogger) *Provider {
	return &Provider{
		client:   client,
		accounts: accounts,
		logger:   logger.WithField("provider", swapper.ProviderJupiter),
	}
}

func (p *Provider) Provider() swapper.ProviderType {
	return swapper.ProviderType{
		ID:       swapper.ProviderJupiter,
		Name:     "Jupiter",
		Protocol: "jupiter",
		Mode:     swapper.ProviderMode{Kind: swapper.ModeOnChain},
		FeeKey:   swapper.FeeKeySolana,
	}
}

func (p *Provider) SupportedChains() []chain.Chain {
	return []chain.Chain{chain.Solana}
}

func mint(id chain.AssetID) (solana.PublicKey, error) {
	if id.Chain != chain.Solana {
		return solana.PublicKey{}, swapper.NewError(swapper.KindNotSupportedChain, "unsupported chain: %s", id.Chain)
	}
	if id.IsNative() {
		return solana.SolMint, nil
	}
	pk, err := solana.PublicKeyFromBase58(id.TokenID)
	if err != nil {
		return solana.PublicKey{}, swapper.WrapError(swapper.KindNotSupportedAsset, err, "invalid mint %q", id.TokenID)
	}
	return pk, nil
}

func (p *Provider) mints(req swapper.QuoteRequest) (solana.PublicKey, solana.PublicKey, error) {
	input, err := mint(req.FromAsset.ID)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	output, err := mint(req.ToAsset.ID)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	if input.Equals(output) {
		return solana.PublicKey{}, solana.PublicKey{}, swapper.NewError(swapper.KindNotSupportedPair, "input and output mint are the same")
	}
	return input, output, nil
}

func (p *Provider) FetchQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.ProviderQuote, error) {
	input, output, err := p.mints(req)
	if err != nil {
		return nil, err
	}

	q := quoteRequest{
		InputMint:   input.String(),
		OutputMint:  output.String(),
		Amount:      req.Value,
		SlippageBps: req.Options.SlippageBps,
		SwapMode:    swapModeExactIn,
	}
	fee := swapper.ReferralFor(p.Provider(), req)
	if fee.IsSet() {
		q.PlatformFeeBps = fee.Bps
	}

	resp, raw, err := p.client.GetQuote(ctx, q)
	if err != nil {
		return nil, mapError(err)
	}
	if _, ok := new(big.Int).SetString(resp.OutAmount, 10); !ok {
		return nil, swapper.NewError(swapper.KindComputeQuoteError, "invalid outAmount %q", resp.OutAmount)
	}

	quote := &swapper.ProviderQuote{
		Provider:   p.Provider(),
		FromValue:  req.Value,
		ToValue:    resp.OutAmount,
		ToMinValue: resp.OtherAmountThreshold,
		Routes: []swapper.Route{{
			Input:     req.FromAsset.ID,
			Output:    req.ToAsset.ID,
			RouteData: raw,
		}},
		// outAmount is already net of the platform fee.
		ReferralIncluded: fee.IsSet(),
	}
	if resp.PlatformFee != nil && resp.PlatformFee.Amount != "" {
		quote.Fees = append(quote.Fees, swapper.Fee{
			Asset:  req.ToAsset.ID,
			Amount: resp.PlatformFee.Amount,
			Kind:   "referral",
		})
	}

	p.logger.WithFields(logrus.Fields{
		"out_amount": resp.OutAmount,
		"hops":       len(resp.RoutePlan),
	}).Debug("jupiter quote")
	return quote, nil
}

func (p *Provider) FetchQuoteData(ctx context.Context, quote swapper.SwapQuote) (*swapper.QuoteData, error) {
	req := quote.Request
	_, output, err := p.mints(req)
	if err != nil {
		return nil, err
	}
	wallet, err := solana.PublicKeyFromBase58(req.WalletAddress)
	if err != nil {
		return nil, swapper.WrapError(swapper.KindInvalidAddress, err, "invalid wallet %q", req.WalletAddress)
	}

	route := quote.ProviderQuote.Routes[0]
	var decoded QuoteResponse
	if err = json.Unmarshal(route.RouteData, &decoded); err != nil {
		return nil, swapper.WrapError(swapper.KindInvalidRoute, err, "decode jupiter quote")
	}

	s := SwapRequest{
		UserPublicKey:           wallet.String(),
		QuoteResponse:           route.RouteData,
		WrapAndUnwrapSol:        true,
		DynamicComputeUnitLimit: true,
	}

	program := solana.TokenProgramID
	needsProgram := decoded.PlatformFee != nil || req.Recipient() != req.WalletAddress
	if needsProgram {
		if program, err = tokenProgram(ctx, p.accounts, output); err != nil {
			return nil, swapper.WrapError(swapper.KindNetworkError, err, "resolve token program")
		}
	}

	if fee := swapper.ReferralFor(p.Provider(), req); fee.IsSet() && decoded.PlatformFee != nil {
		referrer, er := solana.PublicKeyFromBase58(fee.Address)
		if er != nil {
			return nil, swapper.WrapError(swapper.KindInvalidAddress, er, "invalid referral address %q", fee.Address)
		}
		feeAccount, er := FindAssociatedTokenAddress(referrer, output, program)
		if er != nil {
			return nil, swapper.WrapError(swapper.KindTransactionError, er, "derive fee account")
		}
		s.FeeAccount = feeAccount.String()
	}

	if recipient := req.Recipient(); recipient != req.WalletAddress {
		if req.ToAsset.ID.IsNative() {
			return nil, swapper.NewError(swapper.KindInvalidAddress, "jupiter cannot deliver native SOL to %s", recipient)
		}
		owner, er := solana.PublicKeyFromBase58(recipient)
		if er != nil {
			return nil, swapper.WrapError(swapper.KindInvalidAddress, er, "invalid recipient %q", recipient)
		}
		dest, er := FindAssociatedTokenAddress(owner, output, program)
		if er != nil {
			return nil, swapper.WrapError(swapper.KindTransactionError, er, "derive destination account")
		}
		s.DestinationTokenAccount = dest.String()
	}

	resp, err := p.client.GetSwap(ctx, s)
	if err != nil {
		return nil, mapError(err)
	}

	tx, err := decodeTransaction(resp.SwapTransaction)
	if err != nil {
		return nil, err
	}
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(wallet) {
		return nil, swapper.NewError(swapper.KindTransactionError, "swap transaction fee payer is not %s", wallet)
	}
	if !invokesJupiter(tx) {
		return nil, swapper.NewError(swapper.KindTransactionError, "swap transaction does not invoke %s", ProgramID)
	}

	p.logger.WithFields(logrus.Fields{
		"instructions":           len(tx.Message.Instructions),
		"last_valid_blockheight": resp.LastValidBlockHeight,
	}).Debug("jupiter swap built")

	return &swapper.QuoteData{
		To:    ProgramID,
		Value: "0",
		Data:  resp.SwapTransaction,
	}, nil
}

func invokesJupiter(tx *solana.Transaction) bool {
	program := solana.MustPublicKeyFromBase58(ProgramID)
	for _, key := range tx.Message.AccountKeys {
		if key.Equals(program) {
			return true
		}
	}
	return false
}

func decodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, swapper.WrapError(swapper.KindTransactionError, err, "invalid base64 transaction")
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, swapper.WrapError(swapper.KindTransactionError, err, "invalid solana transaction")
	}
	return tx, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	httpErr, ok := libhttp.AsHTTPError(err)
	if !ok {
		return swapper.WrapError(swapper.KindNetworkError, err, "jupiter request failed")
	}
	if httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError {
		return swapper.WrapError(swapper.KindNetworkError, err, "jupiter unavailable")
	}

	var body errorResponse
	_ = json.Unmarshal(httpErr.Body, &body)
	switch body.ErrorCode {
	case "TOKEN_NOT_TRADABLE", "NOT_SUPPORTED":
		return swapper.WrapError(swapper.KindNotSupportedAsset, err, "token not tradable")
	case "CIRCULAR_ARBITRAGE_IS_DISABLED":
		return swapper.WrapError(swapper.KindNotSupportedPair, err, "circular swap")
	case "COULD_NOT_FIND_ANY_ROUTE", "NO_ROUTES_FOUND":
		return swapper.WrapError(swapper.KindNoQuoteAvailable, err, "no route")
	}
	if strings.Contains(strings.ToLower(body.Error), "amount") && strings.Contains(strings.ToLower(body.Error), "small") {
		return swapper.WrapError(swapper.KindInputAmountTooSmall, err, "amount too small")
	}
	return swapper.WrapError(swapper.KindNoQuoteAvailable, err, "jupiter rejected request")
}
