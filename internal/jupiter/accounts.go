package jupiter

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// AccountReader is the subset of rpc.Client used to resolve mint owners.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// FindAssociatedTokenAddress derives the ATA address for any token program (SPL or Token-2022).
func FindAssociatedTokenAddress(wallet, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			wallet[:],
			tokenProgram[:],
			mint[:],
		},
		solana.SPLAssociatedTokenAccountProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("solana: failed to get associated token address: %w", err)
	}
	return addr, nil
}

// tokenProgram returns the program owning mint. Without an rpc the classic SPL
// token program is assumed.
func tokenProgram(ctx context.Context, reader AccountReader, mint solana.PublicKey) (solana.PublicKey, error) {
	if reader == nil || mint.Equals(solana.SolMint) {
		return solana.TokenProgramID, nil
	}

	info, err := reader.GetAccountInfo(ctx, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("solana: failed to get mint account info: %w", err)
	}
	if info == nil || info.Value == nil {
		return solana.PublicKey{}, fmt.Errorf("solana: mint account not found: %s", mint)
	}

	owner := info.Value.Owner
	if !owner.Equals(solana.TokenProgramID) && !owner.Equals(solana.Token2022ProgramID) {
		return solana.PublicKey{}, fmt.Errorf("solana: mint account is not owned by a token program: %s", owner)
	}
	return owner, nil
}
