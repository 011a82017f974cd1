package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface the agent depends on.
type RPCClient interface {
	// GetBalance retrieves the native balance of an account in lamports.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetTokenAccountsByOwner retrieves the owner's token accounts for a mint.
	GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]TokenAccount, error)

	// GetTokenAccountBalance retrieves the balance of a token account.
	GetTokenAccountBalance(ctx context.Context, account string) (*TokenAmount, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction broadcasts a signed transaction and returns its signature.
	SendTransaction(ctx context.Context, rawTx []byte) (string, error)
}
