package txbuilder

import (
	"math"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
)

// SelectCoins walks unspents smallest-first and returns the shortest
// leading run whose total value is at least target. unspents must already
// be sorted ascending by value, the contract both rpcclient backends
// guarantee. Matches original_source's generate_transaction, which
// consumes list_unspent_ordered's ascending output directly rather than
// picking largest-first.
func SelectCoins(unspents []rpcclient.Unspent, target int64) ([]rpcclient.Unspent, int64, error) {
	if len(unspents) == 0 {
		return nil, 0, chainerror.New(chainerror.InsufficientFunds, "no unspent outputs available")
	}
	if target <= 0 {
		return nil, 0, chainerror.New(chainerror.BadInput, "selection target must be positive")
	}

	var selected []rpcclient.Unspent
	var total int64
	for _, u := range unspents {
		selected = append(selected, u)
		total += u.Value
		if total >= target {
			return selected, total, nil
		}
	}
	return nil, 0, chainerror.New(chainerror.InsufficientFunds, "insufficient funds for requested amount and fee")
}

// F64ToSat converts a decimal amount to smallest units by truncating
// toward zero: floor(amount * 10^decimals). Matches original_source's
// f64_to_sat, which always truncates rather than rounds.
func F64ToSat(amount float64, decimals uint8) int64 {
	scale := math.Pow10(int(decimals))
	return int64(amount * scale)
}
