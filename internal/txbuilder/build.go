package txbuilder

import (
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/coinconfig"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
)

// sequenceFinal is the default, non-RBF, non-locktime-gated sequence
// number claim transactions use.
const sequenceFinal = uint32(0xFFFFFFFF)

// sequenceFinalMinusOne is the sequence number refund transactions use so
// that lock_time is actually enforced by consensus.
const sequenceFinalMinusOne = uint32(0xFFFFFFFE)

// BuildUnsigned selects coins smallest-first, covering outputs' total
// value plus feeSat, and assembles an unsigned transaction. If the
// selected inputs overpay, the remainder becomes a change output paid to
// changeScript (pass nil to require exact-change inputs only). All inputs
// get sequenceFinal; callers building a refund transaction must override
// Sequence and LockTime afterward.
func BuildUnsigned(unspents []rpcclient.Unspent, outputs []Output, changeScript []byte, feeSat int64, params *coinconfig.Params) (*UnsignedTransaction, error) {
	if len(outputs) == 0 {
		return nil, chainerror.New(chainerror.BadInput, "at least one output is required")
	}
	if feeSat <= 0 {
		return nil, chainerror.New(chainerror.BadInput, "fee must be positive")
	}

	var target int64
	for _, out := range outputs {
		if out.Value <= 0 {
			return nil, chainerror.New(chainerror.BadInput, "output value must be positive")
		}
		target += out.Value
	}
	if target <= 0 {
		return nil, chainerror.New(chainerror.BadInput, "total output value must be positive")
	}

	selected, total, err := SelectCoins(unspents, target+feeSat)
	if err != nil {
		return nil, err
	}

	tx := &UnsignedTransaction{
		Version:        params.TxVersion,
		Overwintered:   params.Overwintered,
		VersionGroupID: params.VersionGroupID(),
	}

	for _, u := range selected {
		tx.Inputs = append(tx.Inputs, UnsignedInput{
			PrevTxHash: u.TxHash,
			PrevVout:   u.Vout,
			Amount:     u.Value,
			Sequence:   sequenceFinal,
		})
	}

	tx.Outputs = append(tx.Outputs, outputs...)

	change := total - target - feeSat
	if change > 0 {
		if len(changeScript) == 0 {
			return nil, chainerror.New(chainerror.BadInput, "change output required but no change script supplied")
		}
		tx.Outputs = append(tx.Outputs, Output{Value: change, ScriptPubKey: changeScript})
	}

	return tx, nil
}
