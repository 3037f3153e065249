package swap

import (
	"context"

	"github.com/google/uuid"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/script"
	"github.com/kgcdream2019/utxoswap/internal/txbuilder"
)

// SendFee pays amount to feePubKey's P2PKH address, funded from this
// wallet's own unspents. Grounded in send_buyer_fee.
func (e *Engine) SendFee(ctx context.Context, feePubKey []byte, amount float64) (*txbuilder.ExtendedTx, error) {
	feeAddrHash, err := addrHashFromPubKey(feePubKey)
	if err != nil {
		return nil, err
	}
	pkScript, err := script.P2PKHScript(feeAddrHash)
	if err != nil {
		return nil, err
	}
	output := txbuilder.Output{
		Value:        txbuilder.F64ToSat(amount, e.params.Decimals),
		ScriptPubKey: pkScript,
	}
	return e.buildAndBroadcast(ctx, []txbuilder.Output{output}, nil)
}

// SendBuyerPayment funds an HTLC paying amount into a redeem script whose
// refund branch belongs to the buyer (refundPubKey) and whose claim branch
// belongs to the seller (claimPubKey). Grounded in send_buyer_payment.
func (e *Engine) SendBuyerPayment(ctx context.Context, timeLock uint32, refundPubKey, claimPubKey, secretHash []byte, amount float64) (*txbuilder.ExtendedTx, error) {
	return e.sendHTLCPayment(ctx, timeLock, refundPubKey, claimPubKey, secretHash, amount)
}

// SendSellerPayment funds an HTLC paying amount into a redeem script whose
// refund branch belongs to the seller (refundPubKey) and whose claim
// branch belongs to the buyer (claimPubKey). Grounded in
// send_seller_payment.
func (e *Engine) SendSellerPayment(ctx context.Context, timeLock uint32, refundPubKey, claimPubKey, secretHash []byte, amount float64) (*txbuilder.ExtendedTx, error) {
	return e.sendHTLCPayment(ctx, timeLock, refundPubKey, claimPubKey, secretHash, amount)
}

func (e *Engine) sendHTLCPayment(ctx context.Context, timeLock uint32, refundPubKey, claimPubKey, secretHash []byte, amount float64) (*txbuilder.ExtendedTx, error) {
	redeemScript, err := script.HTLCScript(timeLock, secretHash, refundPubKey, claimPubKey)
	if err != nil {
		return nil, err
	}
	pkScript, err := script.P2SHScript(redeemScript)
	if err != nil {
		return nil, err
	}
	output := txbuilder.Output{
		Value:        txbuilder.F64ToSat(amount, e.params.Decimals),
		ScriptPubKey: pkScript,
	}
	return e.buildAndBroadcast(ctx, []txbuilder.Output{output}, redeemScript)
}

// buildAndBroadcast selects this wallet's unspents, builds, signs, and
// broadcasts a transaction paying outputs, funded from e.keyPair's
// address. It holds walletMu for the full select-build-broadcast
// sequence so a concurrent action cannot select the same unspent.
func (e *Engine) buildAndBroadcast(ctx context.Context, outputs []txbuilder.Output, redeemScript []byte) (*txbuilder.ExtendedTx, error) {
	e.walletMu.Lock()
	defer e.walletMu.Unlock()

	correlationID := uuid.NewString()
	e.logger.Debugf("broadcast %s: selecting unspents for %d output(s)", correlationID, len(outputs))

	unspents, err := e.client.ListUnspentOrdered(ctx, e.keyPair.AddrHash)
	if err != nil {
		return nil, err
	}

	changeScript, err := script.P2PKHScript(e.keyPair.AddrHash)
	if err != nil {
		return nil, err
	}

	unsigned, err := txbuilder.BuildUnsigned(unspents, outputs, changeScript, e.params.FeeSat, e.params)
	if err != nil {
		return nil, err
	}

	prevScript, err := script.P2PKHScript(e.keyPair.AddrHash)
	if err != nil {
		return nil, err
	}
	specs := make([]txbuilder.InputSigningSpec, len(unsigned.Inputs))
	for i := range unsigned.Inputs {
		specs[i] = txbuilder.InputSigningSpec{
			PrevScript: prevScript,
			Mode:       txbuilder.SpendP2PKH,
			PubKey:     e.keyPair.PubKey,
		}
	}

	signed, err := txbuilder.SignTransaction(unsigned, specs, e.keyPair.Private)
	if err != nil {
		return nil, err
	}

	if _, err := e.client.SendRawTransaction(ctx, signed.Serialize()); err != nil {
		e.logger.Warnf("broadcast %s: failed: %v", correlationID, err)
		return nil, err
	}
	e.logger.Infof("broadcast %s: sent txid=%s", correlationID, signed.TxIDHex())

	return &txbuilder.ExtendedTx{Tx: *signed, RedeemScript: redeemScript}, nil
}

func addrHashFromPubKey(pubKey []byte) ([]byte, error) {
	if len(pubKey) != 33 {
		return nil, chainerror.New(chainerror.BadInput, "public key must be 33-byte compressed form")
	}
	return script.Hash160(pubKey), nil
}
