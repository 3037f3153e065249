package swap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/script"
	"github.com/kgcdream2019/utxoswap/internal/txbuilder"
)

// sequenceFinal is used by claim-branch spends.
const sequenceFinal = uint32(0xFFFFFFFF)

// sequenceFinalMinusOne is used by refund-branch spends so that lock_time
// is actually enforced by consensus.
const sequenceFinalMinusOne = uint32(0xFFFFFFFE)

// SellerSpendsBuyerPayment claims the buyer's HTLC payment by revealing
// secret, paying amount-minus-fee to the seller's own address. Grounded in
// send_seller_spends_buyer_payment.
func (e *Engine) SellerSpendsBuyerPayment(ctx context.Context, buyerPayment *txbuilder.ExtendedTx, secret []byte) (*txbuilder.ExtendedTx, error) {
	return e.spendHTLC(ctx, buyerPayment, spendParams{mode: txbuilder.SpendHTLCClaim, secret: secret})
}

// BuyerSpendsSellerPayment claims the seller's HTLC payment by revealing
// secret, paying amount-minus-fee to the buyer's own address. Grounded in
// send_buyer_spends_seller_payment.
func (e *Engine) BuyerSpendsSellerPayment(ctx context.Context, sellerPayment *txbuilder.ExtendedTx, secret []byte) (*txbuilder.ExtendedTx, error) {
	return e.spendHTLC(ctx, sellerPayment, spendParams{mode: txbuilder.SpendHTLCClaim, secret: secret})
}

// BuyerRefundsPayment reclaims the buyer's own HTLC payment after its time
// lock has passed. Grounded in send_buyer_refunds_payment.
func (e *Engine) BuyerRefundsPayment(ctx context.Context, buyerPayment *txbuilder.ExtendedTx) (*txbuilder.ExtendedTx, error) {
	return e.spendHTLC(ctx, buyerPayment, spendParams{mode: txbuilder.SpendHTLCRefund})
}

// SellerRefundsPayment reclaims the seller's own HTLC payment after its
// time lock has passed. Grounded in send_seller_refunds_payment.
func (e *Engine) SellerRefundsPayment(ctx context.Context, sellerPayment *txbuilder.ExtendedTx) (*txbuilder.ExtendedTx, error) {
	return e.spendHTLC(ctx, sellerPayment, spendParams{mode: txbuilder.SpendHTLCRefund})
}

type spendParams struct {
	mode   txbuilder.SpendMode
	secret []byte
}

// spendHTLC spends output 0 of prevPayment's transaction for its value
// minus the flat fee, to this wallet's own P2PKH address. Claim spends use
// sequenceFinal; refund spends use sequenceFinalMinusOne and a lock_time of
// now, both required for the time-locked branch's CHECKLOCKTIMEVERIFY to
// be satisfied. The fee is subtracted from the claimed amount rather than
// funded separately, matching original_source's payment_value - 1000.
func (e *Engine) spendHTLC(ctx context.Context, prevPayment *txbuilder.ExtendedTx, p spendParams) (*txbuilder.ExtendedTx, error) {
	if len(prevPayment.RedeemScript) == 0 {
		return nil, chainerror.New(chainerror.BadInput, "previous payment has no redeem script")
	}
	if len(prevPayment.Tx.Outputs) == 0 {
		return nil, chainerror.New(chainerror.BadInput, "previous payment has no outputs")
	}

	prevOut := prevPayment.Tx.Outputs[0]
	value := prevOut.Value - e.params.FeeSat
	if value <= 0 {
		return nil, chainerror.New(chainerror.InsufficientFunds, "htlc output too small to cover the flat fee")
	}

	ownScript, err := script.P2PKHScript(e.keyPair.AddrHash)
	if err != nil {
		return nil, err
	}

	unsigned := &txbuilder.UnsignedTransaction{
		Version:        e.params.TxVersion,
		Overwintered:   e.params.Overwintered,
		VersionGroupID: e.params.VersionGroupID(),
		Outputs:        []txbuilder.Output{{Value: value, ScriptPubKey: ownScript}},
	}

	input := txbuilder.UnsignedInput{
		PrevTxHash: prevPayment.Tx.Hash(),
		PrevVout:   0,
		Amount:     prevOut.Value,
	}
	if p.mode == txbuilder.SpendHTLCRefund {
		input.Sequence = sequenceFinalMinusOne
		unsigned.LockTime = uint32(time.Now().Unix())
	} else {
		input.Sequence = sequenceFinal
	}
	unsigned.Inputs = []txbuilder.UnsignedInput{input}

	spec := txbuilder.InputSigningSpec{
		PrevScript:   prevOut.ScriptPubKey,
		Mode:         p.mode,
		RedeemScript: prevPayment.RedeemScript,
		Secret:       p.secret,
		PubKey:       e.keyPair.PubKey,
	}

	signed, err := txbuilder.SignTransaction(unsigned, []txbuilder.InputSigningSpec{spec}, e.keyPair.Private)
	if err != nil {
		return nil, err
	}

	correlationID := uuid.NewString()
	if _, err := e.client.SendRawTransaction(ctx, signed.Serialize()); err != nil {
		e.logger.Warnf("spend %s: failed: %v", correlationID, err)
		return nil, err
	}
	e.logger.Infof("spend %s: sent txid=%s mode=%d", correlationID, signed.TxIDHex(), p.mode)

	return &txbuilder.ExtendedTx{Tx: *signed}, nil
}
