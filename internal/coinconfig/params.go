// Package coinconfig holds the fixed per-coin configuration the rest of the
// swap core is parameterized over. Loading this from a file or environment
// is a collaborator's job; this package only defines the shape and
// validates it.
package coinconfig

import "github.com/kgcdream2019/utxoswap/internal/chainerror"

// Params is the structured configuration record every component in this
// module takes instead of reading global or environment state.
type Params struct {
	// PubKeyHashPrefix is the version byte prepended to a HASH160 for a
	// P2PKH address (0x00 for Bitcoin mainnet).
	PubKeyHashPrefix byte `json:"pubKeyHashPrefix"`
	// ScriptHashPrefix is the version byte for a P2SH address (0x05 for
	// Bitcoin mainnet).
	ScriptHashPrefix byte `json:"scriptHashPrefix"`
	// WIFPrefix is the version byte for a WIF-encoded private key.
	WIFPrefix byte `json:"wifPrefix"`

	// TAddrPrefix, when non-nil, selects the Zcash-style dual-prefix
	// address form (two extra bytes ahead of the hash instead of one).
	TAddrPrefix *[2]byte `json:"tAddrPrefix,omitempty"`

	// Decimals is the number of fractional digits the coin's RPC reports
	// amounts in (8 for Bitcoin-family coins).
	Decimals uint8 `json:"decimals"`

	// Overwintered enables the Overwinter/Sapling transaction header
	// (version_group_id, expiry_height) for Zcash-family coins.
	Overwintered bool `json:"overwintered"`
	// TxVersion is the transaction version written into UnsignedTransaction.
	TxVersion int32 `json:"txVersion"`
	// Segwit, when true, would populate a witness stack; this module only
	// targets the non-SegWit build, so Segwit must be false.
	Segwit bool `json:"segwit"`

	// FeeSat is the flat fee, in smallest units, subtracted from HTLC
	// actions. 1000 per the core's hard-coded floor.
	FeeSat int64 `json:"feeSat"`
}

// NewParams returns a Params with the sane Bitcoin-mainnet defaults every
// field needs before a collaborator overrides them from a file or
// environment: 8 decimals, a 1000-unit flat fee, non-overwintered, non-segwit.
func NewParams() *Params {
	return &Params{
		PubKeyHashPrefix: 0x00,
		ScriptHashPrefix: 0x05,
		WIFPrefix:        0x80,
		Decimals:         Default8Decimals,
		Overwintered:     false,
		TxVersion:        1,
		Segwit:           false,
		FeeSat:           1000,
	}
}

// Validate rejects configurations the core cannot operate on.
func (p *Params) Validate() error {
	if p.Decimals == 0 {
		return chainerror.New(chainerror.BadInput, "decimals must be nonzero")
	}
	if p.Segwit {
		return chainerror.New(chainerror.BadInput, "segwit coins are not supported by this build")
	}
	if p.FeeSat <= 0 {
		return chainerror.New(chainerror.BadInput, "fee_sat must be positive")
	}
	return nil
}

// VersionGroupID returns the Overwinter-family version_group_id for the
// configured transaction version, or 0 if the coin is not overwintered or
// the version has no assigned group id.
func (p *Params) VersionGroupID() uint32 {
	if !p.Overwintered {
		return 0
	}
	switch p.TxVersion {
	case 3:
		return 0x03C48270
	case 4:
		return 0x892F2085
	default:
		return 0
	}
}

// Default8Decimals is the default decimals value for Bitcoin-family coins.
const Default8Decimals uint8 = 8
