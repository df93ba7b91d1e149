// Package sep7 builds SEP-0007 signing URIs. The scheme hands an unsigned
// envelope to an external wallet; nothing here signs or submits anything.
package sep7

import (
	"net/url"
)

// Scheme is the SEP-0007 URI scheme.
const Scheme = "web+stellar:"

// TxOptions are the optional parameters of a tx operation URI.
type TxOptions struct {
	// Callback is the URL the signed transaction is sent to.
	Callback string
	// Msg is a message shown to the user before signing.
	Msg string
	// NetworkPassphrase identifies the target network.
	NetworkPassphrase string
	// OriginDomain is the domain originating the request.
	OriginDomain string
	// ReturnURL is where the wallet navigates back to afterwards.
	ReturnURL string
	// Replace lists fields to substitute, in SEP-0011 format.
	Replace string
	// Pubkey is the key expected to sign.
	Pubkey string
}

// TransactionURI builds a web+stellar:tx URI for a base64 envelope.
func TransactionURI(xdr string, opts TxOptions) string {
	params := url.Values{}
	params.Set("xdr", xdr)
	setIfPresent(params, "callback", opts.Callback)
	setIfPresent(params, "msg", opts.Msg)
	setIfPresent(params, "network_passphrase", opts.NetworkPassphrase)
	setIfPresent(params, "origin_domain", opts.OriginDomain)
	setIfPresent(params, "return_url", opts.ReturnURL)
	setIfPresent(params, "replace", opts.Replace)
	setIfPresent(params, "pubkey", opts.Pubkey)

	return Scheme + "tx?" + params.Encode()
}

// PayOptions are the optional parameters of a pay operation URI.
type PayOptions struct {
	AssetCode         string
	AssetIssuer       string
	Memo              string
	MemoType          string
	Callback          string
	Msg               string
	NetworkPassphrase string
	OriginDomain      string
	ReturnURL         string
}

// PaymentURI builds a web+stellar:pay URI.
func PaymentURI(destination, amount string, opts PayOptions) string {
	params := url.Values{}
	params.Set("destination", destination)
	setIfPresent(params, "amount", amount)
	setIfPresent(params, "asset_code", opts.AssetCode)
	setIfPresent(params, "asset_issuer", opts.AssetIssuer)
	setIfPresent(params, "memo", opts.Memo)
	setIfPresent(params, "memo_type", opts.MemoType)
	setIfPresent(params, "callback", opts.Callback)
	setIfPresent(params, "msg", opts.Msg)
	setIfPresent(params, "network_passphrase", opts.NetworkPassphrase)
	setIfPresent(params, "origin_domain", opts.OriginDomain)
	setIfPresent(params, "return_url", opts.ReturnURL)

	return Scheme + "pay?" + params.Encode()
}

func setIfPresent(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
