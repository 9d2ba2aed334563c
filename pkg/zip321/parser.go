// Package zip321 implements the ZIP 321 payment request URI format for
// Sprout payments.
//
// URI Format:
//
//	zcash:<address>?amount=<ZEC>&memo=<base64url>&message=<text>
//
// Multiple recipients use indexed parameters:
//
//	zcash:?address=<addr0>&amount=<amt0>&address.1=<addr1>&amount.1=<amt1>
//
// Amounts are decimal ZEC with at most 8 fractional digits and are carried
// as zatoshi. Memos are base64url without padding and may only be sent to
// shielded (zc/zt) addresses.
//
// See: https://zips.z.cash/zip-0321
package zip321

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
	"github.com/suffix-labs/zcash-sprout/pkg/transaction"
)

// ZatoshiPerZEC is the number of zatoshi in one ZEC.
const ZatoshiPerZEC = 100_000_000

// maxIndex is the largest parameter index ZIP 321 allows.
const maxIndex = 9999

// PaymentRequest represents a parsed ZIP 321 payment request.
type PaymentRequest struct {
	Payments []Payment
}

// Payment is one recipient of a request.
type Payment struct {
	Address string  // zc/zt payment address or t-address
	Amount  *uint64 // Zatoshi (nil = user specifies)
	Memo    []byte  // Decoded memo, at most 512 bytes
	Label   *string
	Message *string
}

// Parse parses a ZIP 321 payment request URI.
//
// URI formats supported:
//  1. Single recipient: zcash:<address>?amount=1.5&memo=aGVsbG8
//  2. Multiple recipients: zcash:?address=addr0&amount=1&address.1=addr1&amount.1=2
func Parse(uri string) (*PaymentRequest, error) {
	if !strings.HasPrefix(strings.ToLower(uri), "zcash:") {
		return nil, fmt.Errorf("payment request must use the zcash: scheme")
	}
	uri = uri[len("zcash:"):]

	baseAddress, query, _ := strings.Cut(uri, "?")

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	var payments []Payment
	if hasIndexedParams(params) {
		if baseAddress != "" {
			params.Set("address", baseAddress)
		}
		payments, err = parseIndexedPayments(params)
		if err != nil {
			return nil, err
		}
	} else {
		payment, err := parsePayment(params, 0, baseAddress)
		if err != nil {
			return nil, err
		}
		payments = []Payment{payment}
	}

	return &PaymentRequest{Payments: payments}, nil
}

// parsePayment reads the parameters of payment idx. base is the address
// from the URI path, only meaningful for index 0.
func parsePayment(params url.Values, idx int, base string) (Payment, error) {
	payment := Payment{Address: base}
	if address := getIndexedParam(params, "address", idx); address != "" {
		if base != "" && address != base {
			return payment, fmt.Errorf("payment %d has two addresses", idx)
		}
		payment.Address = address
	}
	if payment.Address == "" {
		return payment, fmt.Errorf("payment %d missing address", idx)
	}

	if amountStr := getIndexedParam(params, "amount", idx); amountStr != "" {
		amount, err := ParseAmount(amountStr)
		if err != nil {
			return payment, fmt.Errorf("payment %d invalid amount: %w", idx, err)
		}
		payment.Amount = &amount
	}

	if memo := getIndexedParam(params, "memo", idx); memo != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(memo)
		if err != nil {
			return payment, fmt.Errorf("payment %d invalid memo: %w", idx, err)
		}
		if len(decoded) > sprout.MemoSize {
			return payment, fmt.Errorf("payment %d memo is %d bytes, maximum is %d", idx, len(decoded), sprout.MemoSize)
		}
		payment.Memo = decoded
	}

	if label := getIndexedParam(params, "label", idx); label != "" {
		payment.Label = &label
	}
	if message := getIndexedParam(params, "message", idx); message != "" {
		payment.Message = &message
	}
	return payment, nil
}

// parseIndexedPayments parses multiple recipients, ordered by index.
func parseIndexedPayments(params url.Values) ([]Payment, error) {
	seen := make(map[int]bool)
	for key := range params {
		idx, ok := extractIndex(key)
		if !ok {
			return nil, fmt.Errorf("invalid parameter name %q", key)
		}
		seen[idx] = true
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	payments := make([]Payment, 0, len(indices))
	for _, idx := range indices {
		payment, err := parsePayment(params, idx, "")
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// hasIndexedParams checks if the query contains "name.N" parameters.
func hasIndexedParams(params url.Values) bool {
	for key := range params {
		if strings.Contains(key, ".") {
			return true
		}
	}
	return false
}

// extractIndex extracts the index from a parameter name. "address" is
// index 0; "amount.42" is 42. ZIP 321 forbids leading zeros.
func extractIndex(paramName string) (int, bool) {
	_, suffix, found := strings.Cut(paramName, ".")
	if !found {
		return 0, true
	}
	if suffix == "" || (len(suffix) > 1 && suffix[0] == '0') {
		return 0, false
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 0 || idx > maxIndex {
		return 0, false
	}
	return idx, true
}

// getIndexedParam gets a parameter value for a specific index. Index 0
// may be written without a suffix.
func getIndexedParam(params url.Values, name string, index int) string {
	if index == 0 {
		return params.Get(name)
	}
	return params.Get(fmt.Sprintf("%s.%d", name, index))
}

// ParseAmount converts a decimal ZEC string into zatoshi without going
// through floating point.
func ParseAmount(amountStr string) (uint64, error) {
	whole, frac, hasFrac := strings.Cut(amountStr, ".")
	if whole == "" || (hasFrac && frac == "") {
		return 0, fmt.Errorf("not a valid amount: %q", amountStr)
	}
	if len(frac) > 8 {
		return 0, fmt.Errorf("amount has more than 8 decimal places")
	}
	for _, s := range []string{whole, frac} {
		if strings.TrimLeft(s, "0123456789") != "" {
			return 0, fmt.Errorf("not a valid amount: %q", amountStr)
		}
	}

	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a valid amount: %w", err)
	}
	var f uint64
	if frac != "" {
		padded := frac + strings.Repeat("0", 8-len(frac))
		if f, err = strconv.ParseUint(padded, 10, 64); err != nil {
			return 0, fmt.Errorf("not a valid amount: %w", err)
		}
	}

	if w > sprout.MaxValue/ZatoshiPerZEC {
		return 0, &sprout.ValidationError{
			Code:    sprout.ErrValueOutOfRange,
			Message: "amount exceeds 2^53-1 zatoshi",
		}
	}
	zats := w*ZatoshiPerZEC + f
	if err := sprout.CheckValue("amount", zats); err != nil {
		return 0, err
	}
	return zats, nil
}

// FormatAmount renders zatoshi as decimal ZEC without trailing zeros.
func FormatAmount(zats uint64) string {
	s := fmt.Sprintf("%d.%08d", zats/ZatoshiPerZEC, zats%ZatoshiPerZEC)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Encode creates a ZIP 321 URI from a PaymentRequest.
func (req *PaymentRequest) Encode() string {
	if len(req.Payments) == 0 {
		return "zcash:"
	}
	if len(req.Payments) == 1 {
		p := req.Payments[0]
		uri := "zcash:" + p.Address
		if q := encodeParams(p, ""); q != "" {
			uri += "?" + q
		}
		return uri
	}

	parts := make([]string, 0, len(req.Payments))
	for i, p := range req.Payments {
		suffix := ""
		if i > 0 {
			suffix = "." + strconv.Itoa(i)
		}
		parts = append(parts, "address"+suffix+"="+url.QueryEscape(p.Address))
		if q := encodeParams(p, suffix); q != "" {
			parts = append(parts, q)
		}
	}
	return "zcash:?" + strings.Join(parts, "&")
}

func encodeParams(p Payment, suffix string) string {
	var parts []string
	if p.Amount != nil {
		parts = append(parts, "amount"+suffix+"="+FormatAmount(*p.Amount))
	}
	if p.Memo != nil {
		parts = append(parts, "memo"+suffix+"="+base64.RawURLEncoding.EncodeToString(p.Memo))
	}
	if p.Label != nil {
		parts = append(parts, "label"+suffix+"="+url.QueryEscape(*p.Label))
	}
	if p.Message != nil {
		parts = append(parts, "message"+suffix+"="+url.QueryEscape(*p.Message))
	}
	return strings.Join(parts, "&")
}

// Total sums the amounts of every payment. Payments without an amount
// make it fail.
func (req *PaymentRequest) Total() (uint64, error) {
	var total uint64
	for i, p := range req.Payments {
		if p.Amount == nil {
			return 0, fmt.Errorf("payment %d has no amount", i)
		}
		var err error
		if total, err = sprout.AddValues("total", total, *p.Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// AddTo adds every payment of the request to tx: shielded addresses become
// queued JoinSplit outputs, t-addresses become transparent outputs.
func (req *PaymentRequest) AddTo(tx *transaction.Transaction, net *keys.Network) error {
	for i, p := range req.Payments {
		if p.Amount == nil {
			return fmt.Errorf("payment %d has no amount", i)
		}

		if addr, err := keys.DecodePaymentAddress(p.Address, net); err == nil {
			if _, err := tx.AddShieldedOutput(addr, *p.Amount, p.Memo); err != nil {
				return fmt.Errorf("payment %d: %w", i, err)
			}
			continue
		}

		script, err := keys.OutputScript(p.Address, net)
		if err != nil {
			return fmt.Errorf("payment %d: %w", i, err)
		}
		if p.Memo != nil {
			return fmt.Errorf("payment %d: memos cannot be sent to transparent addresses", i)
		}
		if _, err := tx.AddOutput(script, *p.Amount); err != nil {
			return fmt.Errorf("payment %d: %w", i, err)
		}
	}
	return nil
}
