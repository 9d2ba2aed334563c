// zcash-sprout CLI - Sprout JoinSplit transaction builder
//
// This CLI drives the zcash-sprout library: it creates Sprout keys,
// builds transactions that move transparent funds into JoinSplit outputs
// (proofs come from an external prover over ZeroMQ), and scans
// transactions for notes.
//
// Example usage:
//
//	# Create a spending key and its payment address
//	zcash-sprout keygen
//
//	# Parse a ZIP 321 payment request
//	zcash-sprout parse-uri "zcash:zcU1Cd6...?amount=1.5&memo=Y29mZmVl"
//
//	# Build, prove and sign a shielding transaction
//	zcash-sprout shield proposal.json
//
//	# Find notes paid to a key
//	zcash-sprout scan <tx-hex> <spending-key>
//
// Settings are read from the JSON file named by $ZCASH_SPROUT_CONFIG
// (default zcash-sprout.json).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/suffix-labs/zcash-sprout/pkg/api"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/prover"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
	"github.com/suffix-labs/zcash-sprout/pkg/transaction"
	"github.com/suffix-labs/zcash-sprout/pkg/zip321"
)

const version = "v0.1.0"

const defaultConfigPath = "zcash-sprout.json"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		printUsage()
		return
	}
	if command == "version" {
		cmdVersion()
		return
	}

	configPath := os.Getenv("ZCASH_SPROUT_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		fatal(err)
	}
	log := newLogger(cfg)
	args := os.Args[2:]

	switch command {
	case "init-config":
		err = cmdInitConfig(cfg, configPath)
	case "keygen":
		err = cmdKeygen(cfg)
	case "address":
		err = cmdAddress(cfg, args)
	case "parse-uri":
		err = cmdParseURI(args)
	case "shield":
		err = cmdShield(cfg, log, args)
	case "decode-tx":
		err = cmdDecodeTx(cfg, args)
	case "scan":
		err = cmdScan(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("command failed")
		fatal(err)
	}
	log.Debug().Str("command", command).Msg("command finished")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`zcash-sprout - Sprout JoinSplit transaction builder

Usage:
  zcash-sprout <command> [arguments]

Commands:
  keygen                        Create a spending key and payment address
  address <spending-key>        Show the payment address of a spending key
  parse-uri <uri>               Parse a ZIP 321 payment request URI
  shield <proposal.json>        Build, prove and sign a shielding transaction
  decode-tx <tx-hex>            Show the contents of a raw transaction
  scan <tx-hex> <spending-key>  List the notes a transaction pays to a key
  init-config                   Write the default configuration file
  version                       Show version information
  help                          Show this help message

Configuration ($ZCASH_SPROUT_CONFIG, default zcash-sprout.json):
  {
    "network": "main",
    "tx_version": 2,
    "lock_time": 0,
    "prover_endpoint": "tcp://127.0.0.1:8234",
    "prover_timeout_seconds": 300,
    "log_level": "info",
    "log_console": false
  }

Proposal file for shield:
  {
    "inputs": [{"txid": "<hex>", "vout": 0, "value": 100000000,
                "script_pubkey": "<base64>", "wif": "<key>"}],
    "outputs": [{"address": "t1...", "value": 10000000}],
    "shielded_outputs": [{"address": "zc...", "value": 89990000}],
    "payment_request": "zcash:..."
  }`)
}

func cmdVersion() {
	fmt.Println("zcash-sprout " + version)
	fmt.Println("Sprout JoinSplit construction with an external PHGR13 prover")
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("missing arguments\nUsage: zcash-sprout %s", usage)
	}
	return nil
}

func cmdInitConfig(cfg *Config, path string) error {
	if err := SaveConfig(cfg, path); err != nil {
		return err
	}
	fmt.Println("Wrote " + path)
	return nil
}

func cmdKeygen(cfg *Config) error {
	net := cfg.NetworkParams()
	key, err := keys.RandomSpendingKey(nil)
	if err != nil {
		return err
	}
	addr, err := key.Address()
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"network":      net.Name,
		"spending_key": key.Encode(net),
		"address":      addr.Encode(net),
	})
}

func cmdAddress(cfg *Config, args []string) error {
	if err := needArgs(args, 1, "address <spending-key>"); err != nil {
		return err
	}
	net := cfg.NetworkParams()
	key, err := keys.DecodeSpendingKey(args[0], net)
	if err != nil {
		return err
	}
	addr, err := key.Address()
	if err != nil {
		return err
	}
	fmt.Println(addr.Encode(net))
	return nil
}

func cmdParseURI(args []string) error {
	if err := needArgs(args, 1, "parse-uri <uri>"); err != nil {
		return err
	}
	req, err := api.ParsePaymentRequest(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse URI: %w", err)
	}

	fmt.Printf("Payment Request (%d payment(s)):\n\n", len(req.Payments))
	for i, p := range req.Payments {
		fmt.Printf("Payment %d:\n", i+1)
		fmt.Printf("  Address: %s\n", p.Address)
		if p.Amount != nil {
			fmt.Printf("  Amount:  %s ZEC (%d zatoshis)\n", zip321.FormatAmount(*p.Amount), *p.Amount)
		}
		if p.Memo != nil {
			fmt.Printf("  Memo:    %q\n", p.Memo)
		}
		if p.Label != nil {
			fmt.Printf("  Label:   %s\n", *p.Label)
		}
		if p.Message != nil {
			fmt.Printf("  Message: %s\n", *p.Message)
		}
		fmt.Println()
	}
	if total, err := req.Total(); err == nil {
		fmt.Printf("Total: %s ZEC\n", zip321.FormatAmount(total))
	}
	return nil
}

func cmdShield(cfg *Config, log zerolog.Logger, args []string) error {
	if err := needArgs(args, 1, "shield <proposal.json>"); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read proposal: %w", err)
	}
	var proposal api.ShieldingProposal
	if err := json.Unmarshal(data, &proposal); err != nil {
		return fmt.Errorf("failed to decode proposal: %w", err)
	}
	if proposal.Version == 0 {
		proposal.Version = cfg.TxVersion
	}
	if proposal.LockTime == 0 {
		proposal.LockTime = cfg.LockTime
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := prover.NewZMQClient(cfg.ProverEndpoint,
		prover.WithTimeout(cfg.ProverTimeout()),
		prover.WithLogger(log))

	raw, err := api.Shield(ctx, &proposal, cfg.NetworkParams(), client, transaction.WithLogger(log))
	if err != nil {
		return err
	}
	tx, err := api.ParseTransaction(raw)
	if err != nil {
		return err
	}
	txid, err := tx.TxID()
	if err != nil {
		return err
	}
	log.Info().Str("txid", txid).Int("bytes", len(raw)).Msg("shielding transaction built")
	fmt.Println(fasthex.EncodeToString(raw))
	return nil
}

type inputSummary struct {
	PrevTxID string `json:"prev_txid"`
	Index    uint32 `json:"vout"`
	Script   string `json:"script_sig"`
	Sequence uint32 `json:"sequence"`
}

type outputSummary struct {
	Value   uint64 `json:"value"`
	Address string `json:"address,omitempty"`
	Script  string `json:"script_pubkey"`
}

type joinSplitSummary struct {
	VpubOld     uint64                              `json:"vpub_old"`
	VpubNew     uint64                              `json:"vpub_new"`
	Anchor      sprout.Uint256                      `json:"anchor"`
	Nullifiers  [sprout.NumJSInputs]sprout.Uint256  `json:"nullifiers"`
	Commitments [sprout.NumJSOutputs]sprout.Uint256 `json:"commitments"`
}

type txSummary struct {
	TxID            string             `json:"txid"`
	Version         uint32             `json:"version"`
	LockTime        uint32             `json:"lock_time"`
	Inputs          []inputSummary     `json:"inputs"`
	Outputs         []outputSummary    `json:"outputs"`
	JoinSplits      []joinSplitSummary `json:"joinsplits,omitempty"`
	JoinSplitPubKey string             `json:"joinsplit_pubkey,omitempty"`
	JoinSplitSigOK  *bool              `json:"joinsplit_sig_valid,omitempty"`
}

func summarize(tx *transaction.Transaction, net *keys.Network) (*txSummary, error) {
	txid, err := tx.TxID()
	if err != nil {
		return nil, err
	}
	s := &txSummary{TxID: txid, Version: tx.Version, LockTime: tx.LockTime}
	for _, in := range tx.Ins {
		s.Inputs = append(s.Inputs, inputSummary{
			PrevTxID: in.PrevHash.String(),
			Index:    in.Index,
			Script:   fasthex.EncodeToString(in.Script),
			Sequence: in.Sequence,
		})
	}
	for _, out := range tx.Outs {
		o := outputSummary{Value: out.Value, Script: fasthex.EncodeToString(out.Script)}
		if addr, err := keys.AddressFromScript(out.Script, net); err == nil {
			o.Address = addr
		}
		s.Outputs = append(s.Outputs, o)
	}
	for _, d := range tx.JoinSplits {
		s.JoinSplits = append(s.JoinSplits, joinSplitSummary{
			VpubOld:     d.VpubOld,
			VpubNew:     d.VpubNew,
			Anchor:      d.Anchor,
			Nullifiers:  d.Nullifiers,
			Commitments: d.Commitments,
		})
	}
	if len(tx.JoinSplits) > 0 {
		s.JoinSplitPubKey = fasthex.EncodeToString(tx.JoinSplitPubKey[:])
		ok, err := tx.VerifyJoinSplitSig()
		if err != nil {
			return nil, err
		}
		s.JoinSplitSigOK = &ok
	}
	return s, nil
}

func cmdDecodeTx(cfg *Config, args []string) error {
	if err := needArgs(args, 1, "decode-tx <tx-hex>"); err != nil {
		return err
	}
	tx, err := transaction.FromHex(args[0])
	if err != nil {
		return err
	}
	s, err := summarize(tx, cfg.NetworkParams())
	if err != nil {
		return err
	}
	return printJSON(s)
}

type noteSummary struct {
	transaction.ReceivedNote
	Memo string `json:"memo,omitempty"`
}

func cmdScan(cfg *Config, args []string) error {
	if err := needArgs(args, 2, "scan <tx-hex> <spending-key>"); err != nil {
		return err
	}
	raw, err := fasthex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("invalid transaction hex: %w", err)
	}
	notes, err := api.ScanTransaction(raw, args[1], cfg.NetworkParams())
	if err != nil {
		return err
	}
	out := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		s := noteSummary{ReceivedNote: n}
		if !n.Memo.IsEmpty() {
			s.Memo = string(n.Memo.Text())
		}
		out = append(out, s)
	}
	return printJSON(out)
}
