package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wonny/varlytics/internal/contracts"
)

// Common formatting utilities shared by every command

const (
	ruleHeavy = "═══════════════════════════════════════════════════════════"
	ruleLight = "───────────────────────────────────────────────────────────"
)

// printHeader prints a titled banner to stderr so stdout stays pure JSON
func printHeader(title string, fields ...[2]string) {
	fmt.Fprintln(os.Stderr, ruleHeavy)
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	if len(fields) > 0 {
		fmt.Fprintln(os.Stderr, ruleLight)
		for _, f := range fields {
			fmt.Fprintf(os.Stderr, "  %-10s: %s\n", f[0], f[1])
		}
	}
	fmt.Fprintln(os.Stderr, ruleHeavy)
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) error {
	return writeJSON(os.Stdout, v)
}

// parseHoldings reads SYMBOL=QTY arguments
func parseHoldings(args []string) ([]contracts.Holding, error) {
	holdings := make([]contracts.Holding, 0, len(args))
	for _, arg := range args {
		symbol, qty, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: holding %q must be SYMBOL=QUANTITY", contracts.ErrValidation, arg)
		}
		quantity, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: quantity of %q is not a number", contracts.ErrValidation, arg)
		}
		holdings = append(holdings, contracts.Holding{Symbol: symbol, Quantity: quantity})
	}
	return holdings, nil
}
