package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteCommand is the parsed form of a CLI quote request.
type QuoteCommand struct {
	NativeAmount     string
	FromCurrencyCode string
	ToCurrencyCode   string
}

// quotePattern matches "<native-amount> <currency> to <currency>", with the
// amount in integer smallest units.
var quotePattern = regexp.MustCompile(`^(\d+)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// ParseQuoteCommand parses a quote command.
// Examples:
//   - "100000000 BTC to ETH"
//   - "quote 50000 USDT to BTC"
func ParseQuoteCommand(command string) (*QuoteCommand, error) {
	command = strings.TrimSpace(strings.ToUpper(command))
	command = strings.TrimPrefix(command, "QUOTE ")

	matches := quotePattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid quote command format. Expected: '<native-amount> <currency> to <currency>' (e.g., '100000000 BTC to ETH')")
	}

	return &QuoteCommand{
		NativeAmount:     matches[1],
		FromCurrencyCode: matches[2],
		ToCurrencyCode:   matches[3],
	}, nil
}

// ParsePair parses a rate pair of the form "BTC/iso:USD".
func ParsePair(pair string) (from, to string, err error) {
	parts := strings.Split(strings.TrimSpace(pair), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid pair %q. Expected: '<currency>/<currency>' (e.g., 'BTC/iso:USD')", pair)
	}
	return parts[0], parts[1], nil
}
