// Package marketdata implements the price history sources: the Yahoo
// chart API, the PostgreSQL price table and a Redis read-through cache.
package marketdata

import (
	"strings"

	"github.com/wonny/varlytics/internal/contracts"
)

// Exchange suffixes tried in order for plain equity symbols
var exchangeSuffixes = []string{".NS", ".BO"}

// indexSymbols maps Indian index aliases to Yahoo tickers
var indexSymbols = map[string]string{
	// NSE
	"NIFTY": "^NSEI", "NIFTY50": "^NSEI", "NIFTY_50": "^NSEI", "^NSEI": "^NSEI",
	"BANKNIFTY": "^NSEBANK", "BANK_NIFTY": "^NSEBANK", "NIFTYBANK": "^NSEBANK", "^NSEBANK": "^NSEBANK",
	"NIFTYIT": "^CNXIT", "NIFTY_IT": "^CNXIT", "^CNXIT": "^CNXIT",
	"NIFTYPHARMA": "^CNXPHARMA", "NIFTY_PHARMA": "^CNXPHARMA", "^CNXPHARMA": "^CNXPHARMA",
	"NIFTYAUTO": "^CNXAUTO", "NIFTY_AUTO": "^CNXAUTO", "^CNXAUTO": "^CNXAUTO",
	"NIFTYFMCG": "^CNXFMCG", "NIFTY_FMCG": "^CNXFMCG", "^CNXFMCG": "^CNXFMCG",
	"NIFTYMETAL": "^CNXMETAL", "NIFTY_METAL": "^CNXMETAL", "^CNXMETAL": "^CNXMETAL",
	"NIFTYREALTY": "^CNXREALTY", "NIFTY_REALTY": "^CNXREALTY", "^CNXREALTY": "^CNXREALTY",
	"NIFTYENERGY": "^CNXENERGY", "NIFTY_ENERGY": "^CNXENERGY", "^CNXENERGY": "^CNXENERGY",
	"NIFTYINFRA": "^CNXINFRA", "NIFTY_INFRA": "^CNXINFRA", "^CNXINFRA": "^CNXINFRA",
	"NIFTYPSE": "^CNXPSE", "NIFTY_PSE": "^CNXPSE", "^CNXPSE": "^CNXPSE",
	"NIFTYMIDCAP50": "^NSEMDCP50", "NIFTY_MIDCAP_50": "^NSEMDCP50", "^NSEMDCP50": "^NSEMDCP50",
	"NIFTYMIDCAP100": "^NSEMDCP100", "NIFTY_MIDCAP_100": "^NSEMDCP100",
	"NIFTYSMALLCAP50": "NIFTY_SMALLCAP_50.NS", "NIFTY_SMALLCAP_50": "NIFTY_SMALLCAP_50.NS",
	"NIFTYSMALLCAP100": "NIFTY_SMALLCAP_100.NS", "NIFTY_SMALLCAP_100": "NIFTY_SMALLCAP_100.NS",
	"NIFTYNEXT50": "^NSMIDCP", "NIFTY_NEXT_50": "^NSMIDCP", "^NSMIDCP": "^NSMIDCP",
	"NIFTY100": "^CNX100", "NIFTY_100": "^CNX100", "^CNX100": "^CNX100",
	"NIFTY200": "^CNX200", "NIFTY_200": "^CNX200", "^CNX200": "^CNX200",
	"NIFTY500": "^CNX500", "NIFTY_500": "^CNX500", "^CNX500": "^CNX500",

	// BSE
	"SENSEX": "^BSESN", "^BSESN": "^BSESN",
	"BSE100": "^BSE100", "BSE_100": "^BSE100", "^BSE100": "^BSE100",
	"BSE200": "^BSE200", "BSE_200": "^BSE200", "^BSE200": "^BSE200",
	"BSE500": "^BSE500", "BSE_500": "^BSE500", "^BSE500": "^BSE500",
	"BSEMIDCAP": "BSE-MIDCAP.BO", "BSE_MIDCAP": "BSE-MIDCAP.BO",
	"BSESMALLCAP": "BSE-SMLCAP.BO", "BSE_SMALLCAP": "BSE-SMLCAP.BO",
}

// Resolver maps index aliases to Yahoo tickers
type Resolver struct{}

var _ contracts.BenchmarkResolver = Resolver{}

// ResolveBenchmark returns the Yahoo ticker of an index alias
func (Resolver) ResolveBenchmark(symbol string) (string, bool) {
	ticker, ok := indexSymbols[strings.ToUpper(strings.TrimSpace(symbol))]
	return ticker, ok
}

// Candidates returns the tickers to try for symbol, in order.
// Index aliases resolve to their ticker, explicit tickers ("^INDIAVIX",
// "TCS.NS") are used as-is and plain symbols try NSE then BSE.
func Candidates(resolver contracts.BenchmarkResolver, symbol string) []string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return nil
	}
	if ticker, ok := resolver.ResolveBenchmark(s); ok {
		return []string{ticker}
	}
	if strings.HasPrefix(s, "^") || strings.Contains(s, ".") {
		return []string{s}
	}

	out := make([]string, len(exchangeSuffixes))
	for i, suffix := range exchangeSuffixes {
		out[i] = s + suffix
	}
	return out
}
