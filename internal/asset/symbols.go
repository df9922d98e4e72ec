package asset

// Seed data for the registry: ISO 4217 fiat currencies with their standard
// fraction digits, and digital assets that either need an alias mapping or a
// non-default scale. Anything not listed here is synthesized on first use as
// a Digital asset with scale 8.

var fiatScales = map[string]int32{
	"AUD": 2, "BRL": 2, "CAD": 2, "CHF": 2, "CNY": 2, "CZK": 2, "DKK": 2,
	"EUR": 2, "GBP": 2, "HKD": 2, "HUF": 2, "IDR": 2, "ILS": 2, "INR": 2,
	"ISK": 0, "JPY": 0, "KRW": 0, "MXN": 2, "MYR": 2, "NOK": 2, "NZD": 2,
	"PHP": 2, "PLN": 2, "RON": 2, "RUB": 2, "SEK": 2, "SGD": 2, "THB": 2,
	"TRY": 2, "TWD": 2, "UAH": 2, "USD": 2, "VND": 0, "ZAR": 2,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

type digitalSeed struct {
	symbol  string
	scale   int32
	aliases []string
}

var digitalSeeds = []digitalSeed{
	{symbol: "BTC", scale: 8, aliases: []string{"XBT"}},
	{symbol: "XDG", scale: 8, aliases: []string{"DOGE"}},
	{symbol: "LTC", scale: 8},
	{symbol: "NMC", scale: 8},
	{symbol: "PPC", scale: 8},
	{symbol: "XPM", scale: 8},
	{symbol: "XRP", scale: 8},
	{symbol: "DRK", scale: 8},
	{symbol: "VTC", scale: 8},
	{symbol: "FTC", scale: 8},
	{symbol: "QRK", scale: 8},
}

// fiatAliases maps alternate fiat spellings onto their canonical code.
var fiatAliases = map[string]string{
	"CNH": "CNY",
	"RMB": "CNY",
}
