package domain

// SupportedAsset describes one tradeable cryptocurrency in the static
// catalog. OracleID is the identifier used by the upstream price feed.
type SupportedAsset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	OracleID string `json:"-"`
}

// SupportedAssets is the fixed asset catalog. Not user-extensible.
var SupportedAssets = []SupportedAsset{
	{Symbol: "BTC", Name: "Bitcoin", OracleID: "bitcoin"},
	{Symbol: "ETH", Name: "Ethereum", OracleID: "ethereum"},
	{Symbol: "LTC", Name: "Litecoin", OracleID: "litecoin"},
	{Symbol: "DOGE", Name: "Dogecoin", OracleID: "dogecoin"},
	{Symbol: "MATIC", Name: "Polygon", OracleID: "polygon"},
	{Symbol: "BNB", Name: "Binance Coin", OracleID: "binancecoin"},
	{Symbol: "SOL", Name: "Solana", OracleID: "solana"},
}

// AssetBySymbol looks up a catalog entry by its symbol.
func AssetBySymbol(symbol string) (SupportedAsset, bool) {
	for _, a := range SupportedAssets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return SupportedAsset{}, false
}
