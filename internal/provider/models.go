package provider

import "strings"

// ModelType names a standard data model the terminal can fetch. Each
// ModelType maps to a specific data structure in pkg/models/, and any
// number of vendors may serve it.
type ModelType string

// --- Equity ---
const (
	ModelEquityHistorical ModelType = "EquityHistorical"
	ModelEquityQuote      ModelType = "EquityQuote"
	ModelAnalystRatings   ModelType = "AnalystRatings"
	ModelInsiderTrading   ModelType = "InsiderTrading"
)

// --- Crypto ---
const (
	ModelCryptoHistorical ModelType = "CryptoHistorical"
	ModelCryptoQuote      ModelType = "CryptoQuote"
	ModelCryptoOrderBook  ModelType = "CryptoOrderBook"
	ModelCryptoListings   ModelType = "CryptoListings"
	ModelOnChainMetric    ModelType = "OnChainMetric"
)

// --- Currency / Forex ---
const (
	ModelCurrencyHistorical ModelType = "CurrencyHistorical"
	ModelCurrencyQuote      ModelType = "CurrencyQuote"
)

// --- News ---
const (
	ModelCompanyNews ModelType = "CompanyNews"
	ModelWorldNews   ModelType = "WorldNews"
)

// --- Behavioural analysis ---
const (
	ModelSocialSentiment ModelType = "SocialSentiment"
	ModelSocialPosts     ModelType = "SocialPosts"
)

// --- Economy ---
const (
	ModelEconomicSeries ModelType = "EconomicSeries"
	ModelEconomicSearch ModelType = "EconomicSearch"
	ModelDatasetSeries  ModelType = "DatasetSeries"
)

// AllModels returns all defined model types. Useful for iteration and validation.
func AllModels() []ModelType {
	return []ModelType{
		ModelEquityHistorical, ModelEquityQuote, ModelAnalystRatings, ModelInsiderTrading,
		ModelCryptoHistorical, ModelCryptoQuote, ModelCryptoOrderBook, ModelCryptoListings, ModelOnChainMetric,
		ModelCurrencyHistorical, ModelCurrencyQuote,
		ModelCompanyNews, ModelWorldNews,
		ModelSocialSentiment, ModelSocialPosts,
		ModelEconomicSeries, ModelEconomicSearch, ModelDatasetSeries,
	}
}

// ParseModelType resolves a user-typed model name case-insensitively.
func ParseModelType(s string) (ModelType, bool) {
	for _, m := range AllModels() {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// ModelCategory returns the terminal menu a model belongs to.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelEquityHistorical, ModelEquityQuote:
		return "Stocks"
	case ModelAnalystRatings, ModelInsiderTrading:
		return "Stocks / Due Diligence"
	case ModelCryptoHistorical, ModelCryptoQuote, ModelCryptoOrderBook, ModelCryptoListings:
		return "Crypto"
	case ModelOnChainMetric:
		return "Crypto / On-Chain"
	case ModelCurrencyHistorical, ModelCurrencyQuote:
		return "Forex"
	case ModelCompanyNews, ModelWorldNews:
		return "News"
	case ModelSocialSentiment, ModelSocialPosts:
		return "Behavioural Analysis"
	case ModelEconomicSeries, ModelEconomicSearch, ModelDatasetSeries:
		return "Economy"
	default:
		return "Other"
	}
}
