package core

// Token is one approved collateral token and the oracle feed quoting it.
type Token struct {
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`
	Feed    PriceFeed
}

// Registry is the fixed, ordered set of approved collateral tokens. It is
// built once at engine construction and never mutated; iteration order is
// the construction order.
type Registry struct {
	tokens []*Token
	index  map[string]*Token
}

// NewRegistry builds a registry from parallel asset and feed lists. The
// lists must have equal length.
func NewRegistry(assetIDs []string, symbols []string, feeds []PriceFeed) (*Registry, error) {
	if len(assetIDs) != len(feeds) || len(assetIDs) != len(symbols) {
		return nil, ErrRegistryMismatch
	}

	r := &Registry{
		tokens: make([]*Token, 0, len(assetIDs)),
		index:  make(map[string]*Token, len(assetIDs)),
	}

	for idx, assetID := range assetIDs {
		if _, ok := r.index[assetID]; ok {
			return nil, ErrRegistryMismatch
		}

		token := &Token{
			AssetID: assetID,
			Symbol:  symbols[idx],
			Feed:    feeds[idx],
		}
		r.tokens = append(r.tokens, token)
		r.index[assetID] = token
	}

	return r, nil
}

// Tokens returns the approved tokens in registry order.
func (r *Registry) Tokens() []*Token {
	tokens := make([]*Token, len(r.tokens))
	copy(tokens, r.tokens)
	return tokens
}

// Has reports whether assetID is an approved collateral token.
func (r *Registry) Has(assetID string) bool {
	_, ok := r.index[assetID]
	return ok
}

// Feed returns the price feed for assetID.
func (r *Registry) Feed(assetID string) (PriceFeed, bool) {
	token, ok := r.index[assetID]
	if !ok {
		return nil, false
	}
	return token.Feed, true
}
