package usecase

import (
	"context"
	"fmt"

	"github.com/medilens/backend/internal/domain"
)

// MaxProductsPerMatch caps the number of products resolved for one candidate
const MaxProductsPerMatch = 8

// ProductResolver looks up purchasable products for recognized medicines
type ProductResolver struct {
	catalog  domain.ProductCatalog
	patterns domain.PatternCatalog
}

// NewProductResolver creates a resolver over the given catalogs
func NewProductResolver(catalog domain.ProductCatalog, patterns domain.PatternCatalog) *ProductResolver {
	return &ProductResolver{
		catalog:  catalog,
		patterns: patterns,
	}
}

// Resolve queries the product catalog for a candidate. Queries run in order:
// canonical name, matched variation, then the remaining variations of the
// canonical name. Results are merged in that order, de-duplicated by id and
// capped at MaxProductsPerMatch. An empty product list is a valid outcome.
func (r *ProductResolver) Resolve(ctx context.Context, candidate domain.Candidate) (domain.ResolvedMatch, error) {
	match := domain.ResolvedMatch{
		Candidate: candidate,
		Products:  []domain.Product{},
	}

	seen := make(map[string]bool)
	for _, query := range r.queriesFor(candidate) {
		if len(match.Products) >= MaxProductsPerMatch {
			break
		}

		products, err := r.catalog.Search(ctx, query)
		if err != nil {
			return domain.ResolvedMatch{}, fmt.Errorf("resolve %q: %w", candidate.MatchedName, err)
		}

		for _, p := range products {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			match.Products = append(match.Products, p)
			if len(match.Products) >= MaxProductsPerMatch {
				break
			}
		}
	}

	if len(match.Products) > 0 {
		best := match.Products[0]
		match.BestMatch = &best
	}

	return match, nil
}

// queriesFor builds the ordered, de-duplicated list of catalog queries for a candidate
func (r *ProductResolver) queriesFor(candidate domain.Candidate) []string {
	queries := []string{candidate.MatchedName, candidate.MatchedVariation}
	queries = append(queries, r.patterns.VariationsOf(candidate.MatchedName)...)

	seen := make(map[string]bool, len(queries))
	ordered := queries[:0]
	for _, q := range queries {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		ordered = append(ordered, q)
	}
	return ordered
}
