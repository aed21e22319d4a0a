package usecase

import (
	"math"

	"github.com/medilens/backend/internal/domain"
)

// maxDetectedLines limits the raw OCR fragments shown in the no-match view
const maxDetectedLines = 10

// ResultView is a UI-agnostic rendering of an analysis result
type ResultView struct {
	AnalysisID string      `json:"analysisId"`
	Matches    []MatchCard `json:"matches"`
	Unmatched  []string    `json:"unmatched"`
	NoMatches  bool        `json:"noMatches"`
	Message    string      `json:"message"`

	// DetectedLines is only populated for the no-match view
	DetectedLines []string `json:"detectedLines,omitempty"`
}

// MatchCard describes one recognized medicine and its purchasable products
type MatchCard struct {
	Medicine     string        `json:"medicine"`
	FoundText    string        `json:"foundText"`
	Confidence   int           `json:"confidence"`
	Best         ProductCard   `json:"best"`
	Alternatives []ProductCard `json:"alternatives"`
}

// ProductCard is a product ready for display
type ProductCard struct {
	domain.Product
	DiscountPercent int `json:"discountPercent"`
}

// Present turns an analysis result into a view. It never fails: an empty
// result renders the "no matching products" view with the detected lines.
func Present(result *domain.AnalysisResult) ResultView {
	view := ResultView{
		Matches:   []MatchCard{},
		Unmatched: []string{},
	}
	if result == nil {
		view.NoMatches = true
		view.Message = "No matching products found in your prescription"
		return view
	}
	view.AnalysisID = result.ID

	for _, m := range result.ResolvedMatches {
		if m.BestMatch == nil {
			continue
		}
		card := MatchCard{
			Medicine:     m.Candidate.MatchedName,
			FoundText:    m.Candidate.FoundText,
			Confidence:   m.Candidate.Confidence,
			Best:         newProductCard(*m.BestMatch),
			Alternatives: []ProductCard{},
		}
		for _, p := range m.Products[1:] {
			card.Alternatives = append(card.Alternatives, newProductCard(p))
		}
		view.Matches = append(view.Matches, card)
	}

	for _, c := range result.UnmatchedCandidates {
		view.Unmatched = append(view.Unmatched, c.MatchedName)
	}

	switch {
	case len(view.Matches) > 0:
		view.Message = "Found matching products for your prescription"
	case len(view.Unmatched) > 0:
		view.Message = "Medicines recognized, but none are available in store"
	default:
		view.NoMatches = true
		view.Message = "No matching products found in your prescription"
		lines := result.DetectedLines
		if len(lines) > maxDetectedLines {
			lines = lines[:maxDetectedLines]
		}
		view.DetectedLines = append([]string{}, lines...)
	}

	return view
}

func newProductCard(p domain.Product) ProductCard {
	return ProductCard{
		Product:         p,
		DiscountPercent: discountPercent(p.Price, p.OriginalPrice),
	}
}

// discountPercent returns the rounded discount of price against originalPrice
func discountPercent(price, originalPrice float64) int {
	if originalPrice <= 0 || price >= originalPrice {
		return 0
	}
	return int(math.Round((originalPrice - price) / originalPrice * 100))
}
