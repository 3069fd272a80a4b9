package enrich

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tenderdesk/parser/pkg/inn"
	"github.com/tenderdesk/parser/pkg/logger"
	"github.com/tenderdesk/parser/pkg/models"
)

const autoMatchThreshold = 80

// Enricher fills in the fields a connector could not extract from the
// page itself: the delivery code derived from the conditions text and
// the recipient INN resolved through DaData.
type Enricher struct {
	dadata *DaData
	log    zerolog.Logger
}

func New(dadata *DaData) *Enricher {
	return &Enricher{
		dadata: dadata,
		log:    logger.For("enrich"),
	}
}

// Apply mutates record in place. Enrichment failures are logged and
// swallowed, the record stays usable either way.
func (e *Enricher) Apply(ctx context.Context, record *models.ExtractionRecord) {
	if record.DeliveryConditions != "" && record.DeliveryIncoterm == "" {
		if code, reason, ok := DetectIncoterm(record.DeliveryConditions); ok {
			record.DeliveryIncoterm = code
			record.DeliveryIncotermReason = reason
			e.log.Debug().Str("incoterm", code).Str("reason", reason).Msg("detected delivery incoterm")
		}
	}

	if record.RecipientINN != "" || record.Recipient == "" || e.dadata == nil {
		return
	}

	suggestions, err := e.dadata.SuggestParties(ctx, record.Recipient)
	if err != nil {
		e.log.Warn().Err(err).Str("recipient", record.Recipient).Msg("dadata lookup failed")
		return
	}
	if len(suggestions) == 0 {
		return
	}

	region := RegionFromAddress(record.DeliveryAddress)
	for i := range suggestions {
		suggestions[i].MatchScore = scoreSuggestion(suggestions[i], record.DeliveryAddress, region)
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].MatchScore > suggestions[j].MatchScore
	})
	record.CompanySuggestions = suggestions

	best := suggestions[0]
	if best.MatchScore >= autoMatchThreshold && inn.Valid(best.INN) {
		record.RecipientINN = best.INN
		record.RecipientAddress = best.Address
		record.AutoMatchedCompany = true
		e.log.Info().
			Str("company", best.Name).
			Str("inn", best.INN).
			Int("score", best.MatchScore).
			Msg("auto-matched company")
	} else {
		e.log.Debug().Int("suggestions", len(suggestions)).Msg("no strong company match, returning candidates")
	}
}

// scoreSuggestion rates how well a company's registered address agrees
// with the tender's delivery address. Region overlap beats a city match
// which beats a raw address substring.
func scoreSuggestion(s models.CompanySuggestion, deliveryAddress, deliveryRegion string) int {
	if deliveryRegion != "" && s.Region != "" {
		if containsFold(s.Region, deliveryRegion) || containsFold(deliveryRegion, s.Region) {
			return 100
		}
		if deliveryAddress != "" && containsFold(s.Address, deliveryAddress) {
			return 80
		}
	}
	if deliveryAddress != "" {
		if city := cityFromAddress(deliveryAddress); city != "" && containsFold(s.Address, city) {
			return 90
		}
	}
	return 0
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
