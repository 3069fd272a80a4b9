package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tenderdesk/parser/pkg/models"
)

const suggestPartyURL = "https://suggestions.dadata.ru/suggestions/api/4_1/rs/suggest/party"

// DaData is a client for the party suggestion endpoint of the DaData
// API. A nil *DaData disables enrichment.
type DaData struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

type suggestRequest struct {
	Query  string   `json:"query"`
	Count  int      `json:"count"`
	Status []string `json:"status"`
}

type partyName struct {
	Full  string `json:"full_with_opf"`
	Short string `json:"short_with_opf"`
}

type partyAddress struct {
	Value string `json:"value"`
	Data  struct {
		RegionWithType string `json:"region_with_type"`
	} `json:"data"`
}

type partyData struct {
	Name    partyName    `json:"name"`
	INN     string       `json:"inn"`
	KPP     string       `json:"kpp"`
	Address partyAddress `json:"address"`
}

type partySuggestion struct {
	Value string    `json:"value"`
	Data  partyData `json:"data"`
}

type suggestResponse struct {
	Suggestions []partySuggestion `json:"suggestions"`
}

// NewDaData returns a client, or nil when token is empty.
func NewDaData(token string) *DaData {
	if token == "" {
		return nil
	}
	return &DaData{
		token:   token,
		baseURL: suggestPartyURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SuggestParties queries active companies matching name and returns up
// to ten candidates in API order.
func (d *DaData) SuggestParties(ctx context.Context, name string) ([]models.CompanySuggestion, error) {
	payload, err := json.Marshal(suggestRequest{
		Query:  name,
		Count:  10,
		Status: []string{"ACTIVE"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+d.token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("dadata returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	suggestions := make([]models.CompanySuggestion, 0, len(parsed.Suggestions))
	for _, s := range parsed.Suggestions {
		name := s.Data.Name.Short
		if name == "" {
			name = s.Data.Name.Full
		}
		if name == "" {
			name = s.Value
		}
		full := s.Data.Name.Full
		if full == "" {
			full = s.Value
		}
		suggestions = append(suggestions, models.CompanySuggestion{
			INN:      s.Data.INN,
			KPP:      s.Data.KPP,
			Name:     name,
			NameFull: full,
			Address:  s.Data.Address.Value,
			Region:   s.Data.Address.Data.RegionWithType,
		})
	}
	return suggestions, nil
}
