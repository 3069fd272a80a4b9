// Package connector selects and runs a per-platform extraction strategy.
// A connector owns the page-fetch sequencing and the item-table layout
// knowledge for its platform; organizer resolution is shared.
package connector

import (
	"context"
	"net/url"
	"strings"

	"github.com/tenderdesk/parser/internal/config"
	"github.com/tenderdesk/parser/internal/fetch"
	"github.com/tenderdesk/parser/internal/resolver"
	"github.com/tenderdesk/parser/pkg/models"
)

// Connector parses a tender URL into an extraction record. Missing data
// is expressed through empty fields, not errors.
type Connector interface {
	Platform() models.Platform
	Parse(ctx context.Context, tenderURL string) *models.ExtractionRecord
}

// Hostname suffix -> platform. Only B2B-Center has a specialized
// connector; the rest are recognized for the platform label but handled
// by the generic strategy.
var knownPlatforms = []struct {
	suffix   string
	platform models.Platform
}{
	{"b2b-center.ru", models.PlatformB2BCenter},
	{"tender.pro", models.PlatformTenderPro},
	{"sberbank-ast.ru", models.PlatformSberbankAST},
	{"rts-tender.ru", models.PlatformRTSTender},
	{"roseltorg.ru", models.PlatformEETP},
	{"eetp.ru", models.PlatformEETP},
	{"zakazrf.ru", models.PlatformZakazRF},
	{"fabrikant.ru", models.PlatformFabrikant},
}

// Registry builds connectors around a shared fetcher and resolver.
type Registry struct {
	fetcher     *fetch.Fetcher
	resolver    *resolver.Resolver
	credentials map[string]config.Credentials
}

func NewRegistry(fetcher *fetch.Fetcher, res *resolver.Resolver, creds map[string]config.Credentials) *Registry {
	return &Registry{
		fetcher:     fetcher,
		resolver:    res,
		credentials: creds,
	}
}

// Select picks the connector for a tender URL by hostname suffix.
// Unmatched hosts get the generic connector.
func (r *Registry) Select(tenderURL string) Connector {
	host := hostOf(tenderURL)
	platform := DetectPlatform(host)

	creds := r.credentialsFor(host)

	if platform == models.PlatformB2BCenter {
		return &B2BCenterConnector{
			fetcher:     r.fetcher,
			resolver:    r.resolver,
			credentials: creds,
		}
	}

	return &GenericConnector{
		platform: platform,
		fetcher:  r.fetcher,
		resolver: r.resolver,
	}
}

// DetectPlatform maps a hostname to a known platform code.
func DetectPlatform(host string) models.Platform {
	for _, p := range knownPlatforms {
		if host == p.suffix || strings.HasSuffix(host, "."+p.suffix) {
			return p.platform
		}
	}
	return models.PlatformUnknown
}

// credentialsFor matches the host against the configured credential map,
// including subdomains of a configured domain.
func (r *Registry) credentialsFor(host string) config.Credentials {
	for domain, creds := range r.credentials {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return creds
		}
	}
	return config.Credentials{}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
