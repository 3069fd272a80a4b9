package models

// Platform identifies a known procurement platform by its short code.
type Platform string

const (
	PlatformB2BCenter   Platform = "b2b-center"
	PlatformTenderPro   Platform = "tender-pro"
	PlatformSberbankAST Platform = "sberbank-ast"
	PlatformRTSTender   Platform = "rts-tender"
	PlatformEETP        Platform = "eetp"
	PlatformZakazRF     Platform = "zakazrf"
	PlatformFabrikant   Platform = "fabrikant"
	PlatformUnknown     Platform = ""
)

// FetchSource says which stage of the hybrid fetch produced the HTML.
type FetchSource string

const (
	SourceDirect   FetchSource = "direct"
	SourceRendered FetchSource = "rendered"
)

// FetchResult is the outcome of one hybrid fetch. Empty HTML means
// "no data", not an error.
type FetchResult struct {
	HTML       string
	StatusCode int
	Source     FetchSource
}

// Organizer is the resolved buyer identity of a tender.
// INN, when set, is a 10- or 12-digit string.
type Organizer struct {
	Name string
	Link string
	INN  string
}

// ProcurementItem is one line of a tender's item table.
type ProcurementItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// CompanySuggestion is one DaData party candidate, scored against the
// tender's delivery address.
type CompanySuggestion struct {
	INN        string `json:"inn,omitempty"`
	KPP        string `json:"kpp,omitempty"`
	Name       string `json:"name"`
	NameFull   string `json:"nameFull,omitempty"`
	Address    string `json:"address,omitempty"`
	Region     string `json:"region,omitempty"`
	MatchScore int    `json:"matchScore"`
}

// ExtractionRecord is the single object returned to callers. Field names
// follow the wire contract consumed by the proposal editor UI.
type ExtractionRecord struct {
	TenderNumber string            `json:"tenderNumber,omitempty"`
	Items        []ProcurementItem `json:"items,omitempty"`
	// First item duplicated for form autofill.
	ItemName string  `json:"itemName,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`

	Recipient        string `json:"recipient,omitempty"`
	RecipientINN     string `json:"recipientINN,omitempty"`
	RecipientAddress string `json:"recipientAddress,omitempty"`

	DeliveryAddress        string `json:"deliveryAddress,omitempty"`
	DeliveryConditions     string `json:"deliveryConditions,omitempty"`
	DeliveryIncoterm       string `json:"deliveryIncoterm,omitempty"`
	DeliveryIncotermReason string `json:"deliveryIncotermReason,omitempty"`

	CompanySuggestions []CompanySuggestion `json:"companySuggestions,omitempty"`
	AutoMatchedCompany bool                `json:"autoMatchedCompany,omitempty"`
}

// SetItems stores the item list and mirrors the first item into the
// autofill fields.
func (r *ExtractionRecord) SetItems(items []ProcurementItem) {
	if len(items) == 0 {
		return
	}
	r.Items = items
	r.ItemName = items[0].Name
	r.Quantity = items[0].Quantity
}
