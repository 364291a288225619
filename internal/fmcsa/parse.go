package fmcsa

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"fleetflow/internal/domain"
)

// searchResponse is the QC API envelope; content holds zero or more carriers.
type searchResponse struct {
	Content []json.RawMessage `json:"content"`
}

// rawCarrier is a QC carrier record. Numeric fields arrive as numbers or strings.
type rawCarrier struct {
	DOTNumber       flexString `json:"dotNumber"`
	USDOTNumber     flexString `json:"usdotNumber"`
	DocketNumber    flexString `json:"docketNumber"`
	MCNumber        flexString `json:"mcNumber"`
	LegalName       string     `json:"legalName"`
	DBAName         string     `json:"dbaName"`
	PhyStreet       string     `json:"phyStreet"`
	PhyCity         string     `json:"phyCity"`
	PhyState        string     `json:"phyState"`
	PhyZipcode      string     `json:"phyZipcode"`
	MailStreet      string     `json:"mailStreet"`
	MailCity        string     `json:"mailCity"`
	MailState       string     `json:"mailState"`
	MailZipcode     string     `json:"mailZipcode"`
	Telephone       string     `json:"telephone"`
	Phone           string     `json:"phone"`
	OperatingStatus string     `json:"operatingStatus"`
	SafetyRating    string     `json:"safetyRating"`
	InsuranceStatus string     `json:"insuranceStatus"`
	EntityType      string     `json:"entityType"`
	TotalPowerUnits flexInt    `json:"totalPowerUnits"`
	TotalDrivers    flexInt    `json:"totalDrivers"`
	EquipmentTypes  flexList   `json:"equipmentTypes"`
	CargoCarried    flexList   `json:"cargoCarried"`
	CrashTotal      flexInt    `json:"crashTotal"`
	CrashFatal      flexInt    `json:"crashFatal"`
	CrashInjury     flexInt    `json:"crashInjury"`
	InspectionTotal flexInt    `json:"inspectionTotal"`
	InspectionOOS   flexInt    `json:"inspectionOOS"`
}

// parseCarrier converts a QC record into CarrierData with a safety score.
func parseCarrier(raw rawCarrier) *domain.CarrierData {
	carrier := &domain.CarrierData{
		DOTNumber:       firstNonEmpty(string(raw.DOTNumber), string(raw.USDOTNumber)),
		MCNumber:        firstNonEmpty(string(raw.DocketNumber), string(raw.MCNumber)),
		CompanyName:     raw.LegalName,
		DBAName:         raw.DBAName,
		PhysicalAddress: formatAddress(raw.PhyStreet, raw.PhyCity, raw.PhyState, raw.PhyZipcode),
		MailingAddress:  formatAddress(raw.MailStreet, raw.MailCity, raw.MailState, raw.MailZipcode),
		Phone:           firstNonEmpty(raw.Telephone, raw.Phone),
		OperatingStatus: mapOperatingStatus(raw.OperatingStatus),
		SafetyRating:    mapSafetyRating(raw.SafetyRating),
		InsuranceStatus: mapInsuranceStatus(raw.InsuranceStatus),
		EntityType:      firstNonEmpty(raw.EntityType, "UNKNOWN"),
		PowerUnits:      int(raw.TotalPowerUnits),
		Drivers:         int(raw.TotalDrivers),
		EquipmentTypes:  []string(raw.EquipmentTypes),
		CargoCarried:    []string(raw.CargoCarried),
		CrashTotal:      int(raw.CrashTotal),
		CrashFatal:      int(raw.CrashFatal),
		CrashInjury:     int(raw.CrashInjury),
		InspectionTotal: int(raw.InspectionTotal),
		InspectionOOS:   int(raw.InspectionOOS),
		DataSource:      domain.DataSourceFMCSA,
	}
	ApplySafetyScore(carrier)
	return carrier
}

func mapOperatingStatus(status string) domain.OperatingStatus {
	upper := strings.ToUpper(status)
	switch {
	case upper == "":
		return domain.OperatingStatusNotAuthorized
	case strings.Contains(upper, "NOT") && strings.Contains(upper, "AUTHORIZED"):
		return domain.OperatingStatusNotAuthorized
	case strings.Contains(upper, "OUT") || strings.Contains(upper, "SERVICE"):
		return domain.OperatingStatusOutOfService
	case strings.Contains(upper, "ACTIVE"), strings.Contains(upper, "AUTHORIZED"):
		return domain.OperatingStatusActive
	}
	return domain.OperatingStatusNotAuthorized
}

// mapSafetyRating checks UNSATISFACTORY before SATISFACTORY since the latter is a substring.
func mapSafetyRating(rating string) domain.SafetyRating {
	upper := strings.ToUpper(rating)
	switch {
	case strings.Contains(upper, "UNSATISFACTORY"):
		return domain.SafetyRatingUnsatisfactory
	case strings.Contains(upper, "SATISFACTORY"):
		return domain.SafetyRatingSatisfactory
	case strings.Contains(upper, "CONDITIONAL"):
		return domain.SafetyRatingConditional
	}
	return domain.SafetyRatingNotRated
}

func mapInsuranceStatus(status string) domain.InsuranceStatus {
	switch upper := strings.ToUpper(status); {
	case strings.Contains(upper, "LAPSE"), strings.Contains(upper, "CANCEL"):
		return domain.InsuranceStatusLapsed
	case strings.Contains(upper, "PEND"):
		return domain.InsuranceStatusPending
	case strings.Contains(upper, "ACTIVE"), upper == "Y":
		return domain.InsuranceStatusActive
	}
	return domain.InsuranceStatusUnknown
}

func formatAddress(street, city, state, zip string) string {
	var parts []string
	for _, p := range []string{street, city} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	tail := strings.TrimSpace(strings.TrimSpace(state) + " " + strings.TrimSpace(zip))
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// cleanIdentifier keeps the digits of a DOT or MC number ("MC-123456" -> "123456").
func cleanIdentifier(id string) (string, error) {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if len(cleaned) < 1 || len(cleaned) > 8 {
		return "", ErrInvalidIdentifier
	}
	return cleaned, nil
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = flexString(strings.Trim(string(data), `"`))
	return nil
}

// flexList accepts a JSON array of strings or a comma-separated string.
type flexList []string

func (f *flexList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = nil
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*f = out
	return nil
}
