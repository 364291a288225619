package fmcsa

import (
	"time"

	"fleetflow/internal/domain"
)

// mockCarrier is served when no API key is configured so that local
// environments can exercise the verification flow.
func mockCarrier(identifier string, byMC bool) *domain.CarrierData {
	c := &domain.CarrierData{
		DOTNumber:       "12345",
		MCNumber:        "MC-67890",
		CompanyName:     "Mock Transportation Company LLC",
		DBAName:         "Mock Trucking",
		PhysicalAddress: "123 Mock Street, Mock City, TX 12345",
		MailingAddress:  "123 Mock Street, Mock City, TX 12345",
		Phone:           "(555) 123-4567",
		SafetyRating:    domain.SafetyRatingSatisfactory,
		InsuranceStatus: domain.InsuranceStatusActive,
		OperatingStatus: domain.OperatingStatusActive,
		EntityType:      "CARRIER",
		PowerUnits:      25,
		Drivers:         30,
		EquipmentTypes:  []string{"Van", "Flatbed"},
		CargoCarried:    []string{"General Freight"},
		CrashTotal:      2,
		CrashInjury:     1,
		InspectionTotal: 15,
		InspectionOOS:   1,
		DataSource:      domain.DataSourceMock,
		RetrievedAt:     time.Now().UTC(),
	}
	if byMC {
		c.MCNumber = identifier
	} else {
		c.DOTNumber = identifier
	}
	ApplySafetyScore(c)
	return c
}
