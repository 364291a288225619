package domain

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "ONLINE"
	DriverStatusOffline DriverStatus = "OFFLINE"
	DriverStatusOnLoad  DriverStatus = "ON_LOAD"
)

// DriverPreferences are the load filters a driver has set.
type DriverPreferences struct {
	MaxDistanceMiles float64
	MinRatePerMile   float64
	AutoAccept       bool
}

// Driver represents an owner-operator or company driver on the network.
type Driver struct {
	ID             string
	Name           string
	Phone          string
	Status         DriverStatus
	EquipmentType  EquipmentType
	Preferences    DriverPreferences
	CurrentLoadID  string
	HoursRemaining float64
}
