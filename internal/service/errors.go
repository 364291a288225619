package service

import "errors"

var (
	// ErrNoDriverAvailable is returned when no driver can be matched.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrLoadNotPending is returned when trying to match a load not in PENDING state.
	ErrLoadNotPending = errors.New("load not in pending state")

	// ErrLoadNotOffered is returned when accepting or declining a load that is not OFFERED.
	ErrLoadNotOffered = errors.New("load not offered")

	// ErrDriverNotAssignedToLoad is returned when a driver responds to another driver's offer.
	ErrDriverNotAssignedToLoad = errors.New("driver not assigned to this load")

	// ErrDriverHasActiveLoad is returned when a driver with an offered or accepted load changes status.
	ErrDriverHasActiveLoad = errors.New("driver already has an active load")

	// ErrDriverAlreadyRegistered is returned when the phone number is already in use.
	ErrDriverAlreadyRegistered = errors.New("driver already registered")

	// ErrAccountBusy is returned when another request holds the account lock.
	ErrAccountBusy = errors.New("account is being updated, retry")

	// ErrWarehouseCatalogTooSmall is returned when fewer than three warehouses are configured.
	ErrWarehouseCatalogTooSmall = errors.New("warehouse catalog needs at least three warehouses")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidDriver is returned when registration data is incomplete.
	ErrInvalidDriver = errors.New("invalid driver")

	// ErrInvalidLoadID is returned when load ID is empty.
	ErrInvalidLoadID = errors.New("invalid load id")

	// ErrInvalidAccountID is returned when account ID is empty.
	ErrInvalidAccountID = errors.New("invalid account id")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidEquipmentType is returned for an unknown equipment type.
	ErrInvalidEquipmentType = errors.New("invalid equipment type")

	// ErrInvalidUrgency is returned for an urgency other than low, medium or high.
	ErrInvalidUrgency = errors.New("invalid urgency")

	// ErrInvalidWeight is returned when the weight is not positive.
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrInvalidRoute is returned when origin or destination is missing.
	ErrInvalidRoute = errors.New("origin and destination are required")

	// ErrInvalidDistance is returned for a negative explicit distance.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidSchedule is returned when delivery is before pickup.
	ErrInvalidSchedule = errors.New("delivery must be after pickup")

	// ErrInvalidEmail is returned when the contact email is missing or malformed.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidCompanyName is returned when the company name is empty.
	ErrInvalidCompanyName = errors.New("company name is required")

	// ErrInvalidWarehouseRequest is returned for an incomplete warehouse quote request.
	ErrInvalidWarehouseRequest = errors.New("invalid warehouse quote request")

	// ErrInvalidMCNumber is returned when an MC number is missing.
	ErrInvalidMCNumber = errors.New("invalid mc number")
)
