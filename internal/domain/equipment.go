package domain

// EquipmentType is the trailer or vehicle class a load requires.
type EquipmentType string

const (
	EquipmentDryVan        EquipmentType = "Dry Van"
	EquipmentReefer        EquipmentType = "Reefer"
	EquipmentFlatbed       EquipmentType = "Flatbed"
	EquipmentCargoVan      EquipmentType = "Cargo Van"
	EquipmentSprinterVan   EquipmentType = "Sprinter Van"
	EquipmentBoxTruck16    EquipmentType = "Box Truck (16ft)"
	EquipmentBoxTruck20    EquipmentType = "Box Truck (20ft)"
	EquipmentBoxTruck24    EquipmentType = "Box Truck (24ft)"
	EquipmentBoxTruck26    EquipmentType = "Box Truck (26ft)"
	EquipmentStraightTruck EquipmentType = "Straight Truck"
	EquipmentHotShot       EquipmentType = "Hot Shot"
	EquipmentStepVan       EquipmentType = "Step Van"
)

// EquipmentCategory groups equipment types by capacity class.
type EquipmentCategory string

const (
	EquipmentCategorySmall       EquipmentCategory = "small"
	EquipmentCategoryMedium      EquipmentCategory = "medium"
	EquipmentCategoryLarge       EquipmentCategory = "large"
	EquipmentCategorySpecialized EquipmentCategory = "specialized"
)

// AllEquipmentTypes lists every supported equipment type.
var AllEquipmentTypes = []EquipmentType{
	EquipmentDryVan, EquipmentReefer, EquipmentFlatbed,
	EquipmentCargoVan, EquipmentSprinterVan,
	EquipmentBoxTruck16, EquipmentBoxTruck20, EquipmentBoxTruck24, EquipmentBoxTruck26,
	EquipmentStraightTruck, EquipmentHotShot, EquipmentStepVan,
}

// Category returns the capacity class of the equipment type.
// Unknown types are treated as large (traditional trucking).
func (e EquipmentType) Category() EquipmentCategory {
	switch e {
	case EquipmentCargoVan, EquipmentSprinterVan:
		return EquipmentCategorySmall
	case EquipmentBoxTruck16, EquipmentBoxTruck20, EquipmentBoxTruck24, EquipmentBoxTruck26, EquipmentStepVan:
		return EquipmentCategoryMedium
	case EquipmentHotShot, EquipmentStraightTruck:
		return EquipmentCategorySpecialized
	default:
		return EquipmentCategoryLarge
	}
}

// Valid reports whether e is a known equipment type.
func (e EquipmentType) Valid() bool {
	for _, t := range AllEquipmentTypes {
		if t == e {
			return true
		}
	}
	return false
}
