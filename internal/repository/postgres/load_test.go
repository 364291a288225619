package postgres

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"fleetflow/internal/domain"
)

// fakeRow assigns fixed column values in Scan order.
type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r.values))
	}
	for i, v := range r.values {
		target := reflect.ValueOf(dest[i]).Elem()
		value := reflect.ValueOf(v)
		if !value.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan column %d: cannot assign %s to %s", i, value.Type(), target.Type())
		}
		target.Set(value)
	}
	return nil
}

func loadRow(delivery sql.NullTime) fakeRow {
	pickup := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return fakeRow{values: []any{
		"GWF-1-ABC", "shipper-1",
		41.8781, -87.6298, "Chicago, IL",
		32.7767, -96.7970, "Dallas, TX",
		pickup, delivery,
		30000.0, domain.EquipmentDryVan, 2000.0, 800.0,
		domain.LoadStatusPending, sql.NullString{}, sql.NullTime{},
		domain.UrgencyMedium, pickup,
	}}
}

func TestScanLoad_NullDeliveryTime(t *testing.T) {
	t.Parallel()

	load, err := scanLoad(loadRow(sql.NullTime{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !load.DeliveryTime.IsZero() {
		t.Errorf("expected zero delivery time for NULL, got %v", load.DeliveryTime)
	}
	if load.PickupTime.IsZero() || load.ID != "GWF-1-ABC" {
		t.Errorf("unexpected load: %+v", load)
	}
}

func TestScanLoad_DeliveryTime(t *testing.T) {
	t.Parallel()
	delivery := time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC)

	load, err := scanLoad(loadRow(sql.NullTime{Time: delivery, Valid: true}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !load.DeliveryTime.Equal(delivery) {
		t.Errorf("expected %v, got %v", delivery, load.DeliveryTime)
	}
}

func TestNullTime_ZeroIsNull(t *testing.T) {
	t.Parallel()

	if nullTime(time.Time{}).Valid {
		t.Error("zero time should be written as NULL")
	}
	if !nullTime(time.Unix(1, 0)).Valid {
		t.Error("set time should be written as a value")
	}
}
