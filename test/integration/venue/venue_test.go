package venue

import (
	"net/http"
	"testing"

	"tablebook/pkg/model"
	"tablebook/test/integration/testutil"
)

func TestZoneCRUD(t *testing.T) {
	testutil.RequireIntegration(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	zone := testutil.NewZoneBuilder("A").WithName("Riverside").Build()
	resp := client.POST(t, "/api/v1/zones", zone)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	// Duplicate IDs are rejected.
	resp = client.POST(t, "/api/v1/zones", zone)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)

	resp = client.GET(t, "/api/v1/zones/id/A")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var fetched model.ZoneConfig
	if err := resp.DecodeData(&fetched); err != nil {
		t.Fatalf("failed to decode zone: %v", err)
	}
	if fetched.Name != "Riverside" {
		t.Errorf("expected name Riverside, got %q", fetched.Name)
	}

	update := map[string]any{"table_price": 950.0}
	resp = client.PATCH(t, "/api/v1/zones/id/A", update)
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp = client.DELETE(t, "/api/v1/zones/id/A")
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp = client.GET(t, "/api/v1/zones/id/A")
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestZonePricingValidation(t *testing.T) {
	testutil.RequireIntegration(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	// Individual booking without a seat price is invalid.
	zone := testutil.NewZoneBuilder("X").WithPrices(0, 800).Build()
	resp := client.POST(t, "/api/v1/zones", zone)
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

	// Table-only zones do not need a seat price.
	zone = testutil.NewZoneBuilder("Y").TableOnly(1200).Build()
	resp = client.POST(t, "/api/v1/zones", zone)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
}

func TestTableLifecycle(t *testing.T) {
	testutil.RequireIntegration(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	zone := testutil.NewZoneBuilder("A").Build()
	resp := client.POST(t, "/api/v1/zones", zone)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	// A table cannot live in a zone that does not exist.
	orphan := testutil.NewTableBuilder(1, "nowhere").Build()
	resp = client.POST(t, "/api/v1/tables", orphan)
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)

	table := testutil.NewTableBuilder(1, "A").WithName("Riverside 1").Build()
	resp = client.POST(t, "/api/v1/tables", table)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created model.Table
	if err := resp.DecodeData(&created); err != nil {
		t.Fatalf("failed to decode table: %v", err)
	}
	if len(created.Seats) == 0 {
		t.Error("expected seeded seats on a new table")
	}
	for _, seat := range created.Seats {
		if seat.IsBooked {
			t.Errorf("seat %d: new tables start with free seats", seat.SeatNumber)
		}
	}

	resp = client.POST(t, "/api/v1/tables/zone/A/id/1/toggle-active", nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var toggled model.Table
	if err := resp.DecodeData(&toggled); err != nil {
		t.Fatalf("failed to decode table: %v", err)
	}
	if toggled.IsActive {
		t.Error("expected table deactivated after toggle")
	}

	// An inactive table refuses bookings.
	booking := testutil.NewBookingBuilder().
		WithSeats(testutil.Seat(1, "A", 1)).
		Build()
	resp = client.POST(t, "/api/v1/bookings", booking)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)

	resp = client.DELETE(t, "/api/v1/tables/zone/A/id/1")
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)
}
