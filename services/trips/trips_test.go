package trips

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/soap"
)

func parseNode(t *testing.T, raw string) *soap.Node {
	t.Helper()
	var n soap.Node
	require.NoError(t, xml.Unmarshal([]byte(raw), &n))
	return &n
}

func TestParseTripsNestedSchedule(t *testing.T) {
	node := parseNode(t, `
<GetClientTripsResponse>
  <Trips>
    <Trip>
      <BookingId>10001</BookingId>
      <Schedule>
        <Date>20260119</Date>
        <PickupWindow><Start>30600</Start><End>32400</End></PickupWindow>
        <PickupAddress>10111 104 Ave NW</PickupAddress>
        <DestinationAddress>8440 112 St NW</DestinationAddress>
        <Status><Code>S</Code><Description>Scheduled</Description></Status>
        <Provider><Name>DATS</Name></Provider>
      </Schedule>
    </Trip>
  </Trips>
</GetClientTripsResponse>`)

	got := parseTrips(node)
	require.Equal(t, []models.TripRecord{{
		BookingID:          "10001",
		Date:               "2026-01-19",
		PickupWindow:       models.PickupWindow{Start: "08:30", End: "09:00"},
		PickupAddress:      "10111 104 Ave NW",
		DestinationAddress: "8440 112 St NW",
		StatusCode:         "S",
		StatusLabel:        "Scheduled",
		Provider:           "DATS",
	}}, got)
}

func TestParseTripsFlatShape(t *testing.T) {
	// Some trip types report everything at the top level with verbose dates
	// and preformatted times.
	node := parseNode(t, `
<GetClientTripsResponse>
  <Trip>
    <BookingId>10002</BookingId>
    <Date>Mon, Jan 19, 2026</Date>
    <PickupWindow><Start>8:30 AM</Start><End>9:00 AM</End></PickupWindow>
    <Status>C</Status>
    <Provider>DATS</Provider>
  </Trip>
</GetClientTripsResponse>`)

	got := parseTrips(node)
	require.Len(t, got, 1)
	require.Equal(t, "2026-01-19", got[0].Date)
	require.Equal(t, "8:30 AM", got[0].PickupWindow.Start)
	require.Equal(t, "C", got[0].StatusCode)
	require.Equal(t, "DATS", got[0].Provider)
}

func TestParseTripsStatusNeverDerived(t *testing.T) {
	// A trip with no status stays status-free; nothing is inferred from the
	// date being in the past.
	node := parseNode(t, `
<GetClientTripsResponse>
  <Trips>
    <Trip><BookingId>10003</BookingId><Date>20200101</Date></Trip>
  </Trips>
</GetClientTripsResponse>`)

	got := parseTrips(node)
	require.Len(t, got, 1)
	require.Empty(t, got[0].StatusCode)
	require.Equal(t, "2020-01-01", got[0].Date)
}

func TestParseTripsEmpty(t *testing.T) {
	require.Empty(t, parseTrips(parseNode(t, `<GetClientTripsResponse><Trips/></GetClientTripsResponse>`)))
}

func TestNormalizeTripDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"20260119", "2026-01-19"},
		{"Mon, Jan 19, 2026", "2026-01-19"},
		{"Monday, January 19, 2026", "2026-01-19"},
		{"2026-01-19", "2026-01-19"},
		{"not a date", "not a date"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, normalizeTripDate(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeTripTime(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"30600", "08:30"},
		{"0", "00:00"},
		{"8:30 AM", "8:30 AM"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, normalizeTripTime(tt.in), "input %q", tt.in)
	}
}
