package trips

import (
	"context"
	"encoding/xml"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/auth"
	"github.com/JCrossman/dats-booking-sub000/services/soap"
	"github.com/JCrossman/dats-booking-sub000/utils"
)

type clientTripsRequest struct {
	XMLName  xml.Name `xml:"GetClientTrips"`
	FromDate string   `xml:"FromDate"`
	ToDate   string   `xml:"ToDate"`
}

// Service retrieves and normalizes the rider's trips.
type Service struct {
	Auth   *auth.Service
	Cache  *Cache
	Logger *zap.Logger
}

// List fetches the rider's trips between two canonical dates, inclusive.
// Results are cached briefly per owner and range.
func (s *Service) List(ctx context.Context, ownerID, fromDate, toDate string) ([]models.TripRecord, error) {
	if cached, ok := s.Cache.Get(ctx, ownerID, fromDate, toDate); ok {
		return cached, nil
	}

	client, _, err := s.Auth.Resume(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	node, err := client.Call(ctx, "GetClientTrips", clientTripsRequest{
		FromDate: utils.CompactDate(fromDate),
		ToDate:   utils.CompactDate(toDate),
	})
	if err != nil {
		return nil, err
	}

	trips := parseTrips(node)
	s.Logger.Debug("trips fetched",
		zap.String("owner", ownerID), zap.Int("count", len(trips)))

	s.Cache.Set(ctx, ownerID, fromDate, toDate, trips)
	return trips, nil
}

func parseTrips(node *soap.Node) []models.TripRecord {
	container := node
	if wrapper := node.First("Trips"); wrapper != nil {
		container = wrapper
	}

	var out []models.TripRecord
	for _, trip := range container.All("Trip") {
		out = append(out, parseTrip(trip))
	}
	return out
}

// parseTrip extracts one trip. Field locations vary by trip type, so lookups
// list the most nested location first and fall back outward. Status and
// provider are taken verbatim from the response; this side never derives a
// status from dates or anything else.
func parseTrip(n *soap.Node) models.TripRecord {
	return models.TripRecord{
		BookingID: n.Lookup("BookingId", "Id"),
		Date: normalizeTripDate(
			n.Lookup("Schedule/Date", "Date")),
		PickupWindow: models.PickupWindow{
			Start: normalizeTripTime(n.Lookup("Schedule/PickupWindow/Start", "PickupWindow/Start")),
			End:   normalizeTripTime(n.Lookup("Schedule/PickupWindow/End", "PickupWindow/End")),
		},
		PickupAddress:      n.Lookup("Schedule/PickupAddress", "PickupAddress"),
		DestinationAddress: n.Lookup("Schedule/DestinationAddress", "DestinationAddress"),
		StatusCode:         n.Lookup("Schedule/Status/Code", "Status/Code", "Status"),
		StatusLabel:        n.Lookup("Schedule/Status/Description", "Status/Description"),
		Provider:           n.Lookup("Schedule/Provider/Name", "Provider/Name", "Provider"),
	}
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// normalizeTripDate maps whichever date shape the service used onto the
// canonical form, leaving already-canonical input alone and passing anything
// unrecognized through untouched.
func normalizeTripDate(raw string) string {
	if raw == "" {
		return ""
	}
	if len(raw) == 8 && digitsOnly.MatchString(raw) {
		if canonical := utils.FromCompactDate(raw); canonical != "" {
			return canonical
		}
	}
	if canonical := utils.NormalizeRemoteDate(raw); canonical != "" {
		return canonical
	}
	return raw
}

// normalizeTripTime renders seconds-since-midnight as a clock string and
// passes formatted times through.
func normalizeTripTime(raw string) string {
	if raw == "" {
		return ""
	}
	if digitsOnly.MatchString(raw) {
		if secs, err := strconv.Atoi(raw); err == nil {
			return utils.ClockFromSeconds(secs)
		}
	}
	return raw
}
