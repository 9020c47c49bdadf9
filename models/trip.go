package models

// PickupWindow is the time range during which the vehicle is expected to
// arrive, formatted as HH:MM clock strings in the service's local zone.
type PickupWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TripRecord is a normalized trip as reported by the remote service. Status
// and provider fields are passed through verbatim from the response; they are
// never derived or recomputed on this side.
type TripRecord struct {
	BookingID          string       `json:"bookingId"`
	Date               string       `json:"date"` // canonical YYYY-MM-DD
	PickupWindow       PickupWindow `json:"pickupWindow"`
	PickupAddress      string       `json:"pickupAddress"`
	DestinationAddress string       `json:"destinationAddress"`
	StatusCode         string       `json:"statusCode"`
	StatusLabel        string       `json:"statusLabel"`
	Provider           string       `json:"provider,omitempty"`
}
