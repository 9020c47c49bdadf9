package models

// BookingDraft is a caller-supplied trip request. Nothing here is trusted
// until the temporal validator has passed it.
type BookingDraft struct {
	PickupDate         string            `json:"pickupDate"`
	PickupTime         string            `json:"pickupTime"`
	PickupAddress      string            `json:"pickupAddress"`
	DestinationAddress string            `json:"destinationAddress"`
	MobilityDevice     string            `json:"mobilityDevice,omitempty"`
	PassengerOptions   map[string]string `json:"passengerOptions,omitempty"`
}

// BookingResult reports the outcome of a booking orchestration. Success is
// true only after the remote service confirmed the trip; a successful result
// always carries a non-empty BookingID.
type BookingResult struct {
	Success      bool          `json:"success"`
	BookingID    string        `json:"bookingId,omitempty"`
	PickupWindow *PickupWindow `json:"pickupWindow,omitempty"`
	Warning      string        `json:"warning,omitempty"`
	Error        *ServiceError `json:"error,omitempty"`
}
