package booking

import (
	"context"
	"encoding/xml"
	"fmt"

	"go.uber.org/zap"

	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/auth"
	"github.com/JCrossman/dats-booking-sub000/services/soap"
	"github.com/JCrossman/dats-booking-sub000/services/trips"
	"github.com/JCrossman/dats-booking-sub000/services/validation"
	"github.com/JCrossman/dats-booking-sub000/utils"
)

type tripOption struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

type createTripRequest struct {
	XMLName            xml.Name     `xml:"CreateTripRequest"`
	PickupDate         string       `xml:"PickupDate"`
	PickupTime         int          `xml:"PickupTime"`
	PickupAddress      string       `xml:"PickupAddress"`
	DestinationAddress string       `xml:"DestinationAddress"`
	MobilityDevice     string       `xml:"MobilityDevice,omitempty"`
	Options            []tripOption `xml:"Options>Option,omitempty"`
}

type tripSolutionsRequest struct {
	XMLName   xml.Name `xml:"GetTripSolutions"`
	RequestID string   `xml:"RequestId"`
}

type scheduleTripRequest struct {
	XMLName    xml.Name `xml:"ScheduleTrip"`
	RequestID  string   `xml:"RequestId"`
	SolutionID string   `xml:"SolutionId"`
}

type releaseTripRequest struct {
	XMLName   xml.Name `xml:"CancelTripRequest"`
	RequestID string   `xml:"RequestId"`
}

type cancelTripRequest struct {
	XMLName   xml.Name `xml:"CancelTrip"`
	BookingID string   `xml:"BookingId"`
}

type solution struct {
	ID     string
	Window models.PickupWindow
}

// Orchestrator runs the remote service's multi-step booking protocol. The
// protocol is only partially transactional on the remote side: a created
// draft lives on until confirmed or released, so every failure after step 1
// compensates by releasing the draft.
type Orchestrator struct {
	Auth      *auth.Service
	Validator *validation.Validator
	Cache     *trips.Cache
	Logger    *zap.Logger
}

// Book validates the draft, then runs the three-step protocol: create a
// provisional request, fetch schedulable solutions, confirm one. Success is
// reported only after step 3 confirms; anything less is a failure carrying
// the draft id as reconciliation detail, never as a booking id.
func (o *Orchestrator) Book(ctx context.Context, ownerID string, draft models.BookingDraft) (models.BookingResult, error) {
	check := o.Validator.ValidateBooking(draft.PickupDate, draft.PickupTime)
	if !check.Valid {
		return models.BookingResult{
			Success: false,
			Error:   models.NewServiceError(models.CodeValidationError, check.Error),
		}, nil
	}

	client, _, err := o.Auth.Resume(ctx, ownerID)
	if err != nil {
		return models.BookingResult{Success: false}, err
	}

	// Step 1: provisional draft.
	requestID, err := o.createDraft(ctx, client, draft)
	if err != nil {
		return o.fail(err, "")
	}

	// Step 2: schedulable solutions for the draft.
	solutions, err := o.fetchSolutions(ctx, client, requestID)
	if err != nil {
		o.release(ctx, client, requestID)
		return o.fail(err, requestID)
	}
	if len(solutions) == 0 {
		o.release(ctx, client, requestID)
		return o.fail(models.NewServiceError(models.CodeBookingConflict,
			"no schedulable pickup times are available for that trip"), requestID)
	}

	// Step 3: confirm the best solution; the service orders them by fit.
	chosen := solutions[0]
	bookingID, window, err := o.confirm(ctx, client, requestID, chosen)
	if err != nil {
		o.release(ctx, client, requestID)
		return o.fail(err, requestID)
	}

	o.Cache.Invalidate(ctx, ownerID)
	o.Logger.Info("trip booked",
		zap.String("owner", ownerID), zap.String("bookingId", bookingID))

	return models.BookingResult{
		Success:      true,
		BookingID:    bookingID,
		PickupWindow: &window,
		Warning:      check.Warning,
	}, nil
}

// Cancel checks the notice rules and asks the service to cancel. The remote
// side is the final authority; an unparseable pickup time only warns.
func (o *Orchestrator) Cancel(ctx context.Context, ownerID, bookingID, pickupDate, pickupTime string) (models.ValidationResult, error) {
	check := o.Validator.ValidateCancellation(pickupDate, pickupTime)
	if !check.Valid {
		return check, nil
	}

	client, _, err := o.Auth.Resume(ctx, ownerID)
	if err != nil {
		return check, err
	}

	node, err := client.Call(ctx, "CancelTrip", cancelTripRequest{BookingID: bookingID})
	if err != nil {
		return check, err
	}
	if result := node.Lookup("Success", "Result"); result != "" && !isAffirmative(result) {
		reason := node.Lookup("Message", "Reason")
		return check, models.NewServiceError(models.CodeBookingConflict,
			"the booking service declined to cancel the trip").WithDetail(reason)
	}

	o.Cache.Invalidate(ctx, ownerID)
	o.Logger.Info("trip cancelled",
		zap.String("owner", ownerID), zap.String("bookingId", bookingID))
	return check, nil
}

// CheckAvailability runs steps 1 and 2 of the protocol without confirming,
// reports the candidate pickup windows, and always releases the probe draft.
func (o *Orchestrator) CheckAvailability(ctx context.Context, ownerID string, draft models.BookingDraft) ([]models.PickupWindow, error) {
	client, _, err := o.Auth.Resume(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	requestID, err := o.createDraft(ctx, client, draft)
	if err != nil {
		return nil, err
	}
	defer o.release(ctx, client, requestID)

	solutions, err := o.fetchSolutions(ctx, client, requestID)
	if err != nil {
		return nil, err
	}

	windows := make([]models.PickupWindow, 0, len(solutions))
	for _, sol := range solutions {
		windows = append(windows, sol.Window)
	}
	return windows, nil
}

func (o *Orchestrator) createDraft(ctx context.Context, client *soap.Client, draft models.BookingDraft) (string, error) {
	date := utils.ParseFlexible(draft.PickupDate, o.Validator.Loc)
	seconds, err := utils.SecondsSinceMidnight(draft.PickupTime)
	if err != nil {
		return "", models.NewServiceError(models.CodeValidationError,
			"the pickup time could not be understood").WithDetail(err.Error())
	}

	req := createTripRequest{
		PickupDate:         utils.CompactDate(date),
		PickupTime:         seconds,
		PickupAddress:      draft.PickupAddress,
		DestinationAddress: draft.DestinationAddress,
		MobilityDevice:     draft.MobilityDevice,
	}
	for name, value := range draft.PassengerOptions {
		req.Options = append(req.Options, tripOption{Name: name, Value: value})
	}

	node, err := client.Call(ctx, "CreateTripRequest", req)
	if err != nil {
		return "", err
	}

	requestID := node.Lookup("RequestId", "Id")
	if requestID == "" {
		return "", models.NewServiceError(models.CodeSystemError,
			"the booking service did not return a request identifier")
	}
	return requestID, nil
}

func (o *Orchestrator) fetchSolutions(ctx context.Context, client *soap.Client, requestID string) ([]solution, error) {
	node, err := client.Call(ctx, "GetTripSolutions", tripSolutionsRequest{RequestID: requestID})
	if err != nil {
		return nil, err
	}

	container := node
	if wrapper := node.First("Solutions"); wrapper != nil {
		container = wrapper
	}

	var out []solution
	for _, n := range container.All("Solution") {
		out = append(out, solution{
			ID: n.Lookup("SolutionId", "Id"),
			Window: models.PickupWindow{
				Start: clockField(n.Lookup("PickupWindow/Start", "Start")),
				End:   clockField(n.Lookup("PickupWindow/End", "End")),
			},
		})
	}
	return out, nil
}

func (o *Orchestrator) confirm(ctx context.Context, client *soap.Client, requestID string, chosen solution) (string, models.PickupWindow, error) {
	node, err := client.Call(ctx, "ScheduleTrip", scheduleTripRequest{
		RequestID:  requestID,
		SolutionID: chosen.ID,
	})
	if err != nil {
		return "", models.PickupWindow{}, err
	}

	bookingID := node.Lookup("BookingId", "Id")
	if bookingID == "" {
		return "", models.PickupWindow{}, models.NewServiceError(models.CodeSystemError,
			"the booking service did not confirm the trip")
	}

	window := models.PickupWindow{
		Start: clockField(node.Lookup("PickupWindow/Start")),
		End:   clockField(node.Lookup("PickupWindow/End")),
	}
	if window.Start == "" {
		window = chosen.Window
	}
	return bookingID, window, nil
}

// release compensates for an unconfirmed draft. The attempt itself is logged,
// with nothing but the draft id: an unreleased draft can still cause the
// service to dispatch a vehicle, so operators need the trace.
func (o *Orchestrator) release(ctx context.Context, client *soap.Client, requestID string) {
	_, err := client.Call(ctx, "CancelTripRequest", releaseTripRequest{RequestID: requestID})
	if err != nil {
		o.Logger.Error("draft release failed, manual reconciliation needed",
			zap.String("requestId", requestID), zap.Error(err))
		return
	}
	o.Logger.Info("unconfirmed draft released", zap.String("requestId", requestID))
}

// fail converts an error into a failure result. Business outcomes (conflicts,
// validation) come back as typed results; infrastructure failures keep
// propagating as errors so callers can tell the two apart.
func (o *Orchestrator) fail(err error, requestID string) (models.BookingResult, error) {
	se, ok := err.(*models.ServiceError)
	if !ok {
		se = models.NewServiceError(models.CodeSystemError,
			"the booking could not be completed").WithDetail(err.Error())
	}
	if requestID != "" {
		detail := fmt.Sprintf("draft %s left unconfirmed, release attempted", requestID)
		if se.Detail != "" {
			detail = se.Detail + "; " + detail
		}
		se = se.WithDetail(detail)
	}

	result := models.BookingResult{Success: false, Error: se}
	switch se.Code {
	case models.CodeValidationError, models.CodeBookingConflict:
		return result, nil
	default:
		return result, se
	}
}

func isAffirmative(s string) bool {
	switch s {
	case "true", "True", "TRUE", "1", "OK", "Success":
		return true
	}
	return false
}

func clockField(raw string) string {
	if raw == "" {
		return ""
	}
	secs := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return raw
		}
		secs = secs*10 + int(r-'0')
	}
	return utils.ClockFromSeconds(secs)
}
