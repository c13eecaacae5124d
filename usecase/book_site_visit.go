package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/domain/entities"
	"github.com/wildcloud007/greenguard/domain/repositories"
)

// ToolBookSiteVisit is the single tool declared to the remote service.
const ToolBookSiteVisit = "book_site_visit"

// BookingConfirmation is the success result the assistant reads back to the
// customer.
const BookingConfirmation = "Visit successfully scheduled."

// BookSiteVisitTool returns the declaration and handler for the
// book_site_visit tool. The handler appends a booking record and reports the
// new booking to the notifier.
func BookSiteVisitTool(log repositories.BookingLog, notifier Notifier, logger *zap.Logger) (repositories.ToolDeclaration, ToolHandler) {
	decl := repositories.ToolDeclaration{
		Name:        ToolBookSiteVisit,
		Description: "Schedule an on-site solar consultation visit for a customer.",
		Parameters: map[string]string{
			"customerName":  "Full name of the customer requesting the visit.",
			"address":       "Street address where the site visit should take place.",
			"preferredTime": "Customer's preferred day and time, in their own words.",
		},
		Required: []string{"customerName", "address", "preferredTime"},
	}

	handler := func(ctx context.Context, args map[string]any) (map[string]any, error) {
		booking := entities.NewBooking(
			strings.TrimSpace(args["customerName"].(string)),
			strings.TrimSpace(args["address"].(string)),
			strings.TrimSpace(args["preferredTime"].(string)),
		)
		if err := booking.Validate(); err != nil {
			return nil, &entities.ValidationError{Reason: err.Error()}
		}
		if err := log.Append(ctx, booking); err != nil {
			return nil, fmt.Errorf("failed to record booking: %w", err)
		}

		logger.Info("Site visit booked",
			zap.String("bookingID", booking.ID),
			zap.String("customer", booking.CustomerName),
			zap.String("preferredTime", booking.PreferredTime))
		notifier.BookingCreated(booking)

		return map[string]any{"result": BookingConfirmation}, nil
	}

	return decl, handler
}
