package confirm_payment

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

func confirmationMessage(tpl SMSTemplate, patient *domain.Patient, doctor *domain.Doctor, booking *domain.Booking) string {
	var sb strings.Builder

	fmt.Fprintf(&sb,
		"Hi, %s, your appointment with Dr. %s is confirmed on %s (%s) from %s to %s. Your reference number is %s. "+
			"Please visit and register 15 minutes prior to your appointment time. This appointment is valid on payment.",
		patient.Name,
		doctor.Name,
		booking.AppointmentDate.Format(domain.DateFormat),
		booking.TimeSlot.Day,
		booking.TimeSlot.StartingTime,
		booking.TimeSlot.EndingTime,
		booking.ID,
	)

	if tpl.SupportPhone != "" {
		fmt.Fprintf(&sb, " For any queries call %s (24 hrs).", tpl.SupportPhone)
	}
	if tpl.SupportURL != "" {
		base := strings.TrimRight(tpl.SupportURL, "/")
		fmt.Fprintf(&sb, "\n\nContact for support: %s/support\nCancel appointment: %s/cancel/%s", base, base, booking.ID)
	}

	return sb.String()
}
