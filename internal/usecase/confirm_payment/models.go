package confirm_payment

import "github.com/m04kA/SMC-DoctorBooking/internal/domain"

// Response результат подтверждения оплаты
type Response struct {
	Booking *domain.Booking
	// AlreadyPaid true, если оплата была подтверждена ранее и ничего не менялось
	AlreadyPaid bool
}

// SMSTemplate контакты поддержки, подставляемые в SMS-подтверждение
type SMSTemplate struct {
	SupportPhone string
	SupportURL   string
}
