package service

const (
	InquiryStatusUnpaid    = 1
	InquiryStatusFailed    = 2
	InquiryStatusError     = 3
	InquiryStatusConfirmed = 100
)

func InquiryStatusMessage(code int) string {
	switch code {
	case InquiryStatusUnpaid:
		return "Payment has not been made."
	case InquiryStatusFailed:
		return "Payment has been unsuccessful."
	case InquiryStatusError:
		return "An error occurred."
	case InquiryStatusConfirmed:
		return "Payment has been confirmed."
	default:
		return "The code has not been defined."
	}
}
