package domainerrors

// Next steps shown to the user alongside a failure. Raw error text is never the
// only guidance a user receives.
const (
	NextStepRetake          = "retake"
	NextStepResendCode      = "resend_code"
	NextStepReenterCode     = "reenter_code"
	NextStepTryAgain        = "try_again"
	NextStepWait            = "wait"
	NextStepContactSupport  = "contact_support"
	NextStepStartNewSession = "start_new_session"
	NextStepProvideContact  = "provide_contact"
	NextStepFixRequest      = "fix_request"
)

// NextStep maps an error code to the action the user should take.
func NextStep(code Code) string {
	switch code {
	case CodeMissingContact:
		return NextStepProvideContact
	case CodeIncorrectCode:
		return NextStepReenterCode
	case CodeCodeExpired, CodeNoCodeIssued, CodeAttemptsExhausted:
		return NextStepResendCode
	case CodeResendTooSoon, CodeInFlight:
		return NextStepWait
	case CodeValidationFailed, CodeSendFailed, CodeTimeout, CodeUnavailable:
		return NextStepTryAgain
	case CodeSessionTerminal, CodeNotFound:
		return NextStepStartNewSession
	case CodeStaleResult:
		return NextStepRetake
	case CodeBadRequest, CodeValidation, CodeInvalidInput, CodeInvalidState:
		return NextStepFixRequest
	default:
		return NextStepContactSupport
	}
}
