package errors

// GenericMessage is the fallback shown when an error carries nothing usable
const GenericMessage = "An error occurred"

// maxUserMessageLen caps messages forwarded to the notification channel
const maxUserMessageLen = 200

// ToUserMessage reduces any error to a short plain string fit for user-facing
// notifications. Priority: AppError message, then AppError code, then the
// error's own text, then a generic fallback. Raw error values never travel
// past this boundary. Error implementations that panic are absorbed.
func ToUserMessage(err error) (msg string) {
	if err == nil {
		return GenericMessage
	}

	defer func() {
		if recover() != nil {
			msg = GenericMessage
		}
	}()

	if appErr := GetAppError(err); appErr != nil {
		if appErr.Message != "" {
			return truncate(appErr.Message)
		}
		if appErr.Code != "" {
			return truncate(appErr.Code)
		}
		return GenericMessage
	}

	if text := err.Error(); text != "" {
		return truncate(text)
	}
	return GenericMessage
}

func truncate(s string) string {
	if len(s) <= maxUserMessageLen {
		return s
	}
	return s[:maxUserMessageLen]
}
