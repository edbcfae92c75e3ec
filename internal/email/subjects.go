package email

const (
	subjectReminderDigestFmt = "Service reminders due: %d upcoming"
	subjectOfferCompletedFmt = "Offer %s completed"
)
