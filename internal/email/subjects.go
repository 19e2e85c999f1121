package email

const (
	subjectPasswordReset     = "Reset your LeadNest password"
	subjectEventReminderFmt  = "Reminder: %s"
	subjectFollowupDigestFmt = "%d leads need a follow-up"
)
