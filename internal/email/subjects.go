package email

const subjectHighSeverityAlertFmt = "High severity trash report at %s"
