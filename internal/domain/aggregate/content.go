package aggregate

// ContentStatus is the editorial state of a blog post or news article
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "DRAFT"
	ContentStatusPublished ContentStatus = "PUBLISHED"
	ContentStatusArchived  ContentStatus = "ARCHIVED"
)

// ContactFormStatus tracks how far support has got with a contact request
type ContactFormStatus string

const (
	ContactFormStatusNew        ContactFormStatus = "NEW"
	ContactFormStatusInProgress ContactFormStatus = "IN_PROGRESS"
	ContactFormStatusResolved   ContactFormStatus = "RESOLVED"
)
