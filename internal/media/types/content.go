package types

import "time"

// Content kinds
const (
	TypePost       = "post"
	TypePage       = "page"
	TypeAttachment = "attachment"
)

// Content statuses
const (
	StatusPublish   = "publish"
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPrivate   = "private"
	StatusFuture    = "future"
	StatusInherit   = "inherit"
	StatusTrash     = "trash"
	StatusAutoDraft = "auto-draft"
)

// ParentKinds are the kinds an attachment can be attached to and the only
// kinds ever suggested or resolved.
var ParentKinds = []string{TypePost, TypePage}

// ExcludedFromAny are the statuses the "any" status filter leaves out.
var ExcludedFromAny = []string{StatusTrash, StatusAutoDraft}

// AttachmentStatuses are the statuses an attachment is listed with.
var AttachmentStatuses = []string{StatusInherit, StatusPrivate}

// ContentItem is a post, page or attachment in the content store
type ContentItem struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Title     string    `json:"title"`
	Parent    int64     `json:"parent"` // 0 = unattached
	MimeType  string    `json:"mime_type,omitempty"`
	ObjectKey string    `json:"-"`
	Date      time.Time `json:"date"`
	Modified  time.Time `json:"modified"`
}

// Attachment is the listing view of an attachment
type Attachment struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Parent   int64     `json:"parent"`
	MimeType string    `json:"mime_type"`
	URL      string    `json:"url,omitempty"` // presigned, empty when blob storage is off
	Date     time.Time `json:"date"`
}

// AttachmentPage is one page of the media library listing
type AttachmentPage struct {
	Items      []*Attachment `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

// AttachmentFilter narrows the attachment listing
type AttachmentFilter struct {
	Parent   *int64 // nil = any parent
	Page     int
	PageSize int
}
