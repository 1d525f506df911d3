package models

// Report categories offered by the app. Stored reports may carry any string.
const (
	ReportCategoryTrash = "trash"
	ReportCategorySmoke = "smoke"
	ReportCategoryWater = "water"
	ReportCategoryOther = "other"
)

// Report status values
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
	ReportStatusResolved = "resolved"
)

// GuestUID is the owner recorded when no identity is available
const GuestUID = "guest"

// ReportCategories lists the categories offered when creating a report
var ReportCategories = []string{
	ReportCategoryTrash,
	ReportCategorySmoke,
	ReportCategoryWater,
	ReportCategoryOther,
}

// Report represents a user-submitted pollution observation.
// JSON names match the mobile app's export format.
type Report struct {
	ID          string   `json:"id"`  // unix millis at creation
	UID         string   `json:"uid"` // owner identity or "guest"
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PhotoURI    string   `json:"photoUri"` // store-owned blob path
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CreatedAt   string   `json:"createdAt"` // RFC3339
	Status      string   `json:"status"`
}

// ReportDraft carries the user-provided fields of a new report
type ReportDraft struct {
	Description string   `json:"description" form:"description"`
	Category    string   `json:"category" form:"category"`
	Latitude    *float64 `json:"latitude,omitempty" form:"latitude"`
	Longitude   *float64 `json:"longitude,omitempty" form:"longitude"`
}

// ReportPatch holds the fields an update may change; nil means unchanged
type ReportPatch struct {
	Description *string  `json:"description,omitempty" form:"description"`
	Category    *string  `json:"category,omitempty" form:"category"`
	Latitude    *float64 `json:"latitude,omitempty" form:"latitude"`
	Longitude   *float64 `json:"longitude,omitempty" form:"longitude"`
	Status      *string  `json:"status,omitempty" form:"status"`
	PhotoURI    string   `json:"-" form:"-"` // new photo source, set from an upload
}

// ExportResult describes a written export file
type ExportResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ImportResult describes the outcome of an id-based merge
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped,omitempty"` // rows owned by another user
	Total   int `json:"total"`
}
