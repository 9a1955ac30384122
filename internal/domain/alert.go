package domain

import "time"

// AlertSeverity ranks a security alert.
type AlertSeverity string

const (
	AlertSeverityLow    AlertSeverity = "low"
	AlertSeverityMedium AlertSeverity = "med"
	AlertSeverityHigh   AlertSeverity = "high"
)

// AlertCategory groups security alerts by the kind of abuse detected.
type AlertCategory string

const (
	AlertCategoryAbuse AlertCategory = "abuse"
	AlertCategoryAuth  AlertCategory = "auth"
	AlertCategoryInfra AlertCategory = "infra"
)

// Entity types an alert can point at.
const (
	AlertEntityBuilder = "builder"
	AlertEntitySystem  = "system"
	AlertEntityNode    = "node"
)

// AlertStatusOpen is the status of a freshly emitted alert.
const AlertStatusOpen = "open"

// Alert is a persisted security alert.
type Alert struct {
	CreatedAt  time.Time
	Evidence   map[string]any
	ID         string
	Severity   AlertSeverity
	Category   AlertCategory
	EntityType string
	EntityID   string
	Title      string
	Status     string
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	Category AlertCategory
	EntityID string
	Limit    int
	Offset   int
}
