// Package performance provides performance markers for editor operations
// (command dispatch, render passes, generation, saves).
package performance

import (
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation  string         `json:"operation"`       // e.g., "editor:command", "render:canvas"
	DocumentID string         `json:"documentId"`      // Document the operation ran against
	StartTime  time.Time      `json:"startTime"`       // When the operation started
	EndTime    time.Time      `json:"endTime"`         // When the operation completed
	Duration   time.Duration  `json:"duration"`        // Total operation duration
	Success    bool           `json:"success"`         // Whether the operation completed successfully
	Error      string         `json:"error,omitempty"` // Error message if operation failed
	Metadata   map[string]any `json:"metadata"`        // Additional operation-specific data
	Completed  bool           `json:"completed"`       // Whether Complete() has been called
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Snapshot summarises recent operations for one document.
type Snapshot struct {
	Timestamp           time.Time                `json:"timestamp"`
	DocumentID          string                   `json:"documentId"`
	OverallHealth       HealthStatus             `json:"overallHealth"`
	CompletedOperations int                      `json:"completedOperations"`
	Latest              map[string]*Marker       `json:"latest"`
	AverageByOperation  map[string]time.Duration `json:"averageByOperation"`
}

// HealthStatus represents the overall health of a system component
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// Alert represents a performance threshold violation
type Alert struct {
	Timestamp  time.Time     `json:"timestamp"`
	DocumentID string        `json:"documentId"`
	Severity   AlertSeverity `json:"severity"`
	Operation  string        `json:"operation"`
	Threshold  time.Duration `json:"threshold"`
	Actual     time.Duration `json:"actual"`
	Message    string        `json:"message"`
}

// AlertSeverity represents the severity level of a performance alert
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)
