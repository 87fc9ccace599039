package performance

import (
	"strings"
	"sync"
	"time"
)

// Tracker keeps a bounded window of completed markers and raises alerts
// when operations exceed their thresholds.
type Tracker struct {
	markers    []*Marker
	alerts     []*Alert
	thresholds *AlertThresholds
	config     *TrackerConfig
	onAlert    func(*Alert)
	mu         sync.RWMutex
	started    time.Time
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int  `json:"maxMarkers"`
	MaxAlerts    int  `json:"maxAlerts"`
	EnableAlerts bool `json:"enableAlerts"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   2000,
		MaxAlerts:    200,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	SlowResponseThreshold     time.Duration `json:"slowResponseThreshold"`
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`

	RenderThreshold     time.Duration `json:"renderThreshold"`
	CommandThreshold    time.Duration `json:"commandThreshold"`
	StorageThreshold    time.Duration `json:"storageThreshold"`
	GenerationThreshold time.Duration `json:"generationThreshold"`
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		SlowResponseThreshold:     time.Second * 2,
		CriticalResponseThreshold: time.Second * 5,
		RenderThreshold:           time.Millisecond * 50,
		CommandThreshold:          time.Millisecond * 20,
		StorageThreshold:          time.Millisecond * 100,
		GenerationThreshold:       time.Second * 20,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		thresholds: DefaultAlertThresholds(),
		config:     config,
		started:    time.Now(),
	}
}

// OnAlert registers a callback fired for every alert raised.
func (t *Tracker) OnAlert(fn func(*Alert)) {
	t.mu.Lock()
	t.onAlert = fn
	t.mu.Unlock()
}

// StartOperation creates a new performance marker for an operation
func (t *Tracker) StartOperation(operation, documentID string) *Marker {
	return &Marker{
		Operation:  operation,
		DocumentID: documentID,
		StartTime:  time.Now(),
		Metadata:   make(map[string]any),
		Success:    true,
	}
}

// CompleteOperation completes an operation, records it and checks for alerts
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil || marker.Completed {
		return
	}
	marker.Complete()

	var raised []*Alert
	if t.config.EnableAlerts {
		raised = t.evaluateThresholds(marker)
	}

	t.mu.Lock()
	t.markers = append(t.markers, marker)
	if len(t.markers) > t.config.MaxMarkers {
		t.markers = t.markers[len(t.markers)-t.config.MaxMarkers:]
	}
	t.alerts = append(t.alerts, raised...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	onAlert := t.onAlert
	t.mu.Unlock()

	if onAlert != nil {
		for _, alert := range raised {
			onAlert(alert)
		}
	}
}

// evaluateThresholds checks a marker against all relevant thresholds
func (t *Tracker) evaluateThresholds(marker *Marker) []*Alert {
	var alerts []*Alert

	if marker.Duration > t.thresholds.CriticalResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertCritical, t.thresholds.CriticalResponseThreshold,
			"Operation exceeded critical response time threshold"))
	} else if marker.Duration > t.thresholds.SlowResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertWarning, t.thresholds.SlowResponseThreshold,
			"Operation exceeded slow response time threshold"))
	}

	var threshold time.Duration
	var message string
	switch {
	case strings.HasPrefix(marker.Operation, "render"):
		threshold, message = t.thresholds.RenderThreshold, "Render pass exceeded threshold"
	case strings.HasPrefix(marker.Operation, "editor"):
		threshold, message = t.thresholds.CommandThreshold, "Command dispatch exceeded threshold"
	case strings.HasPrefix(marker.Operation, "storage"):
		threshold, message = t.thresholds.StorageThreshold, "Storage operation exceeded threshold"
	case strings.HasPrefix(marker.Operation, "generative"):
		threshold, message = t.thresholds.GenerationThreshold, "Layout generation exceeded threshold"
	}
	if threshold > 0 && marker.Duration > threshold {
		alerts = append(alerts, t.createAlert(marker, AlertWarning, threshold, message))
	}

	return alerts
}

func (t *Tracker) createAlert(marker *Marker, severity AlertSeverity, threshold time.Duration, message string) *Alert {
	return &Alert{
		Timestamp:  time.Now(),
		DocumentID: marker.DocumentID,
		Severity:   severity,
		Operation:  marker.Operation,
		Threshold:  threshold,
		Actual:     marker.Duration,
		Message:    message,
	}
}

// GetAlerts returns performance alerts for a document, or all alerts when documentID is empty
func (t *Tracker) GetAlerts(documentID string) []*Alert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var alerts []*Alert
	for _, alert := range t.alerts {
		if documentID == "" || alert.DocumentID == documentID {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

// TakeSnapshot summarises operations completed within the last five minutes for a document
func (t *Tracker) TakeSnapshot(documentID string) *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-5 * time.Minute)
	snapshot := &Snapshot{
		Timestamp:          time.Now(),
		DocumentID:         documentID,
		Latest:             make(map[string]*Marker),
		AverageByOperation: make(map[string]time.Duration),
	}

	totals := make(map[string]time.Duration)
	counts := make(map[string]int)
	failures := 0
	for _, marker := range t.markers {
		if marker.DocumentID != documentID || marker.EndTime.Before(cutoff) {
			continue
		}
		snapshot.CompletedOperations++
		m := *marker
		snapshot.Latest[marker.Operation] = &m
		totals[marker.Operation] += marker.Duration
		counts[marker.Operation]++
		if !marker.Success || marker.Duration > t.thresholds.CriticalResponseThreshold {
			failures++
		}
	}
	for op, total := range totals {
		snapshot.AverageByOperation[op] = total / time.Duration(counts[op])
	}

	switch {
	case snapshot.CompletedOperations == 0:
		snapshot.OverallHealth = HealthUnknown
	case float64(failures)/float64(snapshot.CompletedOperations) > 0.1:
		snapshot.OverallHealth = HealthUnhealthy
	case failures > 0:
		snapshot.OverallHealth = HealthDegraded
	default:
		snapshot.OverallHealth = HealthHealthy
	}
	return snapshot
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"completedOperations": len(t.markers),
		"totalAlerts":         len(t.alerts),
	}
}
