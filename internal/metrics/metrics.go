package metrics

import (
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Estimation metrics
	EstimateRounds      int64
	EstimateRoundErrors int64
	EstimateSamplesOK   int64
	EstimateSamplesDrop int64

	// Ingestion metrics
	IngestBatchesOK     int64
	IngestBatchesFailed int64

	// Chat metrics by mode
	ChatRAG    int64
	ChatAgent  int64
	ChatPlain  int64
	ChatErrors int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesOut int64

	// Endpoint-specific metrics
	endpoints map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

var globalMetrics *Metrics

// Init initializes the global metrics instance
func Init() {
	globalMetrics = &Metrics{
		endpoints: make(map[string]*EndpointMetrics),
		StartTime: time.Now(),
	}
}

// Get returns the global metrics instance
func Get() *Metrics {
	if globalMetrics == nil {
		Init()
	}
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementEstimateRounds counts a finished estimation round
func (m *Metrics) IncrementEstimateRounds(success bool) {
	atomic.AddInt64(&m.EstimateRounds, 1)
	if !success {
		atomic.AddInt64(&m.EstimateRoundErrors, 1)
	}
}

// IncrementSamplesParsed counts an LLM sample that parsed successfully
func (m *Metrics) IncrementSamplesParsed() {
	atomic.AddInt64(&m.EstimateSamplesOK, 1)
}

// IncrementSamplesDropped counts an LLM sample dropped at parsing
func (m *Metrics) IncrementSamplesDropped() {
	atomic.AddInt64(&m.EstimateSamplesDrop, 1)
}

// IncrementIngestBatches counts a terminally-resolved upload batch
func (m *Metrics) IncrementIngestBatches(success bool) {
	if success {
		atomic.AddInt64(&m.IngestBatchesOK, 1)
	} else {
		atomic.AddInt64(&m.IngestBatchesFailed, 1)
	}
}

// IncrementChat counts a chat interaction by mode
func (m *Metrics) IncrementChat(mode string, success bool) {
	if !success {
		atomic.AddInt64(&m.ChatErrors, 1)
		return
	}
	switch mode {
	case "rag":
		atomic.AddInt64(&m.ChatRAG, 1)
	case "agent":
		atomic.AddInt64(&m.ChatAgent, 1)
	default:
		atomic.AddInt64(&m.ChatPlain, 1)
	}
}

// IncrementWSConnection increments active websocket connections
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements active websocket connections
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageOut counts an outgoing websocket message
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// TrackEndpoint tracks per-endpoint metrics
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	ep, exists := m.endpoints[key]
	if !exists {
		ep = &EndpointMetrics{}
		m.endpoints[key] = ep
	}

	ep.Requests++
	ep.TotalLatency += latencyMs
	if statusCode >= 400 {
		ep.Errors++
	}
}

// GetEndpointMetrics returns a copy of endpoint metrics
func (m *Metrics) GetEndpointMetrics() map[string]EndpointMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]EndpointMetrics, len(m.endpoints))
	for k, v := range m.endpoints {
		out[k] = *v
	}
	return out
}

// GetAverageLatency returns the average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.TotalLatency)) / float64(count)
}

// GetUptime returns the time elapsed since startup
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	Estimation struct {
		Rounds         int64 `json:"rounds"`
		RoundErrors    int64 `json:"round_errors"`
		SamplesParsed  int64 `json:"samples_parsed"`
		SamplesDropped int64 `json:"samples_dropped"`
	} `json:"estimation"`

	Ingestion struct {
		BatchesSucceeded int64 `json:"batches_succeeded"`
		BatchesFailed    int64 `json:"batches_failed"`
	} `json:"ingestion"`

	Chat struct {
		RAG    int64 `json:"rag"`
		Agent  int64 `json:"agent"`
		Plain  int64 `json:"plain"`
		Errors int64 `json:"errors"`
	} `json:"chat"`

	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	System struct {
		Goroutines  int    `json:"goroutines"`
		HeapAllocMB uint64 `json:"heap_alloc_mb"`
		NumGC       uint32 `json:"num_gc"`
	} `json:"system"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	snapshot.Estimation.Rounds = atomic.LoadInt64(&m.EstimateRounds)
	snapshot.Estimation.RoundErrors = atomic.LoadInt64(&m.EstimateRoundErrors)
	snapshot.Estimation.SamplesParsed = atomic.LoadInt64(&m.EstimateSamplesOK)
	snapshot.Estimation.SamplesDropped = atomic.LoadInt64(&m.EstimateSamplesDrop)

	snapshot.Ingestion.BatchesSucceeded = atomic.LoadInt64(&m.IngestBatchesOK)
	snapshot.Ingestion.BatchesFailed = atomic.LoadInt64(&m.IngestBatchesFailed)

	snapshot.Chat.RAG = atomic.LoadInt64(&m.ChatRAG)
	snapshot.Chat.Agent = atomic.LoadInt64(&m.ChatAgent)
	snapshot.Chat.Plain = atomic.LoadInt64(&m.ChatPlain)
	snapshot.Chat.Errors = atomic.LoadInt64(&m.ChatErrors)

	snapshot.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	snapshot.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	endpointMetrics := m.GetEndpointMetrics()
	if len(endpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for k, v := range endpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: v.Requests,
				Errors:   v.Errors,
			}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatabaseHealth checks database connectivity
func CheckDatabaseHealth(db *sql.DB) HealthStatus {
	start := time.Now()

	if db == nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "database not configured",
		}
	}

	if err := db.Ping(); err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: time.Since(start).Milliseconds(),
		}
	}

	return HealthStatus{
		Status:  "healthy",
		Latency: time.Since(start).Milliseconds(),
	}
}

// DetermineOverallStatus aggregates component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	status := "healthy"
	for _, c := range components {
		if c.Status == "unhealthy" {
			return "unhealthy"
		}
		if c.Status == "degraded" {
			status = "degraded"
		}
	}
	return status
}
