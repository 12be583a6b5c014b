package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/intakehq/intake/config"
)

// Telemetry provides monitoring and cost tracking for the planning and
// execution pipeline.
type Telemetry struct {
	config      config.TelemetryConfig
	logger      *log.Logger
	metrics     *Metrics
	costTracker *CostTracker

	requestsTotal *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	parseOutcomes *prometheus.CounterVec
}

// Metrics holds aggregate performance counters.
type Metrics struct {
	mu sync.RWMutex

	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	TaskExecutions   map[string]int64
	TaskAverageTimes map[string]time.Duration

	LLMRequests   map[string]int64
	LLMTokensUsed map[string]int64
}

// CostTracker aggregates spend across models and operations.
type CostTracker struct {
	mu sync.RWMutex

	OperationCosts map[string]float64
	ModelCosts     map[string]float64
	TotalCost      float64
	TotalTokens    int64
}

// ProcessingEvent records one full request through the pipeline.
type ProcessingEvent struct {
	RequestID      string
	TaskType       string
	Success        bool
	ProcessingTime time.Duration
	Cost           float64
	TokensUsed     int64
}

// NewTelemetry creates a telemetry instance and registers its collectors.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			TaskExecutions:   make(map[string]int64),
			TaskAverageTimes: make(map[string]time.Duration),
			LLMRequests:      make(map[string]int64),
			LLMTokensUsed:    make(map[string]int64),
		},
		costTracker: &CostTracker{
			OperationCosts: make(map[string]float64),
			ModelCosts:     make(map[string]float64),
		},
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Name:      "requests_total",
			Help:      "Processed requests by task type and outcome.",
		}, []string{"task_type", "outcome"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "intake",
			Name:      "task_duration_seconds",
			Help:      "Task execution wall-clock duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task_type"}),
		parseOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Name:      "reply_parse_outcomes_total",
			Help:      "Model reply parse outcomes (ok, recovered, unparseable).",
		}, []string{"task_type", "outcome"}),
	}

	if cfg.Enabled {
		prometheus.MustRegister(t.requestsTotal, t.taskDuration, t.parseOutcomes)
	}

	return t
}

// RecordProcessingEvent records a complete request.
func (t *Telemetry) RecordProcessingEvent(event ProcessingEvent) {
	if !t.config.Enabled {
		return
	}

	t.metrics.mu.Lock()
	t.metrics.TotalRequests++
	if event.Success {
		t.metrics.SuccessfulRequests++
	} else {
		t.metrics.FailedRequests++
	}
	prev := t.metrics.TaskExecutions[event.TaskType]
	t.metrics.TaskExecutions[event.TaskType] = prev + 1
	avg := t.metrics.TaskAverageTimes[event.TaskType]
	t.metrics.TaskAverageTimes[event.TaskType] = (avg*time.Duration(prev) + event.ProcessingTime) / time.Duration(prev+1)
	t.metrics.mu.Unlock()

	outcome := "success"
	if !event.Success {
		outcome = "failure"
	}
	t.requestsTotal.WithLabelValues(event.TaskType, outcome).Inc()
	t.taskDuration.WithLabelValues(event.TaskType).Observe(event.ProcessingTime.Seconds())

	if t.config.CostTracking {
		t.trackCost("process:"+event.TaskType, "", event.Cost, event.TokensUsed)
	}

	if t.config.PeriodicLogs {
		t.logger.Printf("request %s task=%s success=%t time=%v cost=$%.4f tokens=%d",
			event.RequestID, event.TaskType, event.Success, event.ProcessingTime, event.Cost, event.TokensUsed)
	}
}

// RecordLLMUsage records token usage and cost for one completion call.
func (t *Telemetry) RecordLLMUsage(model string, inputTokens, outputTokens int64, cost float64) {
	if !t.config.Enabled {
		return
	}
	t.metrics.mu.Lock()
	t.metrics.LLMRequests[model]++
	t.metrics.LLMTokensUsed[model] += inputTokens + outputTokens
	t.metrics.mu.Unlock()

	if t.config.CostTracking {
		t.trackCost("", model, cost, inputTokens+outputTokens)
	}
}

// RecordParseOutcome records how a model reply was parsed.
func (t *Telemetry) RecordParseOutcome(taskType, outcome string) {
	if !t.config.Enabled {
		return
	}
	t.parseOutcomes.WithLabelValues(taskType, outcome).Inc()
}

func (t *Telemetry) trackCost(operation, model string, cost float64, tokens int64) {
	t.costTracker.mu.Lock()
	defer t.costTracker.mu.Unlock()
	if operation != "" {
		t.costTracker.OperationCosts[operation] += cost
	}
	if model != "" {
		t.costTracker.ModelCosts[model] += cost
	}
	t.costTracker.TotalCost += cost
	t.costTracker.TotalTokens += tokens
}

// Snapshot returns current aggregate counters for the health endpoint.
func (t *Telemetry) Snapshot() map[string]interface{} {
	t.metrics.mu.RLock()
	defer t.metrics.mu.RUnlock()
	t.costTracker.mu.RLock()
	defer t.costTracker.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":      t.metrics.TotalRequests,
		"successful_requests": t.metrics.SuccessfulRequests,
		"failed_requests":     t.metrics.FailedRequests,
		"total_cost":          t.costTracker.TotalCost,
		"total_tokens":        t.costTracker.TotalTokens,
	}
}
