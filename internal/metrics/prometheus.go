package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rag_http_requests_total",
			Help: "Total HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_rag_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	CompletionCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rag_completion_calls_total",
			Help: "Completion API calls by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	MessagesDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rag_messages_delivered_total",
			Help: "Outbound messaging gateway deliveries by outcome",
		},
		[]string{"outcome"},
	)

	ConversationLogWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rag_conversation_log_writes_total",
			Help: "Conversation log writes by outcome",
		},
		[]string{"outcome"},
	)

	DocumentsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rag_documents_ingested_total",
			Help: "Uploaded documents stored, by file type",
		},
		[]string{"file_type"},
	)

	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rag_webhook_events_total",
			Help: "Inbound webhook events by payload scheme",
		},
		[]string{"scheme"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
		prometheus.MustRegister(CompletionCalls)
		prometheus.MustRegister(MessagesDelivered)
		prometheus.MustRegister(ConversationLogWrites)
		prometheus.MustRegister(DocumentsIngested)
		prometheus.MustRegister(WebhookEvents)
	})
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
