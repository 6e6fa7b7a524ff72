package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swapp",
		Name:      "messages_sent_total",
		Help:      "Messages accepted and stored.",
	})
	ConversationsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swapp",
		Name:      "conversations_resolved_total",
		Help:      "Conversation key resolutions by source (existing or derived).",
	}, []string{"source"})
	PublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swapp",
		Name:      "publish_failures_total",
		Help:      "Message events that could not be published.",
	})
)

func init() {
	prometheus.MustRegister(MessagesSent)
	prometheus.MustRegister(ConversationsStarted)
	prometheus.MustRegister(PublishFailures)
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
