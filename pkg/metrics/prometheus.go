package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HistogramBuckets covers fast (25ms) through very slow (2min) responses, in ms.
var HistogramBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 10000, 15000,
	30000, 60000, 120000,
}

// Prometheus exposes HTTP request metrics on a dedicated listen address and
// provides a gin middleware that records them.
type Prometheus struct {
	reqCnt     *prometheus.CounterVec
	reqDur     *prometheus.HistogramVec
	listenAddr string
	urlMapping func(c *gin.Context) string
	log        *zap.SugaredLogger
}

type NewPrometheusOptions struct {
	Subsystem string
	// ReqCntURLLabelMappingFn maps a request to the url label; typically the
	// gin route template to keep cardinality bounded.
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Logger                  *zap.SugaredLogger
}

func NewPrometheus(opts NewPrometheusOptions) *Prometheus {
	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "billing"
	}
	mapping := opts.ReqCntURLLabelMappingFn
	if mapping == nil {
		mapping = func(c *gin.Context) string { return c.Request.URL.Path }
	}

	p := &Prometheus{
		reqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "req_total",
			Help:      "How many HTTP requests processed, partitioned by status code, method and url.",
		}, []string{"code", "method", "url"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "req_dur_ms",
			Help:      "The HTTP request latencies in milliseconds.",
			Buckets:   HistogramBuckets,
		}, []string{"code", "method", "url"}),
		urlMapping: mapping,
		log:        opts.Logger,
	}
	prometheus.MustRegister(p.reqCnt, p.reqDur)
	return p
}

func (p *Prometheus) SetListenAddress(addr string) {
	p.listenAddr = addr
}

// Use attaches the middleware to the engine and, when a listen address is set,
// serves /metrics on it.
func (p *Prometheus) Use(r *gin.Engine) {
	r.Use(p.handlerFunc())
	if p.listenAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(p.listenAddr, mux); err != nil && p.log != nil {
				p.log.Errorf("metrics listener error: %v", err)
			}
		}()
	}
}

func (p *Prometheus) handlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := strconv.Itoa(c.Writer.Status())
		url := p.urlMapping(c)
		elapsed := float64(time.Since(start).Milliseconds())

		p.reqCnt.WithLabelValues(code, c.Request.Method, url).Inc()
		p.reqDur.WithLabelValues(code, c.Request.Method, url).Observe(elapsed)
	}
}
