package maxima

type options struct {
	logger  *Logger
	metrics MetricsCollector
}

// Option configures FunctionMaxima constructor behavior.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
}

// WithLogger configures the logger used for transaction logging.
//
// If nil is passed, logging stays disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector configures the metrics collector notified after each
// operation.
//
// If nil is passed, metrics collection stays disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}
