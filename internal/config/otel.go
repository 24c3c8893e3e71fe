package config

// Otel configures trace export. An empty CollectorURL keeps tracing local:
// spans are created and propagated but never exported.
type Otel struct {
	ServiceName    string  `env:"OTEL_SERVICE_NAME" envDefault:"game-store"`
	ServiceVersion string  `env:"OTEL_SERVICE_VERSION"`
	CollectorURL   string  `env:"OTEL_COLLECTOR_URL"`
	Insecure       bool    `env:"OTEL_INSECURE"`
	TraceIDRatio   float64 `env:"OTEL_TRACE_ID_RATIO" envDefault:"0.1"`
	CollectorAuth  string  `env:"OTEL_COLLECTOR_AUTH"`

	K8sPodName   string `env:"K8S_POD_NAME"`
	K8sNamespace string `env:"K8S_NAMESPACE"`
}
