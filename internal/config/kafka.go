package config

// Kafka configures the outbox producer and the domain event consumer.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"game-store"`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"game-store"`
}
