package config

type Catalog struct {
	LowStockThreshold int `env:"CATALOG_LOW_STOCK_THRESHOLD" envDefault:"5"`
}
