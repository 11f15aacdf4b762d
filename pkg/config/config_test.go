package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Orders.LockWait)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, EventsNone, cfg.Events.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("ORDERS_LOCK_WAIT", "750")
	v.Set("ORDERS_TIMEZONE", "America/Bogota")
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("EVENTS_DRIVER", "kafka")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("DB_PORT", "6543")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Orders.LockWait)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, 6543, cfg.DB.Port)

	loc, err := cfg.Orders.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", loc.String())
}

func TestFromViper_Invalidos(t *testing.T) {
	cases := map[string]map[string]string{
		"storage":  {"STORAGE_DRIVER": "mongo"},
		"events":   {"EVENTS_DRIVER": "nats"},
		"lockwait": {"ORDERS_LOCK_WAIT": "pronto"},
		"cero":     {"ORDERS_LOCK_WAIT": "0s"},
		"zona":     {"ORDERS_TIMEZONE": "Marte/Olympus"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range values {
				v.Set(k, val)
			}
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "orders", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/orders?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
