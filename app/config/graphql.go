package config

import (
	"time"

	"github.com/spf13/viper"
)

// GraphQL backend config struct
type GraphQL struct {
	Endpoint string
	// Timeout bounds each request; zero means none.
	Timeout            time.Duration
	OptimisticComments bool
	Breaker            *Breaker
}

// Breaker circuit breaker config struct
type Breaker struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func getGraphQLConfig(v *viper.Viper) *GraphQL {
	return &GraphQL{
		Endpoint:           getStringOrDefault(v, "graphql.endpoint", "http://localhost:4000/graphql"),
		Timeout:            getDurationOrDefault(v, "graphql.timeout", 0),
		OptimisticComments: getBoolOrDefault(v, "graphql.optimistic_comments", false),
		Breaker: &Breaker{
			MaxRequests:  getUint32OrDefault(v, "graphql.breaker.max_requests", 100),
			Interval:     getDurationOrDefault(v, "graphql.breaker.interval", 5*time.Second),
			Timeout:      getDurationOrDefault(v, "graphql.breaker.timeout", 3*time.Second),
			MinRequests:  getUint32OrDefault(v, "graphql.breaker.min_requests", 3),
			FailureRatio: getFloat64OrDefault(v, "graphql.breaker.failure_ratio", 0.6),
		},
	}
}
