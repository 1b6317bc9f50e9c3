package redis

import (
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// attrDBSystemRedis marks spans of Redis operations
var attrDBSystemRedis = semconv.DBSystemRedis
