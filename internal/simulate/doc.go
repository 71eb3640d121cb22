// Package simulate writes a synthetic order-pipeline telemetry log so the
// collector can be demonstrated and soak-tested without the real producer.
package simulate
