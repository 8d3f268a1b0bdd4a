/*
Package observability provides Prometheus collectors for the node graph core.

The editor counts processed requests by kind and outcome; the executor records
evaluation latency, type mismatches and stale results discarded by generation
checks. All recording methods are safe to call on a nil *Metrics, so components
work unchanged when metrics are not configured.
*/
package observability
