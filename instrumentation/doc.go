// Package instrumentation provides OpenTelemetry instrumentation for the
// authorization server library.
//
// It exposes metric instruments and tracers for the server lifecycle,
// token issuance, and storage layers. When disabled (or left
// unconfigured) all providers are no-ops with zero overhead.
//
// # Quick Start
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "my-auth-service",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
//	server.SetInstrumentation(inst)
//
// # Available Metrics
//
// Server lifecycle:
//   - oauth.tokens.issued{grant_type} - tokens issued
//   - oauth.tokens.revoked{token_type_hint} - tokens revoked
//   - oauth.auth.failures{reason} - client authentication failures
//   - oauth.token.issuance.duration{grant_type} - issuance latency (ms)
//
// Storage:
//   - oauth.storage.tokens.count - live token records
//   - oauth.storage.clients.count - registered clients
//   - oauth.storage.codes.count - pending authorization codes
//
// Metric values never contain token values, client secrets, or other
// credentials; only metadata such as grant types and counts is recorded.
package instrumentation
