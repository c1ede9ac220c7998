// Package core contains the Airtable client: configuration, record and
// comment operations, offset pagination, and the rate-limit retry loop.
// Adapters (transport, stores, queues) depend on this package; core only
// depends on their contracts.
package core
