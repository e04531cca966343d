// Package attributes decodes the key/value metadata a freshly created server
// publishes about its own installation before its management API is reachable.
//
// Providers expose this side channel in different shapes:
//
//   - DigitalOcean: droplet tags of the form "kv:<key>:<hex value>"
//   - Hetzner Cloud: server labels "outline-kv/<key>.<n>" holding hex chunks
//   - GCP: guest attributes under the "outline/" namespace, already key/value
//
// All of them decode to a Snapshot. Keys are matched case-insensitively and a
// Snapshot is never mutated after construction; every poll produces a new one.
package attributes
