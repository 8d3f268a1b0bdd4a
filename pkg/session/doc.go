/*
Package session keeps documents open across requests and serializes access to
each of them.

Hosts such as the HTTP and MCP surfaces receive edit requests for many
documents concurrently. The Manager opens a document on first use, then runs
every operation on it under a per-document lock. With a DistributedLocker,
the same document is also guarded across replicas.
*/
package session
