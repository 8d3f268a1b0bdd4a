/*
Package editor implements invariant-preserving edit operations on node networks.

A Handler applies one Request at a time to the active network, found by following
its NestedPath from the root. Operations validate their preconditions first and
either mutate the network or return an error without touching it. Instead of
recursing, an operation returns follow-up requests; the Dispatcher queues them
behind the current request and drains the queue in FIFO order.

Structural edits emit a StartTransaction response so an external history
collaborator can group them. Every mutation bumps the network generation so that
evaluations dispatched earlier can be recognized as stale.
*/
package editor
