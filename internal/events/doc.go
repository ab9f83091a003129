// Package events provides the broadcast side of the task board.
//
// Services emit Events through the EventEmitter interface without knowing who
// is listening. The Registry implementation keeps an explicit map of connected
// clients and fans each event out to a snapshot of that membership. Delivery is
// best-effort: a client that cannot accept a message misses it, and nothing is
// retried or replayed.
package events
