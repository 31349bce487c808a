// Package broadcast fans newly persisted text records out to every connected
// viewer. A single actor goroutine owns the connection set; per-connection
// writer goroutines decouple slow viewers from the rest.
package broadcast
