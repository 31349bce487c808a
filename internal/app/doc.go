// Package app wires the record store and the broadcaster into the service's
// two operations: submit a text (persist, then push) and list all texts.
package app
