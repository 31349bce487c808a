// Package domain holds the core types shared across the service: the persisted
// text record and the repository contract the storage adapter implements.
package domain
