// Package resource provides memory accounting for pools that are
// materialized into owned buffers instead of being memory mapped.
// Mapped pools cost nothing here; the kernel pages them on demand.
package resource
