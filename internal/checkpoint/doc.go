// Package checkpoint implements the native .slate format for persisting
// trained classifiers and reconstructing them later.
//
// A .slate file is a single self-describing record:
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00  Magic "SLTE"
//	    0x04  Version (uint32 LE)
//	    0x08  Flags (uint32 LE)
//	    0x0C  Reserved
//	    0x10  Header Size (uint64 LE)
//	    0x18  Data Size (uint64 LE)
//	    0x20  SHA-256 checksum of the data section (32 bytes)
//	  [Header: JSON metadata — architecture, tensor table, training meta]
//	  [Tensor data: raw little-endian bytes, 64-byte aligned]
//
// The record combines the model architecture (input size, output size,
// hidden layer widths) with the full set of learned parameters, keyed by
// their qualified names ("fc0.weight", "fc0.bias", ...). Optimizer buffers
// may ride along under an "optimizer." prefix for training resumption.
//
// Records are written atomically (temp file plus rename) and are immutable
// once written: loading never modifies the file, and a new save fully
// replaces the prior record.
//
// Example usage:
//
//	// Save a trained model
//	rec := checkpoint.Snapshot(model)
//	if err := checkpoint.Save("model.slate", rec); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load and reconstruct
//	rec, err := checkpoint.Load("model.slate")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, err := checkpoint.Reconstruct(rec, factory)
package checkpoint
