// Copyright 2025 Slate ML Toolkit. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint provides the public API for saving, loading, and
// reconstructing Slate model checkpoints in the .slate binary format.
//
// Save and load a snapshot:
//
//	rec := checkpoint.Snapshot(model)
//	if err := checkpoint.Save("model.slate", rec); err != nil {
//		log.Fatal(err)
//	}
//
//	rec, err := checkpoint.Load("model.slate")
//	if err != nil {
//		log.Fatal(err)
//	}
//	model, err := checkpoint.Reconstruct(rec, checkpoint.MLPFactory)
package checkpoint

import (
	"github.com/slate-ml/slate/internal/checkpoint"
	"github.com/slate-ml/slate/internal/nn"
)

// Architecture describes a fully connected classifier.
type Architecture = checkpoint.Architecture

// Record is a durable model checkpoint: architecture plus named parameter
// tensors, optionally with optimizer state and training metadata.
type Record = checkpoint.Record

// TrainingMeta carries training-resumption state.
type TrainingMeta = checkpoint.TrainingMeta

// TensorMeta describes one tensor in a .slate file.
type TensorMeta = checkpoint.TensorMeta

// Header is the JSON header of a .slate file.
type Header = checkpoint.Header

// Model is the surface Reconstruct needs from a freshly built model.
type Model = checkpoint.Model

// Factory builds a freshly initialized model for an architecture.
type Factory = checkpoint.Factory

// SaveOptions configures Save behavior.
type SaveOptions = checkpoint.SaveOptions

// LoadOptions configures Load behavior.
type LoadOptions = checkpoint.LoadOptions

// Error types.
type (
	ValidationError    = checkpoint.ValidationError
	CorruptRecordError = checkpoint.CorruptRecordError
	ShapeMismatchError = checkpoint.ShapeMismatchError
	Mismatch           = checkpoint.Mismatch
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotFound           = checkpoint.ErrNotFound
	ErrInvalidMagic       = checkpoint.ErrInvalidMagic
	ErrUnsupportedVersion = checkpoint.ErrUnsupportedVersion
	ErrChecksumMismatch   = checkpoint.ErrChecksumMismatch
)

// Snapshot captures the current state of a classifier as a Record.
func Snapshot(m *nn.MLP) *Record {
	return checkpoint.Snapshot(m)
}

// Save atomically writes a record to path, replacing any existing file.
func Save(path string, rec *Record) error {
	return checkpoint.Save(path, rec)
}

// SaveWithOptions is Save with explicit options.
func SaveWithOptions(path string, rec *Record, opts SaveOptions) error {
	return checkpoint.SaveWithOptions(path, rec, opts)
}

// Load reads a previously saved record from path without modifying it.
func Load(path string) (*Record, error) {
	return checkpoint.Load(path)
}

// LoadWithOptions is Load with explicit options.
func LoadWithOptions(path string, opts LoadOptions) (*Record, error) {
	return checkpoint.LoadWithOptions(path, opts)
}

// Inspect reads only the header of a .slate file.
func Inspect(path string) (*Header, error) {
	return checkpoint.Inspect(path)
}

// Reconstruct builds a model for the record's architecture and applies the
// record's parameters with strict structural-equality checking.
func Reconstruct(rec *Record, factory Factory) (Model, error) {
	return checkpoint.Reconstruct(rec, factory)
}

// MLPFactory is the default Factory, producing an *nn.MLP.
func MLPFactory(arch Architecture) (Model, error) {
	return checkpoint.MLPFactory(arch)
}
