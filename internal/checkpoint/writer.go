package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/slate-ml/slate/internal/tensor"
)

// SaveOptions configures Save behavior.
type SaveOptions struct {
	// HalfPrecision stores parameter tensors as float16 on disk. They are
	// converted back to float32 on load. Roughly halves file size at the
	// cost of precision.
	HalfPrecision bool
}

// Save validates the record and writes it to path as a .slate file.
//
// The write is atomic: the record is assembled in a temporary file in the
// destination directory, synced, and renamed over path. An existing file
// at path is replaced; on any error nothing at path changes.
//
// Fails with a *ValidationError (and writes nothing) if the record's
// parameter shapes are inconsistent with its architecture.
func Save(path string, rec *Record) error {
	return SaveWithOptions(path, rec, SaveOptions{})
}

// SaveWithOptions is Save with explicit options.
func SaveWithOptions(path string, rec *Record, opts SaveOptions) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	payload, err := encodeRecord(rec, opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".slate-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// encodeRecord serializes the record into the full .slate byte layout.
func encodeRecord(rec *Record, opts SaveOptions) ([]byte, error) {
	// Deterministic tensor order: sorted model parameters, then sorted
	// optimizer state. Byte-identical files for identical records make
	// saves idempotent.
	type entry struct {
		name string
		data *tensor.Dense
	}
	entries := make([]entry, 0, len(rec.Params)+len(rec.OptState))
	for name, t := range rec.Params {
		entries = append(entries, entry{name, t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	optNames := make([]string, 0, len(rec.OptState))
	for name := range rec.OptState {
		optNames = append(optNames, name)
	}
	sort.Strings(optNames)
	for _, name := range optNames {
		entries = append(entries, entry{optimizerPrefix + name, rec.OptState[name]})
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	header := Header{
		FormatVersion: FormatVersion,
		SlateVersion:  slateVersion,
		CreatedAt:     createdAt,
		Arch:          &rec.Arch,
		Tensors:       make([]TensorMeta, 0, len(entries)),
		Metadata:      rec.Meta,
		Training:      rec.Training,
	}

	var dataBuf []byte
	var offset int64
	for _, e := range entries {
		stored := e.data
		if opts.HalfPrecision && stored.DType() == tensor.Float32 {
			converted, err := stored.Convert(tensor.Float16)
			if err != nil {
				return nil, fmt.Errorf("failed to convert %s to float16: %w", e.name, err)
			}
			stored = converted
		}

		size := int64(stored.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   e.name,
			DType:  stored.DType().String(),
			Shape:  []int(stored.Shape()),
			Offset: offset,
			Size:   size,
		})
		dataBuf = append(dataBuf, stored.Data()...)
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}

	checksum := computeChecksum(dataBuf)

	flags := uint32(0)
	if opts.HalfPrecision {
		flags |= FlagHalfPrecision
	}
	if len(rec.OptState) > 0 {
		flags |= FlagHasOptimizer
	}
	if len(rec.Meta) > 0 {
		flags |= FlagHasMetadata
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	// 0x0C-0x0F reserved, zero
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(dataBuf)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	payload := make([]byte, 0, FixedHeaderSize+len(headerJSON)+HeaderAlignment+len(dataBuf))
	payload = append(payload, fixed...)
	payload = append(payload, headerJSON...)

	currentPos := int64(FixedHeaderSize) + int64(len(headerJSON))
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	payload = append(payload, make([]byte, padding)...)
	payload = append(payload, dataBuf...)

	return payload, nil
}
