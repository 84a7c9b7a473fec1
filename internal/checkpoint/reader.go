package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/slate-ml/slate/internal/tensor"
)

// LoadOptions configures Load behavior.
type LoadOptions struct {
	// SkipChecksum disables checksum validation of the data section.
	// Faster but unsafe with untrusted files.
	SkipChecksum bool
}

// Load reads a previously saved record from path without modifying it.
//
// A missing file yields an error satisfying errors.Is(err, ErrNotFound).
// A file that cannot be parsed, fails its checksum, or is missing required
// fields yields a *CorruptRecordError wrapping a detail error such as
// ErrInvalidMagic or ErrChecksumMismatch.
func Load(path string) (*Record, error) {
	return LoadWithOptions(path, LoadOptions{})
}

// LoadWithOptions is Load with explicit options.
func LoadWithOptions(path string, opts LoadOptions) (*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer file.Close()

	rec, err := readRecord(file, opts)
	if err != nil {
		var corrupt *CorruptRecordError
		if errors.As(err, &corrupt) {
			return nil, err
		}
		return nil, &CorruptRecordError{Path: path, Err: err}
	}
	return rec, nil
}

// readRecord parses a full .slate record from r.
func readRecord(r io.Reader, opts LoadOptions) (*Record, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixed[0:4]) != MagicBytes {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, string(fixed[0:4]))
	}

	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var checksum [32]byte
	copy(checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	if err := validateHeader(&header, int64(dataSize)); err != nil {
		return nil, err
	}

	// Skip alignment padding between header and data.
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if !opts.SkipChecksum {
		if err := validateChecksum(computeChecksum(data), checksum); err != nil {
			return nil, err
		}
	}

	rec := &Record{
		Arch:      *header.Arch,
		Params:    make(map[string]*tensor.Dense),
		Meta:      header.Metadata,
		Training:  header.Training,
		CreatedAt: header.CreatedAt,
	}

	for _, meta := range header.Tensors {
		t, err := decodeTensor(meta, data)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(meta.Name, optimizerPrefix) {
			if rec.OptState == nil {
				rec.OptState = make(map[string]*tensor.Dense)
			}
			rec.OptState[strings.TrimPrefix(meta.Name, optimizerPrefix)] = t
		} else {
			rec.Params[meta.Name] = t
		}
	}

	// A parseable file whose parameters contradict its own architecture is
	// still a corrupt record.
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentRecord, err)
	}

	return rec, nil
}

// decodeTensor materializes one tensor from the data section, converting
// half-precision storage back to float32.
func decodeTensor(meta TensorMeta, data []byte) (*tensor.Dense, error) {
	dtype, ok := tensor.ParseDataType(meta.DType)
	if !ok {
		return nil, fmt.Errorf("tensor %q: unsupported dtype %q", meta.Name, meta.DType)
	}

	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor %q: invalid shape: %w", meta.Name, err)
	}
	if int64(shape.NumElements()*dtype.Size()) != meta.Size {
		return nil, fmt.Errorf("tensor %q: declared size %d does not match shape %v of %s",
			meta.Name, meta.Size, shape, dtype)
	}

	t, err := tensor.NewDense(shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
	}
	copy(t.Data(), data[meta.Offset:meta.Offset+meta.Size])

	if dtype == tensor.Float16 {
		return t.Convert(tensor.Float32)
	}
	return t, nil
}

// Inspect reads only the header of a .slate file, without materializing
// tensor data. Useful for tooling that lists checkpoint contents.
func Inspect(path string) (*Header, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer file.Close()

	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(file, fixed); err != nil {
		return nil, &CorruptRecordError{Path: path, Err: fmt.Errorf("failed to read fixed header: %w", err)}
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, &CorruptRecordError{Path: path, Err: fmt.Errorf("%w: got %q", ErrInvalidMagic, string(fixed[0:4]))}
	}
	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return nil, &CorruptRecordError{Path: path, Err: fmt.Errorf("%w: got %d", ErrUnsupportedVersion, version)}
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return nil, &CorruptRecordError{Path: path, Err: fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)}
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, &CorruptRecordError{Path: path, Err: fmt.Errorf("failed to read header: %w", err)}
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, &CorruptRecordError{Path: path, Err: fmt.Errorf("failed to parse header JSON: %w", err)}
	}
	if header.Arch == nil {
		return nil, &CorruptRecordError{Path: path, Err: fmt.Errorf("%w: architecture", ErrMissingField)}
	}
	return &header, nil
}
