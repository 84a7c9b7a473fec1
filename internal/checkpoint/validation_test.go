package checkpoint

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTensorName(t *testing.T) {
	valid := []string{"fc0.weight", "fc10.bias", "optimizer.velocity.0", "t"}
	for _, name := range valid {
		assert.NoError(t, validateTensorName(name), name)
	}

	invalid := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"dotdot", "../etc/passwd"},
		{"slash", "weights/fc0"},
		{"backslash", "weights\\fc0"},
		{"null byte", "fc0\x00.weight"},
		{"too long", strings.Repeat("a", MaxTensorNameLen+1)},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTensorName(tt.value)
			assert.ErrorIs(t, err, ErrInvalidTensorName)
		})
	}
}

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantErr  error
	}{
		{
			name: "valid layout",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 16},
				{Name: "b", Offset: 16, Size: 8},
			},
			dataSize: 24,
		},
		{
			name: "gap between tensors is fine",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 8},
				{Name: "b", Offset: 64, Size: 8},
			},
			dataSize: 72,
		},
		{
			name: "overlap",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 16},
				{Name: "b", Offset: 8, Size: 8},
			},
			dataSize: 24,
			wantErr:  ErrOffsetOverlap,
		},
		{
			name: "out of bounds",
			tensors: []TensorMeta{
				{Name: "a", Offset: 16, Size: 16},
			},
			dataSize: 24,
			wantErr:  ErrOutOfBounds,
		},
		{
			name: "negative offset",
			tensors: []TensorMeta{
				{Name: "a", Offset: -8, Size: 8},
			},
			dataSize: 24,
			wantErr:  ErrOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestValidateHeader(t *testing.T) {
	arch := &Architecture{InputSize: 4, OutputSize: 2, HiddenSizes: []int{3}}

	good := &Header{
		Arch:    arch,
		Tensors: []TensorMeta{{Name: "fc0.weight", Offset: 0, Size: 48}},
	}
	assert.NoError(t, validateHeader(good, 48))

	missing := &Header{Tensors: good.Tensors}
	assert.ErrorIs(t, validateHeader(missing, 48), ErrMissingField)

	empty := &Header{Arch: arch}
	assert.ErrorIs(t, validateHeader(empty, 48), ErrMissingField)

	badArch := &Header{
		Arch:    &Architecture{InputSize: -1, OutputSize: 2, HiddenSizes: []int{3}},
		Tensors: good.Tensors,
	}
	assert.Error(t, validateHeader(badArch, 48))
}

func TestChecksum(t *testing.T) {
	data := []byte("slate tensor data")
	sum := computeChecksum(data)

	assert.NoError(t, validateChecksum(sum, sum))

	var wrong [32]byte
	assert.ErrorIs(t, validateChecksum(sum, wrong), ErrChecksumMismatch)
}
