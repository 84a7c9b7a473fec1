package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/slate-ml/slate/internal/tensor"
)

// IDX magic numbers (MNIST-style files).
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// ReadIDXImages reads an IDX image file.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// Returns one byte slice per image.
func ReadIDXImages(r io.Reader) ([][]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxImagesMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, idxImagesMagic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numImages); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numRows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return nil, err
	}

	imageSize := int(numRows * numCols)
	images := make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
	}
	return images, nil
}

// ReadIDXLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxLabelsMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, idxLabelsMagic)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}

// FromIDX loads an image/label file pair into a Dataset.
//
// Pixel values are normalized to [0, 1]. numClasses is the label range
// (10 for MNIST digits).
func FromIDX(imagesPath, labelsPath string, numClasses int) (*Dataset, error) {
	imagesFile, err := os.Open(imagesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open images: %w", err)
	}
	defer imagesFile.Close()

	labelsFile, err := os.Open(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer labelsFile.Close()

	images, err := ReadIDXImages(imagesFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imagesPath, err)
	}
	rawLabels, err := ReadIDXLabels(labelsFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", labelsPath, err)
	}
	if len(images) != len(rawLabels) {
		return nil, fmt.Errorf("got %d images but %d labels", len(images), len(rawLabels))
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}

	features := len(images[0])
	inputs := tensor.Zeros(tensor.Shape{len(images), features})
	data := inputs.AsFloat32()
	labels := make([]int, len(rawLabels))
	for i, img := range images {
		row := data[i*features : (i+1)*features]
		for j, px := range img {
			row[j] = float32(px) / 255.0
		}
		labels[i] = int(rawLabels[i])
	}

	return New(inputs, labels, numClasses)
}
