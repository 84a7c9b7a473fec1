// Package train implements the gradient-descent training loop for Slate
// classifiers.
package train

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/schollz/progressbar/v3"

	"github.com/slate-ml/slate/internal/checkpoint"
	"github.com/slate-ml/slate/internal/dataset"
	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/optim"
	"github.com/slate-ml/slate/internal/tensor"
)

// Config configures a training run.
type Config struct {
	Epochs    int   // Number of passes over the dataset (default: 1)
	BatchSize int   // Mini-batch size (default: 32)
	Seed      int64 // Seed for batch shuffling

	// CheckpointPath, when non-empty, receives a checkpoint (model
	// parameters, optimizer state, training meta) after every epoch.
	// Each save fully replaces the previous file.
	CheckpointPath string

	// Output receives progress display; nil defaults to io.Discard so
	// tests and library callers stay quiet.
	Output io.Writer
}

// History records per-epoch training statistics.
type History struct {
	Loss     []float32 // Mean training loss per epoch
	Accuracy []float32 // Training accuracy per epoch
}

// Trainer drives the forward/backward/step loop: compute the loss, push
// its gradient back through the model, let the optimizer update the
// parameters, repeat.
type Trainer struct {
	model     *nn.MLP
	optimizer optim.Optimizer
	criterion *nn.CrossEntropyLoss
	cfg       Config
}

// New creates a Trainer for the given model and optimizer.
func New(model *nn.MLP, optimizer optim.Optimizer, cfg Config) *Trainer {
	if cfg.Epochs <= 0 {
		cfg.Epochs = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	return &Trainer{
		model:     model,
		optimizer: optimizer,
		criterion: nn.NewCrossEntropyLoss(),
		cfg:       cfg,
	}
}

// Fit trains the model on the dataset and returns per-epoch statistics.
//
// When checkpointing is configured, an epoch whose checkpoint cannot be
// written aborts the run with the error; training progress up to that
// point is reflected in the model but the returned history covers only
// completed epochs.
func (t *Trainer) Fit(ds *dataset.Dataset) (*History, error) {
	if ds.Features() != t.model.InputSize() {
		return nil, fmt.Errorf("dataset has %d features but model expects %d",
			ds.Features(), t.model.InputSize())
	}
	if ds.Classes() > t.model.OutputSize() {
		return nil, fmt.Errorf("dataset has %d classes but model has %d outputs",
			ds.Classes(), t.model.OutputSize())
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed)) //nolint:gosec // batch shuffling, not security
	history := &History{}
	var step int64

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		batches := ds.Batches(t.cfg.BatchSize, rng)

		bar := progressbar.NewOptions(len(batches),
			progressbar.OptionSetWriter(t.cfg.Output),
			progressbar.OptionSetDescription(fmt.Sprintf("epoch %d/%d", epoch, t.cfg.Epochs)),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		var epochLoss float64
		correct := 0
		for _, batch := range batches {
			logits := t.model.Forward(batch.Inputs)
			loss := t.criterion.Forward(logits, batch.Labels)
			t.model.Backward(t.criterion.Backward())
			t.optimizer.Step()
			t.optimizer.ZeroGrad()

			epochLoss += float64(loss) * float64(len(batch.Labels))
			correct += countCorrect(logits, batch.Labels)
			step++
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		meanLoss := float32(epochLoss / float64(ds.Len()))
		accuracy := float32(correct) / float32(ds.Len())
		history.Loss = append(history.Loss, meanLoss)
		history.Accuracy = append(history.Accuracy, accuracy)
		fmt.Fprintf(t.cfg.Output, "epoch %d/%d: loss=%.4f accuracy=%.2f%%\n",
			epoch, t.cfg.Epochs, meanLoss, accuracy*100)

		if t.cfg.CheckpointPath != "" {
			if err := t.saveCheckpoint(epoch, step, meanLoss); err != nil {
				return history, fmt.Errorf("failed to checkpoint epoch %d: %w", epoch, err)
			}
		}
	}

	return history, nil
}

// saveCheckpoint snapshots the model and optimizer after an epoch.
func (t *Trainer) saveCheckpoint(epoch int, step int64, loss float32) error {
	rec := checkpoint.Snapshot(t.model)
	rec.OptState = t.optimizer.StateDict()
	rec.Training = &checkpoint.TrainingMeta{
		Epoch:         epoch,
		Step:          step,
		Loss:          float64(loss),
		OptimizerType: t.optimizer.Name(),
		OptimizerConfig: map[string]any{
			"lr": t.optimizer.GetLR(),
		},
	}
	return checkpoint.Save(t.cfg.CheckpointPath, rec)
}

// Evaluate computes mean cross-entropy loss and accuracy of a model over a
// dataset, without updating any parameters.
func Evaluate(model *nn.MLP, ds *dataset.Dataset, batchSize int) (loss, accuracy float32) {
	if batchSize <= 0 {
		batchSize = 256
	}
	criterion := nn.NewCrossEntropyLoss()

	var total float64
	correct := 0
	for _, batch := range ds.Batches(batchSize, nil) {
		logits := model.Forward(batch.Inputs)
		total += float64(criterion.Forward(logits, batch.Labels)) * float64(len(batch.Labels))
		correct += countCorrect(logits, batch.Labels)
	}
	return float32(total / float64(ds.Len())), float32(correct) / float32(ds.Len())
}

// countCorrect counts batch samples whose argmax logit matches the label.
func countCorrect(logits *tensor.Dense, labels []int) int {
	shape := logits.Shape()
	batch, classes := shape[0], shape[1]
	data := logits.AsFloat32()

	correct := 0
	for i := 0; i < batch; i++ {
		row := data[i*classes : (i+1)*classes]
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		if best == labels[i] {
			correct++
		}
	}
	return correct
}
