// Package main provides the Slate command-line interface for training,
// evaluating, and inspecting feed-forward classifiers.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/slate-ml/slate/internal/checkpoint"
	"github.com/slate-ml/slate/internal/dataset"
	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/optim"
	"github.com/slate-ml/slate/internal/train"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "eval":
		err = runEval(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "version":
		fmt.Printf("Slate %s\n", version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Slate - feed-forward classifiers with durable checkpoints")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  train      Train a classifier and save a checkpoint")
	fmt.Println("  eval       Evaluate a checkpoint against a dataset")
	fmt.Println("  inspect    Show a checkpoint's architecture and tensors")
	fmt.Println("  version    Show version")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	images := fs.String("images", "", "IDX image file (omit for a synthetic dataset)")
	labels := fs.String("labels", "", "IDX label file")
	classes := fs.Int("classes", 10, "number of classes")
	hidden := fs.String("hidden", "128,64", "comma-separated hidden layer sizes")
	epochs := fs.Int("epochs", 5, "training epochs")
	batch := fs.Int("batch", 32, "mini-batch size")
	lr := fs.Float64("lr", 0.01, "learning rate")
	momentum := fs.Float64("momentum", 0.9, "SGD momentum (ignored with -adam)")
	adam := fs.Bool("adam", false, "use Adam instead of SGD")
	seed := fs.Int64("seed", 42, "random seed for init and shuffling")
	out := fs.String("out", "model.slate", "checkpoint output path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hiddenSizes, err := parseSizes(*hidden)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // experiment reproducibility

	ds, err := loadDataset(*images, *labels, *classes, rng)
	if err != nil {
		return err
	}

	model, err := nn.NewMLP(nn.MLPConfig{
		InputSize:   ds.Features(),
		OutputSize:  ds.Classes(),
		HiddenSizes: hiddenSizes,
		Rand:        rng,
	})
	if err != nil {
		return err
	}

	var optimizer optim.Optimizer
	if *adam {
		optimizer = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: float32(*lr)})
	} else {
		optimizer = optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       float32(*lr),
			Momentum: float32(*momentum),
		})
	}

	fmt.Printf("training %d -> %v -> %d (%s, lr=%g) on %d samples\n",
		ds.Features(), hiddenSizes, ds.Classes(), optimizer.Name(), *lr, ds.Len())

	trainer := train.New(model, optimizer, train.Config{
		Epochs:         *epochs,
		BatchSize:      *batch,
		Seed:           *seed,
		CheckpointPath: *out,
		Output:         os.Stdout,
	})
	if _, err := trainer.Fit(ds); err != nil {
		return err
	}

	fmt.Printf("checkpoint written to %s\n", *out)
	return nil
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	model := fs.String("model", "model.slate", "checkpoint to evaluate")
	images := fs.String("images", "", "IDX image file (omit for a synthetic dataset)")
	labels := fs.String("labels", "", "IDX label file")
	classes := fs.Int("classes", 10, "number of classes")
	batch := fs.Int("batch", 256, "evaluation batch size")
	seed := fs.Int64("seed", 42, "random seed for the synthetic dataset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rec, err := checkpoint.Load(*model)
	if err != nil {
		return err
	}
	reconstructed, err := checkpoint.Reconstruct(rec, checkpoint.MLPFactory)
	if err != nil {
		return err
	}
	mlp := reconstructed.(*nn.MLP)

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // experiment reproducibility
	ds, err := loadDataset(*images, *labels, *classes, rng)
	if err != nil {
		return err
	}

	loss, accuracy := train.Evaluate(mlp, ds, *batch)
	fmt.Printf("loss=%.4f accuracy=%.2f%% (%d samples)\n", loss, accuracy*100, ds.Len())
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: slate inspect <file.slate>")
	}
	path := fs.Arg(0)

	header, err := checkpoint.Inspect(path)
	if err != nil {
		return err
	}

	fmt.Printf("slate checkpoint %s (format v%d, written by %s)\n",
		path, header.FormatVersion, header.SlateVersion)
	fmt.Printf("created: %s\n", header.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("architecture: %d -> %v -> %d\n",
		header.Arch.InputSize, header.Arch.HiddenSizes, header.Arch.OutputSize)
	if header.Training != nil {
		fmt.Printf("training: epoch %d, step %d, loss %.4f, optimizer %s\n",
			header.Training.Epoch, header.Training.Step, header.Training.Loss,
			header.Training.OptimizerType)
	}

	tensors := append([]checkpoint.TensorMeta(nil), header.Tensors...)
	sort.Slice(tensors, func(i, j int) bool { return tensors[i].Name < tensors[j].Name })

	var totalBytes uint64
	fmt.Printf("\n%-24s %-10s %-16s %s\n", "NAME", "DTYPE", "SHAPE", "SIZE")
	for _, t := range tensors {
		fmt.Printf("%-24s %-10s %-16v %s\n", t.Name, t.DType, t.Shape, humanize.IBytes(uint64(t.Size)))
		totalBytes += uint64(t.Size)
	}
	fmt.Printf("\n%d tensors, %s total\n", len(tensors), humanize.IBytes(totalBytes))
	return nil
}

// loadDataset loads the IDX pair when provided, or generates a small
// synthetic dataset so every command works out of the box.
func loadDataset(images, labels string, classes int, rng *rand.Rand) (*dataset.Dataset, error) {
	if images != "" || labels != "" {
		if images == "" || labels == "" {
			return nil, fmt.Errorf("both -images and -labels are required for IDX data")
		}
		return dataset.FromIDX(images, labels, classes)
	}
	return dataset.Synthetic(2048, 16, classes, rng)
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid hidden size %q", p)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
