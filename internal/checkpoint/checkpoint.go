package checkpoint

import (
	"fmt"
	"sort"
	"time"

	"github.com/slate-ml/slate/internal/nn"
	"github.com/slate-ml/slate/internal/tensor"
)

// Record is the durable checkpoint entity: the model architecture plus the
// full mapping of qualified parameter names to learned tensors.
//
// A Record may additionally carry optimizer buffers (for training
// resumption), free-form string metadata, and training progress. The
// architecture and parameters are the contract; everything else is
// advisory.
type Record struct {
	Arch      Architecture
	Params    map[string]*tensor.Dense
	OptState  map[string]*tensor.Dense // Optional optimizer buffers, stored under "optimizer."
	Meta      map[string]string
	Training  *TrainingMeta
	CreatedAt time.Time
}

// Snapshot captures the current state of a classifier as a Record.
//
// Parameter tensors are deep-copied so that continued training does not
// mutate the snapshot.
func Snapshot(m *nn.MLP) *Record {
	params := make(map[string]*tensor.Dense)
	for name, t := range m.StateDict() {
		params[name] = t.Clone()
	}
	return &Record{
		Arch: Architecture{
			InputSize:   m.InputSize(),
			OutputSize:  m.OutputSize(),
			HiddenSizes: m.HiddenSizes(),
		},
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the record against the fixed layer-construction rule:
// the parameter key set must exactly match the architecture's expected
// set, and every tensor's shape must equal its expected shape. Returns a
// *ValidationError describing the first inconsistency.
func (r *Record) Validate() error {
	if err := r.Arch.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	expected := r.Arch.ParameterShapes()

	names := make([]string, 0, len(r.Params))
	for name := range r.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := r.Params[name]
		want, ok := expected[name]
		if !ok {
			return &ValidationError{
				Name:   name,
				Actual: t.Shape(),
				Reason: "not part of the declared architecture",
			}
		}
		if !t.Shape().Equal(want) {
			return &ValidationError{
				Name:     name,
				Expected: want,
				Actual:   t.Shape(),
				Reason:   "shape inconsistent with architecture",
			}
		}
		if t.DType() != tensor.Float32 {
			return &ValidationError{
				Name:   name,
				Reason: fmt.Sprintf("unsupported dtype %s (parameters are float32 in memory)", t.DType()),
			}
		}
	}

	missing := make([]string, 0)
	for name := range expected {
		if _, ok := r.Params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{
			Name:     missing[0],
			Expected: expected[missing[0]],
			Reason:   "missing from record",
		}
	}

	return nil
}

// Model is the surface Reconstruct needs from a freshly built model:
// exporting its parameter shapes and accepting a full parameter set.
// *nn.MLP satisfies it.
type Model interface {
	StateDict() map[string]*tensor.Dense
	LoadStateDict(stateDict map[string]*tensor.Dense) error
}

// Factory builds a freshly initialized, untrained model for the given
// architecture with a deterministic parameter-naming scheme.
type Factory func(arch Architecture) (Model, error)

// MLPFactory is the default Factory, producing an *nn.MLP.
func MLPFactory(arch Architecture) (Model, error) {
	return nn.NewMLP(nn.MLPConfig{
		InputSize:   arch.InputSize,
		OutputSize:  arch.OutputSize,
		HiddenSizes: arch.HiddenSizes,
	})
}

// Reconstruct builds a model for the record's architecture and applies the
// record's parameters onto it.
//
// The check is strict structural equality: the record's key set must equal
// the model's key set, and every shape must match. On any difference it
// returns a *ShapeMismatchError enumerating all mismatches (name, expected
// shape from the model, actual shape from the record) and the model is not
// partially updated.
func Reconstruct(rec *Record, factory Factory) (Model, error) {
	model, err := factory(rec.Arch)
	if err != nil {
		return nil, fmt.Errorf("model factory failed: %w", err)
	}

	modelDict := model.StateDict()

	var mismatches []Mismatch
	for name, t := range rec.Params {
		want, ok := modelDict[name]
		if !ok {
			mismatches = append(mismatches, Mismatch{Name: name, Actual: t.Shape()})
			continue
		}
		if !t.Shape().Equal(want.Shape()) {
			mismatches = append(mismatches, Mismatch{
				Name:     name,
				Expected: want.Shape(),
				Actual:   t.Shape(),
			})
		}
	}
	for name, want := range modelDict {
		if _, ok := rec.Params[name]; !ok {
			mismatches = append(mismatches, Mismatch{Name: name, Expected: want.Shape()})
		}
	}

	if len(mismatches) > 0 {
		sort.Slice(mismatches, func(i, j int) bool {
			return mismatches[i].Name < mismatches[j].Name
		})
		return nil, &ShapeMismatchError{Mismatches: mismatches}
	}

	if err := model.LoadStateDict(rec.Params); err != nil {
		return nil, fmt.Errorf("failed to apply parameters: %w", err)
	}
	return model, nil
}
