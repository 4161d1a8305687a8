package tree

import "fmt"

// Option configures a DecisionTreeClassifier or DecisionTreeRegressor.
type Option func(*config)

type config struct {
	Params
	randomState int64
}

func defaultConfig(criterion string) config {
	return config{
		Params: Params{
			Criterion:       criterion,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
		randomState: -1,
	}
}

// WithCriterion sets the split quality measure.
func WithCriterion(criterion string) Option {
	return func(c *config) { c.Criterion = criterion }
}

// WithMaxDepth limits the depth of the tree; 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(c *config) { c.MaxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of samples needed to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(c *config) { c.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(c *config) { c.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features drawn at each split.
func WithMaxFeatures(n int) Option {
	return func(c *config) { c.MaxFeatures = n }
}

// WithRandomState seeds the feature sampler.
func WithRandomState(seed int64) Option {
	return func(c *config) { c.randomState = seed }
}

// GetParams returns the hyperparameters in scikit-learn naming.
func (c *config) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         c.Criterion,
		"max_depth":         c.MaxDepth,
		"min_samples_split": c.MinSamplesSplit,
		"min_samples_leaf":  c.MinSamplesLeaf,
		"max_features":      c.MaxFeatures,
		"random_state":      c.randomState,
	}
}

// SetParams updates hyperparameters by scikit-learn name.
func (c *config) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var ok bool
		switch key {
		case "criterion":
			c.Criterion, ok = value.(string)
		case "max_depth":
			c.MaxDepth, ok = value.(int)
		case "min_samples_split":
			c.MinSamplesSplit, ok = value.(int)
		case "min_samples_leaf":
			c.MinSamplesLeaf, ok = value.(int)
		case "max_features":
			c.MaxFeatures, ok = value.(int)
		case "random_state":
			c.randomState, ok = value.(int64)
		default:
			return fmt.Errorf("unknown parameter: %s", key)
		}
		if !ok {
			return fmt.Errorf("parameter %s has wrong type %T", key, value)
		}
	}
	return nil
}
