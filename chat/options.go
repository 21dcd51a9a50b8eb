package chat

// Options are the portable model options every backend understands.
// Nil fields mean "not set" so that layers can be merged.
type Options struct {
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty" yaml:"stop,omitempty"`
}

// Merge returns a copy of o where every field set in override wins.
func (o Options) Merge(override *Options) Options {
	merged := o.Clone()
	if override == nil {
		return merged
	}
	if override.Model != "" {
		merged.Model = override.Model
	}
	if override.Temperature != nil {
		v := *override.Temperature
		merged.Temperature = &v
	}
	if override.TopP != nil {
		v := *override.TopP
		merged.TopP = &v
	}
	if override.TopK != nil {
		v := *override.TopK
		merged.TopK = &v
	}
	if override.MaxTokens != nil {
		v := *override.MaxTokens
		merged.MaxTokens = &v
	}
	if len(override.Stop) > 0 {
		merged.Stop = append([]string(nil), override.Stop...)
	}
	return merged
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	c := Options{Model: o.Model}
	if o.Temperature != nil {
		v := *o.Temperature
		c.Temperature = &v
	}
	if o.TopP != nil {
		v := *o.TopP
		c.TopP = &v
	}
	if o.TopK != nil {
		v := *o.TopK
		c.TopK = &v
	}
	if o.MaxTokens != nil {
		v := *o.MaxTokens
		c.MaxTokens = &v
	}
	if o.Stop != nil {
		c.Stop = append([]string(nil), o.Stop...)
	}
	return c
}

// IsZero reports whether no option is set.
func (o Options) IsZero() bool {
	return o.Model == "" && o.Temperature == nil && o.TopP == nil &&
		o.TopK == nil && o.MaxTokens == nil && len(o.Stop) == 0
}
