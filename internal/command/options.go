package command

import "sort"

// Option is a single user-supplied compressor option. Value is empty for
// bare flags such as -progressive.
type Option struct {
	Flag  string
	Value string
}

// Options is an ordered list of user options applied to every invocation
// of the selected compressor during a run.
type Options []Option

// OptionsFromMap builds Options from an unordered map, sorting by flag
// name so the resulting argument vector is deterministic.
func OptionsFromMap(m map[string]string) Options {
	opts := make(Options, 0, len(m))
	for flag, value := range m {
		opts = append(opts, Option{Flag: flag, Value: value})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Flag < opts[j].Flag })
	return opts
}

// args flattens the options into argv form. Valued options emit
// "flag value" and come before bare flags; insertion order is preserved
// within each group. {-progressive, -copy none} therefore yields
// "-copy none -progressive", matching the documented jpegtran behavior.
func (o Options) args() []string {
	out := make([]string, 0, len(o)*2)
	for _, opt := range o {
		if opt.Value != "" {
			out = append(out, opt.Flag, opt.Value)
		}
	}
	for _, opt := range o {
		if opt.Value == "" {
			out = append(out, opt.Flag)
		}
	}
	return out
}
