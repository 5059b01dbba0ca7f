package summary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/targ/internal/interval"
)

type yamlConstraint struct {
	Kind   string    `yaml:"kind"`
	Arg    int       `yaml:"arg"`
	Ranges [][]int64 `yaml:"ranges,omitempty"`
	Op     string    `yaml:"op,omitempty"`
	Other  int       `yaml:"other,omitempty"`
	Desc   string    `yaml:"desc,omitempty"`
}

type yamlSummary struct {
	Function    string           `yaml:"function"`
	Constraints []yamlConstraint `yaml:"constraints"`
}

type yamlConfig struct {
	Summaries []yamlSummary `yaml:"summaries"`
}

// Load reads user-defined summaries from a YAML file. Malformed
// entries fail the whole load: a half-understood model must never
// reach the engine.
func Load(path string) ([]Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes summaries from YAML text.
func Parse(data []byte) ([]Summary, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding summaries: %w", err)
	}

	sums := make([]Summary, 0, len(cfg.Summaries))
	for _, ys := range cfg.Summaries {
		if ys.Function == "" {
			return nil, fmt.Errorf("summary entry without a function name")
		}
		sum := Summary{Name: ys.Function}
		for i, yc := range ys.Constraints {
			c, err := decodeConstraint(yc)
			if err != nil {
				return nil, fmt.Errorf("summary %q, constraint %d: %w", ys.Function, i, err)
			}
			sum.Constraints = append(sum.Constraints, c)
		}
		sums = append(sums, sum)
	}
	return sums, nil
}

func decodeConstraint(yc yamlConstraint) (Constraint, error) {
	switch yc.Kind {
	case "range":
		if len(yc.Ranges) == 0 {
			return nil, fmt.Errorf("range constraint without ranges")
		}
		ranges := make([]interval.Range, 0, len(yc.Ranges))
		for _, pair := range yc.Ranges {
			if len(pair) != 2 {
				return nil, fmt.Errorf("range %v must have exactly two bounds", pair)
			}
			if pair[0] > pair[1] {
				return nil, fmt.Errorf("range [%d, %d] is inverted", pair[0], pair[1])
			}
			ranges = append(ranges, interval.NewRange(pair[0], pair[1]))
		}
		return RangeConstraint{
			Arg:     yc.Arg,
			Allowed: interval.NewRangeSet(ranges...),
			Desc:    yc.Desc,
		}, nil
	case "notnull":
		return NotNullConstraint{Arg: yc.Arg, Desc: yc.Desc}, nil
	case "relational":
		op, err := parseOp(yc.Op)
		if err != nil {
			return nil, err
		}
		return RelationalConstraint{
			Arg:   yc.Arg,
			Other: yc.Other,
			Op:    op,
			Desc:  yc.Desc,
		}, nil
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", yc.Kind)
	}
}

func parseOp(s string) (Op, error) {
	switch s {
	case "<":
		return OpLT, nil
	case "<=":
		return OpLE, nil
	case ">":
		return OpGT, nil
	case ">=":
		return OpGE, nil
	case "==":
		return OpEQ, nil
	case "!=":
		return OpNE, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}
