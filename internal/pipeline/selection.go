package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"ccexport/internal/cli"
)

// ParseSelection expands a selection expression against the available
// 1-based index range [1, available].
//
// Grammar: comma-separated indices and inclusive ranges ("lo-hi", order
// insensitive); "", "all" and "*" select everything. Duplicates collapse.
// Malformed tokens, out-of-bounds indices and an empty result are user
// errors.
func ParseSelection(expr string, available int) ([]int, error) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	if expr == "" || expr == "all" || expr == "*" {
		all := make([]int, available)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}

	chosen := make(map[int]bool)
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			pieces := strings.SplitN(part, "-", 2)
			lo, errLo := strconv.Atoi(strings.TrimSpace(pieces[0]))
			hi, errHi := strconv.Atoi(strings.TrimSpace(pieces[1]))
			if errLo != nil || errHi != nil || lo < 0 || hi < 0 {
				return nil, cli.Errorf("invalid range: %s", part)
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			for idx := lo; idx <= hi; idx++ {
				if idx < 1 || idx > available {
					return nil, cli.Errorf("selection out of bounds: %s", part)
				}
				chosen[idx] = true
			}
			continue
		}

		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, cli.Errorf("invalid index: %s", part)
		}
		if idx < 1 || idx > available {
			return nil, cli.Errorf("selection out of bounds: %s", part)
		}
		chosen[idx] = true
	}

	if len(chosen) == 0 {
		return nil, cli.Errorf("no conversations selected")
	}

	result := make([]int, 0, len(chosen))
	for idx := range chosen {
		result = append(result, idx)
	}
	sort.Ints(result)
	return result, nil
}
