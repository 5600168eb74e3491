// Package batch runs the 22-entry simulation catalogue against one symbol:
// data is fetched once per batch, fitted volatility models are cached per
// batch and every entry runs as an isolated concurrent task.
package batch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/volatility"
)

// Model is one catalogue entry
type Model int

// Catalogue entries. The order is the public listing order.
const (
	GarchN Model = iota
	GarchT
	GarchGED
	GarchSkewedN
	GarchSkewedT
	GarchSkewedGED
	EgarchN
	EgarchT
	EgarchGED
	EgarchSkewedN
	EgarchSkewedT
	EgarchSkewedGED
	GjrGarchN
	GjrGarchT
	GjrGarchGED
	GjrGarchSkewedN
	GjrGarchSkewedT
	GjrGarchSkewedGED
	Historical
	MonteCarlo
	RiskMetrics
	SimpleVariance

	modelCount
)

// Kind selects the runner of an entry
type Kind int

const (
	KindParametric Kind = iota
	KindHistorical
	KindMonteCarlo
	KindRiskMetrics
	KindSimpleVariance
)

// String returns the runner name
func (k Kind) String() string {
	switch k {
	case KindParametric:
		return "parametric"
	case KindHistorical:
		return "bootstrap"
	case KindMonteCarlo:
		return "gbm"
	case KindRiskMetrics:
		return "ewma"
	case KindSimpleVariance:
		return "gbm-no-drag"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Skew constants of the "skewed" parametric variants
const (
	SkewNormal = -0.1
	SkewT      = -2.0
	SkewGED    = -1.5
)

// Category names of the listing
const (
	CategoryGARCH     = "GARCH"
	CategoryEGARCH    = "EGARCH"
	CategoryGJRGARCH  = "GJR-GARCH"
	CategoryClassical = "Classical"
)

// Entry is the static description of one catalogue model
type Entry struct {
	Model    Model
	Name     string
	Kind     Kind
	Spec     volatility.Spec // parametric entries only
	Skew     float64         // 0 for plain variants
	Category string
}

// Parametric reports whether the entry needs a fitted volatility model
func (e Entry) Parametric() bool {
	return e.Kind == KindParametric
}

// stream is the random stream id of the entry
func (e Entry) stream() uint64 {
	return uint64(e.Model) + 1
}

// catalogue is the dispatch table, indexed by Model
var catalogue = buildCatalogue()

func buildCatalogue() []Entry {
	families := []struct {
		prefix   string
		spec     volatility.Spec
		category string
	}{
		{"GARCH", volatility.Spec{Family: volatility.FamilyGARCH}, CategoryGARCH},
		{"EGARCH", volatility.Spec{Family: volatility.FamilyEGARCH}, CategoryEGARCH},
		{"GJR-GARCH", volatility.Spec{Family: volatility.FamilyGARCH, LeverageOrder: 1}, CategoryGJRGARCH},
	}
	dists := []struct {
		suffix string
		dist   volatility.Distribution
		skew   float64
	}{
		{"N", volatility.DistNormal, SkewNormal},
		{"T", volatility.DistStudentT, SkewT},
		{"GED", volatility.DistGED, SkewGED},
	}

	out := make([]Entry, 0, modelCount)
	for _, f := range families {
		for _, skewed := range []bool{false, true} {
			for _, d := range dists {
				spec := f.spec
				spec.Dist = d.dist

				name := f.prefix + "-" + d.suffix
				skew := 0.0
				if skewed {
					name = f.prefix + "-SKEWED-" + d.suffix
					skew = d.skew
				}
				out = append(out, Entry{
					Model:    Model(len(out)),
					Name:     name,
					Kind:     KindParametric,
					Spec:     spec,
					Skew:     skew,
					Category: f.category,
				})
			}
		}
	}

	classical := []struct {
		name string
		kind Kind
	}{
		{"HISTORICAL", KindHistorical},
		{"MONTE-CARLO", KindMonteCarlo},
		{"RISK-METRICS", KindRiskMetrics},
		{"SIMPLE-VARIANCE", KindSimpleVariance},
	}
	for _, c := range classical {
		out = append(out, Entry{
			Model:    Model(len(out)),
			Name:     c.name,
			Kind:     c.kind,
			Category: CategoryClassical,
		})
	}
	return out
}

// String returns the catalogue name
func (m Model) String() string {
	if m < 0 || m >= modelCount {
		return fmt.Sprintf("Model(%d)", int(m))
	}
	return catalogue[m].Name
}

// Entry returns the static description of m
func (m Model) Entry() Entry {
	return catalogue[m]
}

// Catalogue returns all entries in listing order
func Catalogue() []Entry {
	out := make([]Entry, len(catalogue))
	copy(out, catalogue)
	return out
}

// Names returns the catalogue names in listing order
func Names() []string {
	out := make([]string, len(catalogue))
	for i, e := range catalogue {
		out[i] = e.Name
	}
	return out
}

// Lookup finds an entry by name, ignoring case and surrounding spaces
func Lookup(name string) (Entry, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	for _, e := range catalogue {
		if e.Name == key {
			return e, nil
		}
	}

	available := make([]string, len(catalogue))
	for i, e := range catalogue {
		available[i] = strings.ToLower(e.Name)
	}
	return Entry{}, fmt.Errorf("%w: Simulation type '%s' not found. Available types: %s",
		contracts.ErrNotFound, name, strings.Join(available, ", "))
}

// Categories groups the catalogue names by category
func Categories() map[string][]string {
	out := make(map[string][]string, 4)
	for _, e := range catalogue {
		out[e.Category] = append(out[e.Category], e.Name)
	}
	return out
}

// FitSpecs returns the distinct volatility specs fitted by a full batch
func FitSpecs() []volatility.Spec {
	seen := map[volatility.Spec]bool{}
	var out []volatility.Spec
	for _, e := range catalogue {
		if e.Parametric() && !seen[e.Spec] {
			seen[e.Spec] = true
			out = append(out, e.Spec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
