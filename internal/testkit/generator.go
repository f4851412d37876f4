package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gocleanse/domain/dataset"
)

// CustomerColumns is the column order of generated customer tables
var CustomerColumns = []string{"customer_id", "age", "income", "city", "signup_date", "orders"}

var cities = []string{"Lisbon", "Porto", "Madrid", "Seville", "Lyon"}

// GeneratorConfig configures the customer table generator
type GeneratorConfig struct {
	MissingRate float64   `json:"missing_rate"` // share of age/income/city cells blanked
	Duplicates  int       `json:"duplicates"`   // repeated rows appended (new customer_id, same content)
	Outliers    int       `json:"outliers"`     // rows whose income is multiplied by 100
	StartDate   time.Time `json:"start_date"`
}

// Option mutates a GeneratorConfig
type Option func(*GeneratorConfig)

// WithMissingRate blanks a share of age, income and city cells
func WithMissingRate(rate float64) Option {
	return func(c *GeneratorConfig) { c.MissingRate = rate }
}

// WithDuplicates appends n repeats of earlier rows
func WithDuplicates(n int) Option {
	return func(c *GeneratorConfig) { c.Duplicates = n }
}

// WithOutliers plants n rows with an extreme income
func WithOutliers(n int) Option {
	return func(c *GeneratorConfig) { c.Outliers = n }
}

// Fixture is a generated dataset plus the rows that were deliberately planted
type Fixture struct {
	Dataset       *dataset.Dataset
	OutlierRows   []int
	DuplicateRows []int
}

// Generator produces deterministic synthetic customer tables
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Customers builds n base rows and returns only the dataset
func (g *Generator) Customers(n int, opts ...Option) *dataset.Dataset {
	return g.Build(n, opts...).Dataset
}

// Build generates n base customers, then plants outliers, missing cells
// and duplicates (appended at the end, so they always follow their original)
func (g *Generator) Build(n int, opts ...Option) Fixture {
	cfg := GeneratorConfig{StartDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, opt := range opts {
		opt(&cfg)
	}

	ds := dataset.New(CustomerColumns...)
	for i := 0; i < n; i++ {
		age := math.Round(40 + g.rng.NormFloat64()*8)
		income := math.Round(52000 + g.rng.NormFloat64()*6000)
		signup := cfg.StartDate.AddDate(0, 0, g.rng.Intn(900))
		row := []dataset.Value{
			dataset.NewStringValue(fmt.Sprintf("customer_%04d", i+1)),
			dataset.NewNumericValue(age),
			dataset.NewNumericValue(income),
			dataset.NewStringValue(cities[g.rng.Intn(len(cities))]),
			dataset.NewStringValue(signup.Format("2006-01-02")),
			dataset.NewNumericValue(float64(1 + g.rng.Intn(6))),
		}
		ds.Rows = append(ds.Rows, row)
	}

	fixture := Fixture{Dataset: ds}

	for _, i := range g.rng.Perm(n)[:min(cfg.Outliers, n)] {
		ds.Rows[i][2] = dataset.NewNumericValue(ds.Rows[i][2].AsFloat64() * 100)
		fixture.OutlierRows = append(fixture.OutlierRows, i)
	}

	if cfg.MissingRate > 0 {
		for i := range ds.Rows {
			for _, j := range []int{1, 2, 3} {
				if g.rng.Float64() < cfg.MissingRate {
					ds.Rows[i][j] = dataset.NewMissingValue()
				}
			}
		}
	}

	for d := 0; d < cfg.Duplicates && n > 0; d++ {
		src := ds.Rows[g.rng.Intn(n)]
		dup := append([]dataset.Value(nil), src...)
		dup[0] = dataset.NewStringValue(fmt.Sprintf("customer_%04d", n+d+1))
		ds.Rows = append(ds.Rows, dup)
		fixture.DuplicateRows = append(fixture.DuplicateRows, len(ds.Rows)-1)
	}

	return fixture
}

// TenRowScenario is a small numeric table with one exact duplicate (row 9
// repeats row 2) and one value 100x the others (row 6)
func TenRowScenario() Fixture {
	values := []float64{10, 11, 12, 13, 14, 15, 1200, 9, 16, 12}
	ds := dataset.New("reading")
	for _, v := range values {
		ds.Rows = append(ds.Rows, []dataset.Value{dataset.NewNumericValue(v)})
	}
	return Fixture{Dataset: ds, OutlierRows: []int{6}, DuplicateRows: []int{9}}
}
