package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

const (
	featureCount    = 4
	holdoutFraction = 0.2
)

// ForestOptions tunes the bagged tree ensemble. Zero values fall back to
// the defaults used by DefaultForestOptions.
type ForestOptions struct {
	TreeCount int
	MaxDepth  int
	MinLeaf   int
	// Seed drives the holdout shuffle and bootstrap sampling, so training
	// on the same corpus is reproducible.
	Seed int64
}

func DefaultForestOptions() ForestOptions {
	return ForestOptions{
		TreeCount: 100,
		MaxDepth:  10,
		MinLeaf:   5,
		Seed:      42,
	}
}

func (o ForestOptions) withDefaults() ForestOptions {
	d := DefaultForestOptions()
	if o.TreeCount <= 0 {
		o.TreeCount = d.TreeCount
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MinLeaf <= 0 {
		o.MinLeaf = d.MinLeaf
	}
	return o
}

// treeNode is one node of a CART tree. Leaves carry the positive-class
// rate of the training rows that reached them.
type treeNode struct {
	Leaf      bool      `json:"leaf,omitempty"`
	Positive  float64   `json:"p,omitempty"`
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *treeNode `json:"l,omitempty"`
	Right     *treeNode `json:"r,omitempty"`
}

// Forest is a bagged ensemble of CART trees fit on the synthetic corpus.
// Its predicted probability is the mean of per-tree leaf positive rates.
type Forest struct {
	Trees []*treeNode `json:"trees"`
}

// TrainReport summarizes the fixed 20% holdout evaluation of a training run.
type TrainReport struct {
	TrainSize   int     `json:"train_size"`
	HoldoutSize int     `json:"holdout_size"`
	Accuracy    float64 `json:"accuracy"`
	AUC         float64 `json:"auc"`
}

// TrainForest fits a bagged tree ensemble on the corpus, holding out 20%
// for evaluation. The split and bootstrap draws are seeded from opts.Seed.
func TrainForest(corpus []TrainingExample, opts ForestOptions) (*Forest, TrainReport, error) {
	opts = opts.withDefaults()
	if len(corpus) < 10 {
		return nil, TrainReport{}, fmt.Errorf("corpus too small: %d examples", len(corpus))
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	shuffled := make([]TrainingExample, len(corpus))
	copy(shuffled, corpus)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	holdoutSize := int(float64(len(shuffled)) * holdoutFraction)
	if holdoutSize < 1 {
		holdoutSize = 1
	}
	holdout := shuffled[:holdoutSize]
	training := shuffled[holdoutSize:]

	rows := make([][]float64, len(training))
	labels := make([]bool, len(training))
	for i, ex := range training {
		rows[i] = ex.Features.floats()
		labels[i] = ex.Confirmed
	}

	forest := &Forest{Trees: make([]*treeNode, 0, opts.TreeCount)}
	for t := 0; t < opts.TreeCount; t++ {
		sampleIdx := make([]int, len(rows))
		for i := range sampleIdx {
			sampleIdx[i] = rng.Intn(len(rows))
		}
		forest.Trees = append(forest.Trees, buildTree(rows, labels, sampleIdx, 0, opts))
	}

	report := evaluate(forest, holdout)
	report.TrainSize = len(training)
	report.HoldoutSize = len(holdout)
	return forest, report, nil
}

// PredictProbability returns the probability of confirmation, clamped to
// [0,1]. The forest must be non-empty.
func (f *Forest) PredictProbability(fv FeatureVector) float64 {
	if f == nil || len(f.Trees) == 0 {
		return 0
	}
	row := fv.floats()
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.predict(row)
	}
	return clamp01(sum / float64(len(f.Trees)))
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Positive
}

func buildTree(rows [][]float64, labels []bool, idx []int, depth int, opts ForestOptions) *treeNode {
	positives := 0
	for _, i := range idx {
		if labels[i] {
			positives++
		}
	}
	rate := float64(positives) / float64(len(idx))

	if depth >= opts.MaxDepth || len(idx) < 2*opts.MinLeaf || positives == 0 || positives == len(idx) {
		return &treeNode{Leaf: true, Positive: rate}
	}

	feature, threshold, ok := bestSplit(rows, labels, idx, opts.MinLeaf)
	if !ok {
		return &treeNode{Leaf: true, Positive: rate}
	}

	var left, right []int
	for _, i := range idx {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(rows, labels, left, depth+1, opts),
		Right:     buildTree(rows, labels, right, depth+1, opts),
	}
}

// bestSplit scans every feature and candidate threshold for the lowest
// weighted Gini impurity. Candidates are midpoints between adjacent
// distinct values.
func bestSplit(rows [][]float64, labels []bool, idx []int, minLeaf int) (int, float64, bool) {
	bestGini := 1.1
	bestFeature := -1
	bestThreshold := 0.0

	for f := 0; f < featureCount; f++ {
		values := make([]float64, 0, len(idx))
		for _, i := range idx {
			values = append(values, rows[i][f])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			var leftN, leftPos, rightN, rightPos int
			for _, i := range idx {
				if rows[i][f] <= threshold {
					leftN++
					if labels[i] {
						leftPos++
					}
				} else {
					rightN++
					if labels[i] {
						rightPos++
					}
				}
			}
			if leftN < minLeaf || rightN < minLeaf {
				continue
			}

			total := float64(leftN + rightN)
			g := float64(leftN)/total*gini(leftPos, leftN) + float64(rightN)/total*gini(rightPos, rightN)
			if g < bestGini {
				bestGini = g
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(positives, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(positives) / float64(n)
	return 2 * p * (1 - p)
}

func evaluate(f *Forest, holdout []TrainingExample) TrainReport {
	scores := make([]float64, len(holdout))
	classes := make([]bool, len(holdout))
	correct := 0
	for i, ex := range holdout {
		scores[i] = f.PredictProbability(ex.Features)
		classes[i] = ex.Confirmed
		if (scores[i] >= 0.5) == ex.Confirmed {
			correct++
		}
	}

	report := TrainReport{Accuracy: float64(correct) / float64(len(holdout))}

	// stat.ROC wants scores ascending with classes aligned.
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })
	sortedScores := make([]float64, len(scores))
	sortedClasses := make([]bool, len(scores))
	for i, o := range order {
		sortedScores[i] = scores[o]
		sortedClasses[i] = classes[o]
	}
	tpr, fpr, _ := stat.ROC(nil, sortedScores, sortedClasses, nil)
	report.AUC = integrate.Trapezoidal(fpr, tpr)

	return report
}

// Save writes the fitted ensemble to a JSON artifact at path.
func (f *Forest) Save(path string) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model artifact: %w", err)
	}
	return nil
}

// LoadForest reads a fitted ensemble from path. A missing artifact is
// reported as os.ErrNotExist so callers can fall back to lazy training.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if len(f.Trees) == 0 {
		return nil, errors.New("model artifact holds no trees")
	}
	return &f, nil
}
