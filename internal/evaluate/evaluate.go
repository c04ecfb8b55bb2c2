// Package evaluate splits datasets and scores classifier predictions.
package evaluate

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/mudra/internal/labels"
)

// Split is a train/test partition of a dataset.
type Split struct {
	TrainX [][]float64
	TrainY []int
	TestX  [][]float64
	TestY  []int
}

// StratifiedSplit shuffles each class separately and moves testFraction of it
// to the test half, so both halves keep the class proportions. A class with a
// single sample stays in training; any larger class keeps at least one sample
// on each side.
func StratifiedSplit(X [][]float64, y []int, testFraction float64, seed int64) (*Split, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("%d rows but %d labels", len(X), len(y))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("test fraction %v outside (0, 1)", testFraction)
	}

	byClass := map[int][]int{}
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	rng := rand.New(rand.NewSource(seed))
	s := &Split{}
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := 0
		if len(idx) > 1 {
			nTest = int(math.Round(float64(len(idx)) * testFraction))
			nTest = min(max(nTest, 1), len(idx)-1)
		}

		for k, i := range idx {
			if k < nTest {
				s.TestX = append(s.TestX, X[i])
				s.TestY = append(s.TestY, y[i])
			} else {
				s.TrainX = append(s.TrainX, X[i])
				s.TrainY = append(s.TrainY, y[i])
			}
		}
	}
	return s, nil
}

// ClassMetrics holds the per-class scores of a Report.
type ClassMetrics struct {
	Index     int
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes predictions against ground truth.
type Report struct {
	Total    int
	Accuracy float64
	Classes  []ClassMetrics

	// Confusion[i][j] counts samples of Classes[i] predicted as Classes[j].
	Confusion *mat.Dense
}

// Evaluate scores yPred against yTrue over the classes present in either.
func Evaluate(yTrue, yPred []int, names labels.IndexMap) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%d true labels but %d predictions", len(yTrue), len(yPred))
	}
	r := &Report{Total: len(yTrue)}
	if r.Total == 0 {
		return r, nil
	}

	var seen []int
	for _, c := range append(slices.Clone(yTrue), yPred...) {
		if !slices.Contains(seen, c) {
			seen = append(seen, c)
		}
	}
	slices.Sort(seen)
	pos := make(map[int]int, len(seen))
	for i, c := range seen {
		pos[c] = i
	}

	k := len(seen)
	r.Confusion = mat.NewDense(k, k, nil)
	correct := 0
	for i := range yTrue {
		a, p := pos[yTrue[i]], pos[yPred[i]]
		r.Confusion.Set(a, p, r.Confusion.At(a, p)+1)
		if a == p {
			correct++
		}
	}
	r.Accuracy = float64(correct) / float64(r.Total)

	for i, c := range seen {
		tp := r.Confusion.At(i, i)
		support := mat.Sum(r.Confusion.RowView(i))
		predicted := mat.Sum(r.Confusion.ColView(i))

		m := ClassMetrics{Index: c, Name: className(names, c), Support: int(support)}
		if predicted > 0 {
			m.Precision = tp / predicted
		}
		if support > 0 {
			m.Recall = tp / support
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)
	}
	return r, nil
}

func className(names labels.IndexMap, c int) string {
	if name, ok := names[c]; ok {
		return name
	}
	return strconv.Itoa(c)
}

// MacroAvg returns the unweighted mean precision, recall and F1.
func (r *Report) MacroAvg() (precision, recall, f1 float64) {
	if len(r.Classes) == 0 {
		return 0, 0, 0
	}
	for _, m := range r.Classes {
		precision += m.Precision
		recall += m.Recall
		f1 += m.F1
	}
	n := float64(len(r.Classes))
	return precision / n, recall / n, f1 / n
}

// String renders a classification report followed by the confusion matrix.
func (r *Report) String() string {
	var b strings.Builder

	width := len("macro avg")
	for _, m := range r.Classes {
		width = max(width, len(m.Name))
	}

	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, m := range r.Classes {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, m.Name, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total)
	p, rc, f := r.MacroAvg()
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "macro avg", p, rc, f, r.Total)

	if r.Confusion != nil {
		fmt.Fprintf(&b, "\nConfusion matrix:\n%v\n", mat.Formatted(r.Confusion, mat.Squeeze()))
	}
	return b.String()
}
