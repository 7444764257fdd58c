package model

import "fmt"

// leaf 标记叶子节点（children_left / children_right 为 -1）
const leaf = -1

// Tree 是拟合好的决策树，使用并行数组存储节点：
// 节点 i 的分裂特征 Feature[i]、阈值 Threshold[i]，
// x[Feature[i]] <= Threshold[i] 走左子树，否则走右子树；
// 叶子节点的 Value[i] 为各类别的样本数或概率。
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays have inconsistent lengths")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return fmt.Errorf("node %d has a single child", i)
		}
		if l == leaf {
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("leaf %d has %d class values, want %d", i, len(t.Value[i]), nClasses)
			}
			continue
		}
		// 子节点下标必须大于父节点，保证遍历终止
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has invalid children (%d, %d)", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d, model has %d", i, f, nFeatures)
		}
	}
	return nil
}

// Leaf 返回 x 落入的叶子节点下标。
// 特征值先截断为 float32 再与阈值比较，与 sklearn 推理时的精度一致。
func (t *Tree) Leaf(x []float64) int {
	i := 0
	for t.ChildrenLeft[i] != leaf {
		if float64(float32(x[t.Feature[i]])) <= t.Threshold[i] {
			i = t.ChildrenLeft[i]
		} else {
			i = t.ChildrenRight[i]
		}
	}
	return i
}

// Proba 返回叶子节点归一化后的类别概率
func (t *Tree) Proba(x []float64) []float64 {
	v := t.Value[t.Leaf(x)]
	out := make([]float64, len(v))
	var sum float64
	for _, c := range v {
		sum += c
	}
	for i, c := range v {
		if sum > 0 {
			out[i] = c / sum
		} else {
			out[i] = c
		}
	}
	return out
}

// DecisionTree 是单棵决策树分类器，取叶子上概率最大的类别。
type DecisionTree struct {
	base
	Tree *Tree
}

func (m *DecisionTree) Predict(x []float64) (int, error) {
	if err := m.check(x); err != nil {
		return 0, err
	}
	return m.argmax(m.Tree.Proba(x))
}

// RandomForest 对所有树的叶子概率取平均（软投票）后取最大类别。
type RandomForest struct {
	base
	Trees []*Tree
}

// Proba 返回平均类别概率
func (m *RandomForest) Proba(x []float64) ([]float64, error) {
	if err := m.check(x); err != nil {
		return nil, err
	}
	avg := make([]float64, len(m.classes))
	for _, t := range m.Trees {
		for i, p := range t.Proba(x) {
			avg[i] += p
		}
	}
	for i := range avg {
		avg[i] /= float64(len(m.Trees))
	}
	return avg, nil
}

func (m *RandomForest) Predict(x []float64) (int, error) {
	p, err := m.Proba(x)
	if err != nil {
		return 0, err
	}
	return m.argmax(p)
}

type treeSpec struct {
	Tree *Tree `json:"tree"`
}

func (s *treeSpec) build(h header, name string) (Classifier, error) {
	if h.NFeatures <= 0 {
		return nil, fmt.Errorf("decision_tree requires n_features")
	}
	if s.Tree == nil {
		return nil, fmt.Errorf("decision_tree requires tree")
	}
	classes, err := parseClasses(h.Classes)
	if err != nil {
		return nil, err
	}
	if err := s.Tree.validate(h.NFeatures, len(classes)); err != nil {
		return nil, err
	}
	return &DecisionTree{base: base{name: name, nFeatures: h.NFeatures, classes: classes}, Tree: s.Tree}, nil
}

type forestSpec struct {
	Trees []*Tree `json:"trees"`
}

func (s *forestSpec) build(h header, name string) (Classifier, error) {
	if h.NFeatures <= 0 {
		return nil, fmt.Errorf("random_forest requires n_features")
	}
	if len(s.Trees) == 0 {
		return nil, fmt.Errorf("random_forest has no trees")
	}
	classes, err := parseClasses(h.Classes)
	if err != nil {
		return nil, err
	}
	for i, t := range s.Trees {
		if t == nil {
			return nil, fmt.Errorf("trees[%d] is null", i)
		}
		if err := t.validate(h.NFeatures, len(classes)); err != nil {
			return nil, fmt.Errorf("trees[%d]: %w", i, err)
		}
	}
	return &RandomForest{base: base{name: name, nFeatures: h.NFeatures, classes: classes}, Trees: s.Trees}, nil
}
