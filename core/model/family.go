package model

import (
	"fmt"
	"strings"
)

// Family は診断プロットが扱うモデルファミリー
type Family int

const (
	// FamilyUnknown はどのファミリーにも属さない
	FamilyUnknown Family = iota
	// FamilyLinear は最小二乗法による線形モデル
	FamilyLinear
	// FamilyGeneralizedLinear は一般化線形モデル
	FamilyGeneralizedLinear
	// FamilyMixedEffects は混合効果モデル
	FamilyMixedEffects
	// FamilyRandomForest はランダムフォレスト（アンサンブル）
	FamilyRandomForest
	// FamilySupportVector はサポートベクターマシン
	FamilySupportVector
	// FamilyDecisionTree は単一の決定木
	FamilyDecisionTree
)

var familyNames = map[Family]string{
	FamilyLinear:            "linear",
	FamilyGeneralizedLinear: "generalized_linear",
	FamilyMixedEffects:      "mixed_effects",
	FamilyRandomForest:      "random_forest",
	FamilySupportVector:     "support_vector",
	FamilyDecisionTree:      "decision_tree",
}

// Families はサポートされる全ファミリーを定義順に返す
func Families() []Family {
	return []Family{
		FamilyLinear,
		FamilyGeneralizedLinear,
		FamilyMixedEffects,
		FamilyRandomForest,
		FamilySupportVector,
		FamilyDecisionTree,
	}
}

// String はファミリー名を返す
func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "unknown"
}

// ClosedForm は残差・レバレッジ・Cook距離を閉形式で持つファミリーかどうか
func (f Family) ClosedForm() bool {
	switch f {
	case FamilyLinear, FamilyGeneralizedLinear, FamilyMixedEffects:
		return true
	}
	return false
}

// ParseFamily はファミリー名（"linear", "glm" などの別名を含む）を解釈する
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear", "lm", "ols":
		return FamilyLinear, nil
	case "generalized_linear", "glm", "logistic":
		return FamilyGeneralizedLinear, nil
	case "mixed_effects", "lmm", "mixed":
		return FamilyMixedEffects, nil
	case "random_forest", "rf", "forest":
		return FamilyRandomForest, nil
	case "support_vector", "svm", "svc":
		return FamilySupportVector, nil
	case "decision_tree", "tree", "cart":
		return FamilyDecisionTree, nil
	}
	return FamilyUnknown, fmt.Errorf("unknown model family %q", name)
}
