package feature

import "github.com/rushteam/cardiokit/schema"

// Labels 是原始字段到报告展示名的映射。
var Labels = map[string]string{
	schema.Age:      "Age",
	schema.Sex:      "Gender",
	schema.CP:       "Chest Pain Type",
	schema.Trestbps: "Resting BP",
	schema.Chol:     "Cholesterol",
	schema.FBS:      "Fasting BS",
	schema.RestECG:  "ECG",
	schema.Thalach:  "Max HR",
	schema.Exang:    "Exercise Angina",
	schema.Oldpeak:  "ST Depression",
	schema.Slope:    "ST Slope",
	schema.CA:       "# Vessels",
	schema.Thal:     "Thalassemia",
}

// Label 返回展示名，未登记的字段原样返回。
func Label(name string) string {
	if l, ok := Labels[name]; ok {
		return l
	}
	return name
}
