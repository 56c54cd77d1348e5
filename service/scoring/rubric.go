package scoring

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed rubric.yaml
var rubricYAML []byte

// RubricCategory 评分类别说明
type RubricCategory struct {
	Key         string         `yaml:"key" json:"key"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Automated   bool           `yaml:"automated" json:"automated"`
	Scores      map[int]string `yaml:"scores" json:"scores"`
}

// Rubric 评分细则
type Rubric struct {
	MaxScore   int              `yaml:"max_score" json:"max_score"`
	Categories []RubricCategory `yaml:"categories" json:"categories"`
}

// LoadRubric 解析内置评分细则
func LoadRubric() (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(rubricYAML, &r); err != nil {
		return nil, fmt.Errorf("解析评分细则失败: %w", err)
	}
	return &r, nil
}

// Category 按key查找类别
func (r *Rubric) Category(key string) (RubricCategory, bool) {
	for _, c := range r.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return RubricCategory{}, false
}

// Describe 返回某类别某分数的说明，0分为"Not scored"
func (r *Rubric) Describe(key string, score int) string {
	c, ok := r.Category(key)
	if !ok || score == 0 {
		return "Not scored"
	}
	if text, ok := c.Scores[score]; ok {
		return text
	}
	return "Not scored"
}
