package model

import "encoding/json"

type StepType string

const (
	StepContent        StepType = "content"
	StepMultipleChoice StepType = "multiple_choice"
	StepTrueFalse      StepType = "true_false"
	StepMatchPairs     StepType = "match_pairs"
	StepSequence       StepType = "sequence"
	StepFillBlank      StepType = "fill_blank"
	StepSwipeCards     StepType = "swipe_cards"
	StepNodePicker     StepType = "node_picker"
	StepTranslate      StepType = "translate"
)

// LessonStep 课程步骤。Content为按Type区分结构的载荷，客户端不解析具体教学内容，
// 原样转交给UI层渲染。
type LessonStep struct {
	ID      string          `json:"id"`
	Type    StepType        `json:"type"`
	XP      int             `json:"xp,omitempty"`
	Content json.RawMessage `json:"content"`
}

// Module 课程模块；ModuleID在全课程范围内唯一，是导航与进度关联的键
type Module struct {
	ModuleID  string       `json:"moduleId"`
	Title     string       `json:"title"`
	Character string       `json:"character"`
	TotalXP   int          `json:"totalXP"`
	IsLocked  bool         `json:"isLocked"`
	Steps     []LessonStep `json:"steps"`
}

type Chapter struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	IsLocked    bool     `json:"isLocked"`
	IsCompleted bool     `json:"isCompleted"`
	Modules     []Module `json:"modules"`
}

// Course 课程文档，客户端只读，仅通过整体替换更新
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Character   string    `json:"character"`
	Chapters    []Chapter `json:"chapters"`
}

// ModuleByID 跨所有章节线性查找，课程规模为几十个模块，足够
func (c *Course) ModuleByID(moduleID string) *Module {
	for ci := range c.Chapters {
		for mi := range c.Chapters[ci].Modules {
			if c.Chapters[ci].Modules[mi].ModuleID == moduleID {
				return &c.Chapters[ci].Modules[mi]
			}
		}
	}
	return nil
}
