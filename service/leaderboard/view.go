package leaderboard

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/period"
)

const (
	// PodiumSize 领奖台人数，RA少于该数量时不展示领奖台
	PodiumSize = 3

	WinnerTitleFinal   = "RA of the Month"
	WinnerTitlePending = "Current Leader"
	WinnerNotePending  = "Final results pending"
)

// PeriodInfo 周期展示信息
type PeriodInfo struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	InProgress bool   `json:"in_progress"`
}

// NewPeriodInfo 由时间窗口生成展示信息
func NewPeriodInfo(w period.Window) PeriodInfo {
	return PeriodInfo{
		Key:        w.Key(),
		Label:      w.Label(),
		Month:      w.Month,
		Year:       w.Year,
		StartDate:  w.StartDate(),
		EndDate:    w.EndDate(),
		InProgress: w.InProgress(),
	}
}

// Entry 排行榜行，附带展示名
type Entry struct {
	models.ScoredRow
	DisplayName  string `json:"display_name"`
	ManualScored bool   `json:"manual_scored"`
}

// Winner 第一名
type Winner struct {
	Entry
	Title string `json:"title"`
	Final bool   `json:"final"`
	Note  string `json:"note,omitempty"`
}

// Leaderboard 一个周期的完整排行榜
type Leaderboard struct {
	Period         PeriodInfo `json:"period"`
	MaxScore       int        `json:"max_score"`
	RefreshEnabled bool       `json:"refresh_enabled"`
	Entries        []Entry    `json:"entries"`
	Winner         *Winner    `json:"winner,omitempty"`
	Podium         []Entry    `json:"podium,omitempty"`
}

// NewLeaderboard 由排名后的行生成排行榜视图，rows 须已按名次排序
func NewLeaderboard(w period.Window, rows []models.ScoredRow, refreshEnabled bool) *Leaderboard {
	lb := &Leaderboard{
		Period:         NewPeriodInfo(w),
		MaxScore:       models.MaxTotalScore,
		RefreshEnabled: refreshEnabled,
		Entries:        make([]Entry, len(rows)),
	}

	for i, r := range rows {
		lb.Entries[i] = Entry{
			ScoredRow:    r,
			DisplayName:  DisplayName(r.RAName),
			ManualScored: r.Manual().IsComplete(),
		}
	}

	if len(lb.Entries) > 0 {
		lb.Winner = newWinner(lb.Entries[0])
	}
	if len(lb.Entries) >= PodiumSize {
		lb.Podium = append([]Entry(nil), lb.Entries[:PodiumSize]...)
	}
	return lb
}

// newWinner 三项人工评分都录入后才确定为当月最佳
func newWinner(top Entry) *Winner {
	if top.ManualScored {
		return &Winner{Entry: top, Title: WinnerTitleFinal, Final: true}
	}
	return &Winner{Entry: top, Title: WinnerTitlePending, Note: WinnerNotePending}
}

// DisplayName 展示用姓名，如 "jane doe" -> "Jane Doe"
func DisplayName(raName string) string {
	return cases.Title(language.English).String(raName)
}
