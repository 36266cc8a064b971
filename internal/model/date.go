package model

import "time"

// DateLayout は日付のみを表すAPI・DB共通のフォーマット。
const DateLayout = "2006-01-02"

// DateOf は時刻部分を切り捨てたUTCの日付を返す。
// 年月日は入力のロケーションで解釈する。
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate は2つの時刻が同じ暦日かどうかを返す。
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
