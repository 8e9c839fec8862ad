package util

import (
	"fmt"
	"strings"
	"time"
)

// placeholders are ordered longest first so "YYYY" is never read as two "YY".
var dateReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDateTpl formats t using a template with placeholders
// (YYYY, YY, MM, DD, hh, mm, ss). Zero time yields "".
//
//	FormatDateTpl(t, "DD.MM hh:mm") // "10.11 18:04"
func FormatDateTpl(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateReplacer.Replace(tpl))
}

// FormatDuration renders a track length as m:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
