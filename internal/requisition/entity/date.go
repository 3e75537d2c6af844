package entity

import (
	"bytes"
	"fmt"
	"time"
)

// dateLayouts 请求中可接受的日期格式，依次尝试
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Date 请求体中的日期字段，接受 2006-01-02 与 RFC3339 两种写法
type Date struct {
	time.Time
}

// NewDate 包装一个时间点
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate 按 dateLayouts 解析
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date %s: expected a string", b)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
