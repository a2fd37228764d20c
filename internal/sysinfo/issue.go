package sysinfo

import (
	"strconv"
	"strings"
	"time"
)

// IssueData supplies the values getty substitutes into /etc/issue.
type IssueData struct {
	Uname    Uname
	Hostname string
	Now      time.Time
	TTY      string
	Baud     int
	Users    int
}

func (d IssueData) users() string {
	if d.Users == 1 {
		return "1 user"
	}
	return strconv.Itoa(d.Users) + " users"
}

func (d IssueData) translate(c rune) string {
	switch c {
	case 's':
		return d.Uname.Sysname
	case 'n':
		return d.Uname.Nodename
	case 'r':
		return d.Uname.Release
	case 'v':
		return d.Uname.Version
	case 'm':
		return d.Uname.Machine
	case 'o':
		return d.Hostname
	case 'd':
		return d.Now.Format("Mon Jan 02 2006")
	case 't':
		return d.Now.Format("15:04:05")
	case 'l':
		return d.TTY
	case 'b':
		return strconv.Itoa(d.Baud)
	case 'u':
		return strconv.Itoa(d.Users)
	case 'U':
		return d.users()
	default:
		return string(c)
	}
}

// ExpandIssue replaces getty escapes (\s \n \r \v \m \o \d \t \l \b \u \U)
// in the text of an issue file. An escaped backslash is consumed with its
// escape, so `\\\s` keeps the \s escape intact. Unknown escapes expand to
// the escaped character.
func ExpandIssue(text string, d IssueData) string {
	var b strings.Builder
	escaped := false
	for _, c := range text {
		switch {
		case escaped:
			b.WriteString(d.translate(c))
			escaped = false
		case c == '\\':
			escaped = true
		default:
			b.WriteRune(c)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}
