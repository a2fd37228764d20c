package sysinfo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testUname = Uname{
	Sysname:  "Linux",
	Nodename: "box",
	Release:  "6.1.0",
	Version:  "#1 SMP",
	Machine:  "x86_64",
}

func TestExpandIssue(t *testing.T) {
	d := IssueData{
		Uname:    testUname,
		Hostname: "box.local",
		Now:      time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC),
		TTY:      "pts3",
		Users:    1,
	}

	tests := []struct {
		input string
		want  string
	}{
		{`Welcome to \s \r (\m)`, "Welcome to Linux 6.1.0 (x86_64)"},
		{`\n on \l`, "box on pts3"},
		{`host \o`, "host box.local"},
		{`\d \t`, "Tue Mar 05 2024 14:07:09"},
		{`\u / \U / \b`, "1 / 1 user / 0"},
		{`\v`, "#1 SMP"},
		{`literal \\s`, `literal \s`},
		{`\\\s`, `\Linux`},
		{`unknown \x`, "unknown x"},
		{`trailing \`, `trailing \`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandIssue(tt.input, d); got != tt.want {
				t.Errorf("ExpandIssue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandIssueUsersPlural(t *testing.T) {
	if got := ExpandIssue(`\U`, IssueData{Users: -1}); got != "-1 users" {
		t.Errorf("ExpandIssue(\\U) = %q, want %q", got, "-1 users")
	}
}

func TestFormatTTYName(t *testing.T) {
	tests := []struct{ input, want string }{
		{"/dev/pts/3", "pts3"},
		{"/dev/tty", "/dev/tty"},
		{"/dev/tty1", "/dev/tty1"},
	}
	for _, tt := range tests {
		if got := FormatTTYName(tt.input); got != tt.want {
			t.Errorf("FormatTTYName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestImportantEnv(t *testing.T) {
	env := []string{
		"USER=me",
		"HOME=/home/me",
		"XDG_CONFIG_HOME=/home/me/.config",
		"LC_ALL=C",
		"PATH=/usr/bin",
		"RANDOM_THING=1",
		"malformed",
	}
	got := ImportantEnv(env)
	want := []string{"LC_ALL", "PATH", "USER", "XDG_CONFIG_HOME"}
	if len(got) != len(want) {
		t.Fatalf("ImportantEnv() = %+v, want names %v", got, want)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("ImportantEnv()[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestDisplayServer(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"wayland", map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"}, "Wayland"},
		{"x11", map[string]string{"DISPLAY": ":0"}, "X11"},
		{"headless", map[string]string{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if got := DisplayServer(getenv); got != tt.want {
				t.Errorf("DisplayServer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	issue := filepath.Join(dir, "issue")
	if err := os.WriteFile(issue, []byte("Debian \\s \\l\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	release := filepath.Join(dir, "lsb-release")
	if err := os.WriteFile(release, []byte("DISTRIB_ID=Debian\n\nDISTRIB_RELEASE=12\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := &Collector{
		IssuePath:      issue,
		LSBReleasePath: release,
		Environ:        func() []string { return []string{"SHELL=/bin/zsh", "DISPLAY=:1", "LANG=C.UTF-8"} },
		Now:            func() time.Time { return time.Unix(0, 0).UTC() },
		Uname:          func() (Uname, error) { return testUname, nil },
		TTYName:        func() string { return "pts0" },
		LookPath:       func(string) (string, error) { return "", errors.New("not found") },
		SwVers:         func() (string, error) { return "ProductName:\tmacOS\nProductVersion:\t14.5\n", nil },
	}
	info := c.Collect()

	if info.MacOS != "ProductName: macOS  ProductVersion: 14.5" {
		t.Errorf("MacOS = %q", info.MacOS)
	}
	if info.Uname.String() != "Linux box 6.1.0 #1 SMP x86_64" {
		t.Errorf("Uname = %q", info.Uname.String())
	}
	if info.Issue != "Debian Linux pts0" {
		t.Errorf("Issue = %q", info.Issue)
	}
	if len(info.Release) != 2 || info.Release[1] != "DISTRIB_RELEASE=12" {
		t.Errorf("Release = %v", info.Release)
	}
	if info.Shell != "/bin/zsh" {
		t.Errorf("Shell = %q", info.Shell)
	}
	if info.TerminalExe != "" {
		t.Errorf("TerminalExe = %q, want empty when not on PATH", info.TerminalExe)
	}
	if len(info.Env) != 3 {
		t.Errorf("Env = %+v, want three important variables", info.Env)
	}
}

func TestCollectMissingFiles(t *testing.T) {
	dir := t.TempDir()
	c := &Collector{
		IssuePath:      filepath.Join(dir, "none"),
		LSBReleasePath: filepath.Join(dir, "none"),
		Environ:        func() []string { return nil },
		Uname:          func() (Uname, error) { return Uname{}, errors.New("no uname") },
		LookPath:       func(string) (string, error) { return "", errors.New("not found") },
	}
	info := c.Collect()
	if info.Issue != "" || info.Release != nil {
		t.Errorf("expected empty issue and release, got %q %v", info.Issue, info.Release)
	}
	if info.Shell != "/bin/sh" {
		t.Errorf("Shell = %q, want /bin/sh fallback", info.Shell)
	}
}

func TestFormatSwVers(t *testing.T) {
	out := "ProductName:\t\tmacOS\nProductVersion:\t\t14.5\nBuildVersion:\t\t23F79\n"
	want := "ProductName: macOS  ProductVersion: 14.5  BuildVersion: 23F79"
	if got := FormatSwVers(out); got != want {
		t.Errorf("FormatSwVers() = %q, want %q", got, want)
	}
	if got := FormatSwVers(""); got != "" {
		t.Errorf("FormatSwVers(empty) = %q", got)
	}
}
