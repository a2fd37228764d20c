// Package sysinfo gathers the host facts shown in the info section of the
// report: kernel, distribution, display server and the environment
// variables that influence the terminal.
package sysinfo

import (
	"bufio"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Uname holds the fields of uname(2).
type Uname struct {
	Sysname  string
	Nodename string
	Release  string
	Version  string
	Machine  string
}

func (u Uname) String() string {
	var parts []string
	for _, p := range []string{u.Sysname, u.Nodename, u.Release, u.Version, u.Machine} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// EnvVar is one environment variable.
type EnvVar struct {
	Name  string
	Value string
}

// Info is everything the info section needs from the host.
type Info struct {
	Uname Uname
	// Issue is /etc/issue with its escapes expanded.
	Issue string
	// Release holds the lines of /etc/lsb-release.
	Release []string
	// MacOS is the sw_vers summary on macOS.
	MacOS string
	// DisplayServer is "Wayland", "X11" or empty.
	DisplayServer string
	// TerminalExe is the resolved path of the terminal binary, if found.
	TerminalExe string
	Shell       string
	Env         []EnvVar
}

// importantEnv are the variables worth showing besides LC_* and XDG_*.
var importantEnv = map[string]bool{
	"PATH":                           true,
	"LANG":                           true,
	"KITTY_CONFIG_DIRECTORY":         true,
	"KITTY_CACHE_DIRECTORY":          true,
	"VISUAL":                         true,
	"EDITOR":                         true,
	"SHELL":                          true,
	"GLFW_IM_MODULE":                 true,
	"KITTY_WAYLAND_DETECT_MODIFIERS": true,
	"DISPLAY":                        true,
	"WAYLAND_DISPLAY":                true,
	"USER":                           true,
	"XCURSOR_SIZE":                   true,
}

// Collector reads host information. Zero-valued fields fall back to the
// real system.
type Collector struct {
	IssuePath      string
	LSBReleasePath string
	TerminalName   string

	Environ  func() []string
	Now      func() time.Time
	Uname    func() (Uname, error)
	TTYName  func() string
	LookPath func(string) (string, error)
	// SwVers returns the output of sw_vers. It defaults to running the
	// command on macOS only.
	SwVers func() (string, error)

	Logger *slog.Logger
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Collect gathers host information with the default Collector.
func Collect() Info {
	return (&Collector{}).Collect()
}

// Collect gathers host information. Failures leave the affected fields
// empty; they are logged at debug level and never returned.
func (c *Collector) Collect() Info {
	environ := os.Environ
	if c.Environ != nil {
		environ = c.Environ
	}
	env := environ()
	lookup := envLookup(env)

	var info Info
	unameFn := readUname
	if c.Uname != nil {
		unameFn = c.Uname
	}
	u, err := unameFn()
	if err != nil {
		c.logger().Debug("uname failed", "error", err)
	}
	info.Uname = u

	issuePath := c.IssuePath
	if issuePath == "" {
		issuePath = "/etc/issue"
	}
	if data, err := os.ReadFile(issuePath); err == nil {
		info.Issue = strings.TrimRight(ExpandIssue(string(data), c.issueData(u)), "\n")
	} else if !os.IsNotExist(err) {
		c.logger().Debug("reading issue file", "file", issuePath, "error", err)
	}

	releasePath := c.LSBReleasePath
	if releasePath == "" {
		releasePath = "/etc/lsb-release"
	}
	info.Release = readLines(releasePath)

	swVers := c.SwVers
	if swVers == nil && runtime.GOOS == "darwin" {
		swVers = runSwVers
	}
	if swVers != nil {
		if out, err := swVers(); err == nil {
			info.MacOS = FormatSwVers(out)
		} else {
			c.logger().Debug("sw_vers failed", "error", err)
		}
	}

	if runtime.GOOS != "darwin" {
		info.DisplayServer = DisplayServer(lookup)
	}

	name := c.TerminalName
	if name == "" {
		name = "kitty"
	}
	lookPath := exec.LookPath
	if c.LookPath != nil {
		lookPath = c.LookPath
	}
	if exe, err := lookPath(name); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		info.TerminalExe = exe
	}

	info.Shell = lookup("SHELL")
	if info.Shell == "" {
		info.Shell = "/bin/sh"
	}
	info.Env = ImportantEnv(env)
	return info
}

// FormatSwVers joins the lines of sw_vers output into one line,
// "ProductName: macOS  ProductVersion: 14.5  BuildVersion: 23F79".
func FormatSwVers(out string) string {
	var parts []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "  ")
}

func runSwVers() (string, error) {
	out, err := exec.Command("sw_vers").Output()
	return string(out), err
}

func (c *Collector) issueData(u Uname) IssueData {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	tty := ttyName
	if c.TTYName != nil {
		tty = c.TTYName
	}
	host := u.Nodename
	if host == "" {
		if h, err := os.Hostname(); err == nil {
			host = h
		} else {
			host = "localhost"
		}
	}
	return IssueData{
		Uname:    u,
		Hostname: host,
		Now:      now(),
		TTY:      tty(),
		Users:    -1,
	}
}

// DisplayServer names the display server from the environment.
func DisplayServer(getenv func(string) string) string {
	switch {
	case getenv("WAYLAND_DISPLAY") != "":
		return "Wayland"
	case getenv("DISPLAY") != "":
		return "X11"
	default:
		return ""
	}
}

// ImportantEnv filters environ down to the variables that affect the
// terminal, sorted by name.
func ImportantEnv(environ []string) []EnvVar {
	var out []EnvVar
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if importantEnv[name] || strings.HasPrefix(name, "LC_") || strings.HasPrefix(name, "XDG_") {
			out = append(out, EnvVar{Name: name, Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func envLookup(environ []string) func(string) string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if name, value, ok := strings.Cut(kv, "="); ok {
			m[name] = value
		}
	}
	return func(name string) string { return m[name] }
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var ttyPattern = regexp.MustCompile(`^/dev/([^/]+)/([^/]+)$`)

// FormatTTYName shortens "/dev/pts/3" to "pts3" the way getty does.
func FormatTTYName(raw string) string {
	return ttyPattern.ReplaceAllString(raw, "$1$2")
}

func ttyName() string {
	if target, err := os.Readlink("/proc/self/fd/0"); err == nil && strings.HasPrefix(target, "/dev/") {
		return FormatTTYName(target)
	}
	return "/dev/tty"
}
