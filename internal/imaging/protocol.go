// Package imaging renders pictures into terminal panels: it negotiates a
// graphics protocol, scales images to cover a panel, keeps a small gallery
// and fetches new images without blocking the dashboard loop.
package imaging

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Protocol is a terminal image rendering strategy.
type Protocol int

const (
	// Halfblocks draws two pixels per cell with "▀" and truecolor escapes.
	// It works everywhere and is the fallback.
	Halfblocks Protocol = iota
	Sixel
	Kitty
	ITerm2
)

func (p Protocol) String() string {
	switch p {
	case Sixel:
		return "sixel"
	case Kitty:
		return "kitty"
	case ITerm2:
		return "iterm2"
	default:
		return "halfblocks"
	}
}

// ParseProtocol parses an override value. "auto" and "" return ok=false
// with no error, meaning negotiation should continue.
func ParseProtocol(s string) (Protocol, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Halfblocks, false, nil
	case "halfblocks":
		return Halfblocks, true, nil
	case "sixel":
		return Sixel, true, nil
	case "kitty":
		return Kitty, true, nil
	case "iterm2":
		return ITerm2, true, nil
	default:
		return Halfblocks, false, fmt.Errorf("unknown image protocol %q", s)
	}
}

// Source records which signal decided the protocol.
type Source string

const (
	SourceOverride Source = "override"
	SourceEnv      Source = "environment"
	SourceQuery    Source = "query"
	SourceFallback Source = "fallback"
)

// Probe holds the capability signals consulted by Negotiate.
type Probe struct {
	// Override is the configured image.protocol value.
	Override string
	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string
	// Query asks the terminal directly and returns its raw reply. Nil skips
	// the query.
	Query func() (string, error)
}

// Negotiate picks exactly one protocol, consulting the override, then the
// environment, then the terminal query, then falling back to halfblocks.
func Negotiate(p Probe) (Protocol, Source) {
	if proto, ok, err := ParseProtocol(p.Override); err == nil && ok {
		return proto, SourceOverride
	}

	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if proto, ok := FromEnv(getenv); ok {
		return proto, SourceEnv
	}

	if p.Query != nil {
		if reply, err := p.Query(); err == nil {
			if proto, ok := FromQueryReply(reply); ok {
				return proto, SourceQuery
			}
		}
	}
	return Halfblocks, SourceFallback
}

// FromEnv recognises terminals that identify themselves.
func FromEnv(getenv func(string) string) (Protocol, bool) {
	term := strings.ToLower(getenv("TERM"))
	program := strings.ToLower(getenv("TERM_PROGRAM"))

	switch {
	case getenv("KITTY_WINDOW_ID") != "", term == "xterm-kitty", program == "ghostty", term == "xterm-ghostty":
		return Kitty, true
	case program == "iterm.app", program == "wezterm", getenv("LC_TERMINAL") == "iTerm2":
		return ITerm2, true
	case program == "mlterm", term == "foot", strings.HasPrefix(term, "foot-"), strings.Contains(term, "sixel"):
		return Sixel, true
	}
	return Halfblocks, false
}

// KittyQuery asks for kitty graphics support and then for primary device
// attributes, which every terminal answers, so a reader knows when to stop.
const KittyQuery = "\x1b_Gi=31,s=1,v=1,a=q,t=d,f=24;AAAA\x1b\\" + DA1Query

// DA1Query requests primary device attributes.
const DA1Query = "\x1b[c"

// FromQueryReply interprets the terminal's reply to KittyQuery. A kitty
// graphics "OK" wins; otherwise a DA1 reply advertising attribute 4 means
// sixel support.
func FromQueryReply(reply string) (Protocol, bool) {
	if strings.Contains(reply, "\x1b_Gi=31;OK") {
		return Kitty, true
	}

	start := strings.Index(reply, "\x1b[?")
	if start < 0 {
		return Halfblocks, false
	}
	rest := reply[start+3:]
	end := strings.IndexByte(rest, 'c')
	if end < 0 {
		return Halfblocks, false
	}
	for _, attr := range strings.Split(rest[:end], ";") {
		if attr == "4" {
			return Sixel, true
		}
	}
	return Halfblocks, false
}

// Session negotiates once and caches the result for the life of the process.
type Session struct {
	probe  Probe
	once   sync.Once
	proto  Protocol
	source Source
}

// NewSession prepares negotiation without running it.
func NewSession(p Probe) *Session {
	return &Session{probe: p}
}

// Protocol returns the negotiated protocol, probing on first use only.
func (s *Session) Protocol() Protocol {
	s.once.Do(func() {
		s.proto, s.source = Negotiate(s.probe)
	})
	return s.proto
}

// Source returns which signal decided the protocol.
func (s *Session) Source() Source {
	s.Protocol()
	return s.source
}
