// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package broker

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Descriptor holds everything needed to reach one queue on a broker.
type Descriptor struct {
	Scheme string
	// Host is copied verbatim; IPv6 literals keep their brackets.
	Host string
	// Port is nil when the URI carries none.
	Port *int
	// VirtualHost and QueueName are taken from the path without percent-decoding.
	VirtualHost string
	QueueName   string
	UserName    *string
	Password    *string
	RawQuery    string
}

// ParseURI parses scheme://[user[:pass]@]host[:port]/virtualHost/queueName.
//
// The path's first segment is the virtual host and everything after the
// following slash is the queue name, which may itself contain slashes.
// The query string is kept raw and the fragment is dropped. ParseURI does no
// I/O.
func ParseURI(uri string) (Descriptor, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" || !validScheme(scheme) {
		return Descriptor{}, fmt.Errorf("%w: missing or invalid scheme", ErrBadConnectionString)
	}
	d := Descriptor{Scheme: strings.ToLower(scheme)}

	rest, _, _ = strings.Cut(rest, "#")
	rest, d.RawQuery, _ = strings.Cut(rest, "?")

	authority, path := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		authority, path = rest[:i], rest[i+1:]
	}

	hostport := authority
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		if err := d.parseUserInfo(authority[:i]); err != nil {
			return Descriptor{}, err
		}
		hostport = authority[i+1:]
	}
	if err := d.parseHostPort(hostport); err != nil {
		return Descriptor{}, err
	}

	d.VirtualHost, d.QueueName, _ = strings.Cut(path, "/")
	return d, nil
}

func validScheme(s string) bool {
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func (d *Descriptor) parseUserInfo(raw string) error {
	if raw == "" {
		return nil
	}
	tokens := strings.Split(raw, ":")
	if len(tokens) > 2 {
		return fmt.Errorf("%w: user info has %d ':' separators", ErrBadConnectionString, len(tokens)-1)
	}
	user, err := url.PathUnescape(tokens[0])
	if err != nil {
		return fmt.Errorf("%w: user name: %v", ErrBadConnectionString, err)
	}
	d.UserName = &user
	if len(tokens) == 2 {
		pass, err := url.PathUnescape(tokens[1])
		if err != nil {
			return fmt.Errorf("%w: password: invalid escape", ErrBadConnectionString)
		}
		d.Password = &pass
	}
	return nil
}

func (d *Descriptor) parseHostPort(hostport string) error {
	host, port := hostport, ""
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return fmt.Errorf("%w: unterminated IPv6 literal %q", ErrBadConnectionString, hostport)
		}
		host = hostport[:end+1]
		tail := hostport[end+1:]
		if tail != "" {
			if tail[0] != ':' {
				return fmt.Errorf("%w: unexpected %q after IPv6 literal", ErrBadConnectionString, tail)
			}
			port = tail[1:]
		}
	} else if i := strings.LastIndexByte(hostport, ':'); i >= 0 {
		host, port = hostport[:i], hostport[i+1:]
	}

	if host == "" {
		return fmt.Errorf("%w: missing host", ErrBadConnectionString)
	}
	d.Host = host

	if port == "" {
		return nil
	}
	for _, c := range port {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: port %q is not numeric", ErrBadConnectionString, port)
		}
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%w: port %q: %v", ErrBadConnectionString, port, err)
	}
	d.Port = &p
	return nil
}

// Address returns host or host:port.
func (d Descriptor) Address() string {
	if d.Port == nil {
		return d.Host
	}
	return d.Host + ":" + strconv.Itoa(*d.Port)
}

// String renders the descriptor as a URI with the password masked.
func (d Descriptor) String() string {
	var b strings.Builder
	if d.Scheme != "" {
		b.WriteString(d.Scheme)
		b.WriteString("://")
	}
	if d.UserName != nil {
		b.WriteString(*d.UserName)
		if d.Password != nil {
			b.WriteString(":***")
		}
		b.WriteByte('@')
	}
	b.WriteString(d.Address())
	b.WriteByte('/')
	b.WriteString(d.VirtualHost)
	if d.QueueName != "" {
		b.WriteByte('/')
		b.WriteString(d.QueueName)
	}
	if d.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(d.RawQuery)
	}
	return b.String()
}
