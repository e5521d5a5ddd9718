package server

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// A TokenDecoder validates and decodes the API tokens presented to the web
// interface. An invalid token decodes to the user "" with RoleUnknown. An
// error is returned only if the lookup itself failed and the token's status
// is unknown.
type TokenDecoder interface {
	TokenDecode(token string) (user string, role Role, err error)
}

// Role is the access level a token grants. This is a read-only service, so
// the ladder stops at metadata-only, read, and admin.
type Role int

const (
	RoleUnknown Role = iota
	RoleMDOnly
	RoleRead
	RoleAdmin
)

func atoRole(s string) Role {
	switch strings.ToLower(s) {
	case "mdonly":
		return RoleMDOnly
	case "read":
		return RoleRead
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// NewNobodyDecoder returns a TokenDecoder granting every possible token a
// user named "nobody" with the admin role. It is the fallback when no token
// file is configured.
func NewNobodyDecoder() TokenDecoder {
	return nobodyDecoder{}
}

type nobodyDecoder struct{}

func (nobodyDecoder) TokenDecode(token string) (string, Role, error) {
	return "nobody", RoleAdmin, nil
}

// A listDecoder is backed by a predefined set of users read from a token
// file. Each entry is one line of the form
//
//     <user name> <role> <token>
//
// with fields separated by whitespace. The role is one of "MDOnly", "Read",
// "Admin" (case insensitive). Blank lines and lines beginning with '#' are
// skipped, as are malformed lines.
type listDecoder struct {
	byToken map[string]userEntry
}

type userEntry struct {
	user string
	role Role
}

// NewListDecoder reads token entries from r.
func NewListDecoder(r io.Reader) (TokenDecoder, error) {
	entries := make(map[string]userEntry)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		pieces := strings.Fields(scanner.Text())
		if len(pieces) == 0 || pieces[0][0] == '#' {
			continue
		}
		if len(pieces) != 3 {
			continue
		}
		entries[pieces[2]] = userEntry{user: pieces[0], role: atoRole(pieces[1])}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return listDecoder{byToken: entries}, nil
}

// NewListDecoderFile reads token entries from the named file.
func NewListDecoderFile(fname string) (TokenDecoder, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewListDecoder(f)
}

func (ld listDecoder) TokenDecode(token string) (string, Role, error) {
	e, ok := ld.byToken[token]
	if !ok {
		return "", RoleUnknown, nil
	}
	return e.user, e.role, nil
}
