package fileio

import (
	"net/url"
	"path/filepath"
)

// LocalScheme is the scheme assigned to locations without an explicit
// scheme and to file:// locations.
const LocalScheme = "file"

// Schemes served by Hadoop-style distributed-filesystem clients. Their
// clients interpret the authority (the namenode) separately from the
// path, so ParseLocation keeps the two apart for them.
const (
	SchemeHDFS   = "hdfs"
	SchemeViewFS = "viewfs"
)

// ParseLocation decomposes a location into (scheme, authority, path).
// It is total and deterministic: every string parses.
//
// A location without an explicit scheme parses to the local-file scheme
// with the absolute form of the input as the path. For hdfs and viewfs
// the path component is returned exactly as given, with the authority
// kept separate. For every other scheme the authority is folded into
// the returned path, because the clients serving those schemes expect
// bucket or account information encoded in the path string. The
// asymmetry matches the calling conventions of the downstream clients,
// not an accident of parsing.
func ParseLocation(location string) (scheme, authority, path string) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return LocalScheme, "", absPath(location)
	}
	switch u.Scheme {
	case SchemeHDFS, SchemeViewFS:
		return u.Scheme, authorityOf(u), u.Path
	default:
		authority = authorityOf(u)
		return u.Scheme, authority, authority + u.Path
	}
}

// authorityOf returns the full authority component. Userinfo is part of
// it: Azure locations encode the container there
// (abfss://container@account.dfs.core.windows.net/...).
func authorityOf(u *url.URL) string {
	if u.User != nil {
		return u.User.String() + "@" + u.Host
	}
	return u.Host
}

func absPath(location string) string {
	abs, err := filepath.Abs(location)
	if err != nil {
		return location
	}
	return abs
}
