// SPDX-License-Identifier: MPL-2.0

// Package download fetches the analyzer bundle from GitHub Releases into a
// versioned local cache.
//
// A bundle release carries one archive per platform, named
// linthub-analyzers_<version>_<goos>_<goarch>.tar.gz, and a checksums.txt in
// sha256sum format. Every *.so entry of the archive is installed flat into
// <cache>/<tag>/, next to a release.toml file recording what was installed.
// A directory without release.toml is an incomplete install and is ignored.
package download
