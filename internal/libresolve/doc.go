// SPDX-License-Identifier: MPL-2.0

// Package libresolve finds and loads third-party provider plugins.
//
// Alias references (${StyleCop}, ${analyzerFolder}/acme.so, ...) name a file
// inside the analyzer bundle. The bundle is looked up in stages, stopping at
// the first directory that holds the file:
//
//  1. development installs: $LINTHUB_ANALYZERS_PATH, the configured install
//     directory, <executable dir>/analyzers, <executable dir>/../lib/linthub/analyzers
//  2. the directory downloaded earlier in this process, if any
//  3. the newest complete version in the persistent download cache
//  4. package manager prefixes (Homebrew, /usr/local, /usr)
//  5. a download of the latest release, tried at most once per process
//
// Direct paths are resolved against the project root with no fallback.
// Loaded libraries are cached by absolute path.
package libresolve
