// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	WorkspaceLoadFailedId Id = iota + 1
	ProviderNotFoundId
	ProviderLoadFailedId
	IncompatibleProviderId
	RulesetInvalidId
	RulesetCycleId
	ConfigLoadFailedId
	DownloadFailedId
	FixNotFoundId
	UnknownFileId
)

type (
	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry with Markdown guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// docsBase is the root of the published documentation.
const docsBase = "https://linthub.dev/docs/"

var (
	render = glamour.Render

	workspaceLoadFailedIssue = &Issue{
		id: WorkspaceLoadFailedId,
		mdMsg: `
# The workspace could not be loaded

linthub type-checks your packages before running any analyzer. Loading stopped
before a compiled unit was available.

## Things you can try
- Make sure the module builds:
~~~
$ go build ./...
~~~
- Run linthub from the module root or pass the directory explicitly:
~~~
$ linthub analyze ./path/to/module
~~~`,
		docLinks: []HttpLink{docsBase + "workspace"},
	}

	providerNotFoundIssue = &Issue{
		id: ProviderNotFoundId,
		mdMsg: `
# A rule provider could not be found

A provider listed in ` + "`linthub.codeAnalyzers`" + ` did not resolve to a plugin file.

## Search locations (in order)
1. ` + "`$LINTHUB_ANALYZERS_PATH`" + `
2. ` + "`analyzers.install_dir`" + ` from your config
3. The ` + "`analyzers`" + ` folder next to the linthub binary
4. The release cache (` + "`linthub config show`" + ` prints it)
5. Package-manager prefixes such as ` + "`/usr/local/lib/linthub/analyzers`" + `

## Things you can try
- List what linthub can see:
~~~
$ linthub providers
~~~
- Point linthub at your install folder:
~~~
$ export LINTHUB_ANALYZERS_PATH=/path/to/analyzers
~~~`,
		docLinks: []HttpLink{docsBase + "providers"},
	}

	providerLoadFailedIssue = &Issue{
		id: ProviderLoadFailedId,
		mdMsg: `
# A rule provider failed to load

The plugin file exists but the Go runtime refused to open it, or it does not
export a ` + "`LinthubManifest`" + ` function.

## Things you can try
- Rebuild the plugin with the same Go toolchain and module versions as linthub:
~~~
$ go build -buildmode=plugin -o myrules.so ./myrules
~~~`,
		docLinks: []HttpLink{docsBase + "writing-providers"},
	}

	incompatibleProviderIssue = &Issue{
		id: IncompatibleProviderId,
		mdMsg: `
# A rule provider targets a different API version

The plugin reported a manifest API version linthub does not understand.

## Things you can try
- Update the provider to a release built against the current ` + "`ruleapi`" + ` package.
- Update linthub if the provider is newer.`,
		docLinks: []HttpLink{docsBase + "writing-providers#versioning"},
	}

	rulesetInvalidIssue = &Issue{
		id: RulesetInvalidId,
		mdMsg: `
# The ruleset document is invalid

A ruleset must be a JSON object. Every key is optional:

~~~json
{
  "name": "project rules",
  "generalAction": "warning",
  "includedRuleSets": [{ "path": "../shared.ruleset.json", "action": "default" }],
  "rules": [
    { "id": "STY001", "action": "error" },
    { "id": "VET005", "action": "none", "justification": "generated code" }
  ]
}
~~~

Unknown action strings fall back to ` + "`default`" + `.`,
		docLinks: []HttpLink{docsBase + "rulesets"},
	}

	rulesetCycleIssue = &Issue{
		id: RulesetCycleId,
		mdMsg: `
# A ruleset includes itself

An include chain leads back to a ruleset that is already being processed.
linthub skips the repeated include and keeps going.

## Things you can try
- Run ` + "`linthub ruleset --explain`" + ` to see the include chain.`,
		docLinks: []HttpLink{docsBase + "rulesets#includes"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# The configuration file could not be loaded

## Things you can try
- Print the effective configuration:
~~~
$ linthub config show
~~~
- Write a fresh default file:
~~~
$ linthub config init
~~~`,
		docLinks: []HttpLink{docsBase + "configuration"},
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# The analyzer release could not be downloaded

linthub only downloads once per run. Other resolution stages still apply.

## Things you can try
- Set ` + "`GITHUB_TOKEN`" + ` if you are rate limited.
- Disable downloads with ` + "`analyzers.download.enabled: false`" + ` and install the analyzers manually.`,
		docLinks: []HttpLink{docsBase + "providers#download"},
	}

	fixNotFoundIssue = &Issue{
		id: FixNotFoundId,
		mdMsg: `
# No fix matches that location

A fix is found by file, rule id, line and column of an existing finding.

## Things you can try
- List the available fixes first:
~~~
$ linthub fixes --json
~~~`,
		docLinks: []HttpLink{docsBase + "fixes"},
	}

	unknownFileIssue = &Issue{
		id: UnknownFileId,
		mdMsg: `
# The file is not part of the loaded packages

Only Go files that belong to a loaded package can be analyzed or fixed.`,
		docLinks: []HttpLink{docsBase + "workspace"},
	}

	issues = map[Id]*Issue{
		workspaceLoadFailedIssue.Id():  workspaceLoadFailedIssue,
		providerNotFoundIssue.Id():     providerNotFoundIssue,
		providerLoadFailedIssue.Id():   providerLoadFailedIssue,
		incompatibleProviderIssue.Id(): incompatibleProviderIssue,
		rulesetInvalidIssue.Id():       rulesetInvalidIssue,
		rulesetCycleIssue.Id():         rulesetCycleIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		downloadFailedIssue.Id():       downloadFailedIssue,
		fixNotFoundIssue.Id():          fixNotFoundIssue,
		unknownFileIssue.Id():          unknownFileIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guidance with glamour using the given style ("dark",
// "light", "notty" or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

// Values returns all catalog entries ordered by id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
