package mcpserver

// SnapshotFormat describes the YAML snapshot format accepted by the
// import_snapshot tool and the snapshot directory.
const SnapshotFormat = `# Snapshot Format

A snapshot is a YAML export of the CMS navigation and content tables. Every
file in the snapshot directory owns the rows it declares; re-importing a file
replaces them, deleting it removes them.

` + "```" + `yaml
categories:
  - id: 5                     # REQUIRED, positive
    alias: investor-relations # REQUIRED
    path: investor-relations  # flattened category path
menu:
  - id: 102                   # REQUIRED, unique within the file
    alias: investor-relations
    path: investor-relations  # flattened ancestor-to-self slug chain
    link: index.php?option=com_content&view=category&layout=blog&id=5
    type: component           # component | separator | heading | url | alias
    parent_id: 1
    level: 1
    language: en-GB           # "*" or empty for all languages
    menutype: mainmenu
    lft: 20                   # tree order, ancestors first
    published: true           # default true
    client_id: 0              # 0 = site, 1 = administrator
content:
  - id: 41                    # REQUIRED
    alias: q3-results
    catid: 5
    created: 2026-03-01T10:00:00Z
    modified: 2026-03-02T09:00:00Z  # optional, preferred as lastmod
    language: "*"
    published: true           # default true
` + "```" + `

## How entries are derived

1. The homepage is always the first entry (priority 1.0, daily).
2. Every published site menu node becomes base/path, unless it is a
   separator, heading, url or alias node, points at an external URL, is the
   root node, or targets com_users. Language-specific nodes are prefixed with
   the first two letters of their language code.
3. An article is placed under the blog category listing node of its
   category (base/listing-path/article-alias). Without one, a menu node that
   shows the single article is used. Otherwise the article is left out.
4. Locations that differ only by a trailing slash are listed once.

Unknown keys are rejected. Ids must be unique within a table.
`
