// Package cli implements the interactive lockbox shell: a small REPL over a
// vault session, terminal password prompting, child-process secret
// injection, and S3 backup commands. It is thin glue; all vault semantics
// live in internal/vault.
package cli
