// Package secret expands environment variables and resolves secret
// references in configuration values.
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:JWT_SIGNING_KEY
//   - Inline use:  Bearer secretref:file:jwt.key
//
// The env and file providers are built in; see [NewDefaultResolver].
package secret
