// Package i18n injects the localization bootstrap into the scripts of
// gadgets that ship message files.
//
// The set of eligible modules is computed once per build from the plan and
// is read-only afterwards, so Transform can run from any number of bundler
// goroutines at once. Injection is idempotent: a module that already carries
// the marker comment is returned unchanged.
package i18n
